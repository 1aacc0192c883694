package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/NUPS-NASA/exohunt/internal/auth"
)

var loginRemember bool

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to the exohunt backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		err = authManager.Login(cmd.Context(), email, password, loginRemember)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return fmt.Errorf("invalid credentials")
			}
			return err
		}

		s := authManager.Session()
		cmd.Printf("Signed in as %s <%s>\n", s.User.Name, s.User.Email)
		if loginRemember {
			cmd.Println("Session will be remembered on this machine.")
		}
		return nil
	},
}

// readPassword prompts on stderr and reads without echo when stdin is a
// terminal; piped input is read as a single line for scripting.
func readPassword(prompt string) (string, error) {
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().BoolVar(&loginRemember, "remember", false, "persist the session across reboots")
	rootCmd.AddCommand(loginCmd)
}
