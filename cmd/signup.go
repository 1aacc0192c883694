package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NUPS-NASA/exohunt/internal/auth"
)

var signupName string

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]

		name := signupName
		if name == "" && activeProfile != nil {
			name = activeProfile.DisplayName
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		confirmed, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirmed {
			return fmt.Errorf("passwords do not match")
		}

		err = authManager.Signup(cmd.Context(), email, name, password)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				return fmt.Errorf("email already registered")
			}
			return err
		}

		s := authManager.Session()
		cmd.Printf("Account created. Signed in as %s <%s>\n", s.User.Name, s.User.Email)
		cmd.Println("This session lasts until reboot; use 'exohunt login --remember' to persist it.")
		return nil
	},
}

func init() {
	signupCmd.Flags().StringVar(&signupName, "name", "", "display name for the new account")
	rootCmd.AddCommand(signupCmd)
}
