package cmd

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account and token state",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession()
		if err != nil {
			return err
		}

		// Best-effort refresh of the user record; a stale or unreachable
		// backend still leaves the stored session printable.
		if u, err := client.CurrentUser(cmd.Context()); err == nil {
			if err := authManager.UpdateUser(u); err == nil {
				s = authManager.Session()
			}
		}

		cmd.Printf("User:     %s <%s>\n", s.User.Name, s.User.Email)
		cmd.Printf("User ID:  %d\n", s.User.ID)
		if s.Remember {
			cmd.Println("Session:  remembered")
		} else {
			cmd.Println("Session:  until reboot")
		}

		expiry := s.AccessTokenExpiry()
		switch {
		case expiry.IsZero():
			cmd.Println("Token:    no expiry claim")
		case expiry.Before(time.Now()):
			cmd.Printf("Token:    expired %s (refreshes on next request)\n", humanize.Time(expiry))
		default:
			cmd.Printf("Token:    expires %s\n", humanize.Time(expiry))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
