package cmd

import (
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe backend connectivity and show the session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("Backend: %s\n", cfg.APIBase)

		start := time.Now()
		health, err := anonClient.GetHealth(cmd.Context())
		if err != nil {
			cmd.Printf("Health:  unreachable (%v)\n", err)
		} else {
			cmd.Printf("Health:  ok (%s)\n", time.Since(start).Round(time.Millisecond))
			keys := make([]string, 0, len(health))
			for k := range health {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				cmd.Printf("  %s: %v\n", k, health[k])
			}
		}

		if cfg.WatchDir != "" {
			cmd.Printf("Watch:   %s\n", cfg.WatchDir)
		}

		if s := authManager.Session(); s != nil {
			cmd.Printf("Signed in as %s <%s>\n", s.User.Name, s.User.Email)
		} else {
			cmd.Println("Not signed in.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
