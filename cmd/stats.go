package cmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/NUPS-NASA/exohunt/internal/api"
)

var statsContrib bool

var statsCmd = &cobra.Command{
	Use:   "stats [user-id]",
	Short: "Show upload and project statistics (yours by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}
		userID := sess.User.ID
		if len(args) == 1 {
			userID, err = strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
		}

		stats, err := client.GetUserStats(cmd.Context(), userID)
		if err != nil {
			return err
		}

		row := func(label string, value int) {
			cmd.Printf("%-14s %d\n", label, value)
		}
		row("Uploads:", stats.UploadsCount)
		row("Projects:", stats.ProjectsCount)
		row("Candidates:", stats.CandidatesCount)
		row("Stars:", stats.StarsReceived)

		if !statsContrib {
			return nil
		}

		to := time.Now().UTC().Format("2006-01-02")
		from := time.Now().UTC().AddDate(0, -3, 0).Format("2006-01-02")
		contrib, err := client.GetUserContributions(cmd.Context(), userID, api.ContributionsParams{
			From: &from,
			To:   &to,
		})
		if err != nil {
			return err
		}
		if len(contrib.Buckets) == 0 {
			cmd.Println("\nno contributions in the last 3 months")
			return nil
		}

		cmd.Println("\nContributions (last 3 months):")
		max := 0
		for _, b := range contrib.Buckets {
			if b.Count > max {
				max = b.Count
			}
		}
		for _, b := range contrib.Buckets {
			bar := ""
			if max > 0 && cfg.DefaultPlot != "none" {
				bar = strings.Repeat("▇", b.Count*40/max)
			}
			cmd.Printf("  %s  %3d  %s\n", b.Date, b.Count, bar)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsContrib, "contributions", false, "include the contribution histogram")
	rootCmd.AddCommand(statsCmd)
}
