package cmd

import (
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/NUPS-NASA/exohunt/internal/api"
)

var (
	reposMine    bool
	reposUser    int64
	reposStarred bool
	reposQuery   string
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Browse observation repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}

		params := api.ListRepositoriesParams{}
		if reposQuery != "" {
			params.Search = &reposQuery
		}
		if reposMine {
			params.OwnerID = &sess.User.ID
		}
		if reposUser != 0 {
			params.OwnerID = &reposUser
		}
		if reposStarred {
			params.StarredBy = &sess.User.ID
		}

		repos, err := client.ListRepositories(cmd.Context(), params)
		if err != nil {
			return err
		}
		if len(repos) == 0 {
			cmd.Println("no repositories")
			return nil
		}

		service, err := feedService()
		if err != nil {
			return err
		}
		starred, err := service.StarredRepositoryIDs(cmd.Context())
		if err != nil {
			return err
		}
		starredSet := make(map[int64]bool, len(starred))
		for _, id := range starred {
			starredSet[id] = true
		}

		for _, r := range repos {
			marker := " "
			if starredSet[r.ID] {
				marker = "★"
			}
			cmd.Printf("%s %5d  %-30s  %s\n", marker, r.ID, r.Name, humanize.Time(r.CreatedAt))
		}
		return nil
	},
}

var repoStarCmd = &cobra.Command{
	Use:   "star <repository-id>",
	Short: "Star a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setStar(cmd, args[0], true) },
}

var repoUnstarCmd = &cobra.Command{
	Use:   "unstar <repository-id>",
	Short: "Remove a repository star",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setStar(cmd, args[0], false) },
}

var repoViewCmd = &cobra.Command{
	Use:   "view <repository-id>",
	Short: "Show a repository with its latest pipeline run and candidates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}

		repo, err := client.GetRepository(cmd.Context(), id)
		if err != nil {
			return err
		}
		cmd.Printf("Repository: %s (#%d)\n", repo.Name, repo.ID)
		if repo.Description != nil {
			cmd.Printf("  %s\n", *repo.Description)
		}
		cmd.Printf("  ★ %d  created %s\n", repo.StarsCount, humanize.Time(repo.CreatedAt))

		latest, err := client.LatestRepositorySession(cmd.Context(), id)
		if err != nil {
			if api.IsStatus(err, http.StatusNotFound) {
				cmd.Println("No pipeline runs yet.")
				return nil
			}
			return err
		}

		cmd.Printf("\nLatest run: #%d  %s\n", latest.ID, latest.Status)
		steps, err := client.ListPipelineSteps(cmd.Context(), latest.ID)
		if err != nil {
			return err
		}
		for _, step := range steps {
			cmd.Printf("  %-20s %s\n", step.Name, step.Status)
		}

		candidates, err := client.ListSessionCandidates(cmd.Context(), latest.ID)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			cmd.Println("\nNo transit candidates.")
			return nil
		}
		cmd.Println("\nCandidates:")
		for _, c := range candidates {
			name := "(unnamed)"
			if c.TargetName != nil {
				name = *c.TargetName
			}
			verified := ""
			if c.Verified != nil && *c.Verified {
				verified = "  ✓ verified"
			}
			cmd.Printf("  #%d  %-16s  period %.4fd  depth %.0fppm  SNR %.1f%s\n",
				c.ID, name, c.PeriodDays, c.DepthPPM, c.SNR, verified)
		}
		return nil
	},
}

func setStar(cmd *cobra.Command, rawID string, star bool) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return err
	}
	service, err := feedService()
	if err != nil {
		return err
	}
	if err := service.ToggleStar(cmd.Context(), id, star); err != nil {
		return err
	}
	service.Cache().Wait()
	if star {
		cmd.Printf("Starred repository %d.\n", id)
	} else {
		cmd.Printf("Unstarred repository %d.\n", id)
	}
	return nil
}

func init() {
	reposCmd.Flags().BoolVar(&reposMine, "mine", false, "only repositories you own")
	reposCmd.Flags().Int64Var(&reposUser, "user", 0, "only repositories owned by the given user id")
	reposCmd.Flags().BoolVar(&reposStarred, "starred", false, "only repositories you starred")
	reposCmd.Flags().StringVarP(&reposQuery, "query", "q", "", "filter by name")
	reposCmd.AddCommand(repoStarCmd, repoUnstarCmd, repoViewCmd)
	rootCmd.AddCommand(reposCmd)
}
