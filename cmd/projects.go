package cmd

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/NUPS-NASA/exohunt/internal/api"
)

var (
	projectsMine  bool
	projectsQuery string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Browse research projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}

		params := api.ListProjectsParams{}
		if projectsQuery != "" {
			params.Search = &projectsQuery
		}
		if projectsMine {
			params.MemberID = &sess.User.ID
		}

		projects, err := client.ListProjects(cmd.Context(), params)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			cmd.Println("no projects")
			return nil
		}

		service, err := feedService()
		if err != nil {
			return err
		}
		pinned, err := service.PinnedProjectIDs(cmd.Context())
		if err != nil {
			return err
		}
		pinnedSet := make(map[int64]bool, len(pinned))
		for _, id := range pinned {
			pinnedSet[id] = true
		}

		for _, p := range projects {
			marker := " "
			if pinnedSet[p.ID] {
				marker = "📌"
			}
			cmd.Printf("%s %5d  %-30s  %s\n", marker, p.ID, p.Name, humanize.Time(p.CreatedAt))
		}
		return nil
	},
}

var projectPinCmd = &cobra.Command{
	Use:   "pin <project-id>",
	Short: "Pin a project to your profile",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setPin(cmd, args[0], true) },
}

var projectUnpinCmd = &cobra.Command{
	Use:   "unpin <project-id>",
	Short: "Unpin a project",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setPin(cmd, args[0], false) },
}

var projectPinnedCmd = &cobra.Command{
	Use:   "pinned",
	Short: "List your pinned projects in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := feedService()
		if err != nil {
			return err
		}
		ids, err := service.PinnedProjectIDs(cmd.Context())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			cmd.Println("no pinned projects")
			return nil
		}
		for i, id := range ids {
			p, err := client.GetProject(cmd.Context(), id)
			if err != nil {
				return err
			}
			cmd.Printf("%d. %s (#%d)\n", i+1, p.Name, p.ID)
		}
		return nil
	},
}

func setPin(cmd *cobra.Command, rawID string, pin bool) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return err
	}
	service, err := feedService()
	if err != nil {
		return err
	}
	if err := service.TogglePin(cmd.Context(), id, pin); err != nil {
		return err
	}
	service.Cache().Wait()
	if pin {
		cmd.Printf("Pinned project %d.\n", id)
	} else {
		cmd.Printf("Unpinned project %d.\n", id)
	}
	return nil
}

func init() {
	projectsCmd.Flags().BoolVar(&projectsMine, "mine", false, "only projects you are a member of")
	projectsCmd.Flags().StringVarP(&projectsQuery, "query", "q", "", "filter by name")
	projectsCmd.AddCommand(projectPinCmd, projectUnpinCmd, projectPinnedCmd)
	rootCmd.AddCommand(projectsCmd)
}
