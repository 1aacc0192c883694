package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/NUPS-NASA/exohunt/internal/api"
	"github.com/NUPS-NASA/exohunt/internal/tui"
)

var (
	communityCategory string
	communityPlain    bool

	postCategory string
	postProject  int64

	deleteComment int64
)

var communityCmd = &cobra.Command{
	Use:   "community",
	Short: "Browse and interact with the community feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := feedService()
		if err != nil {
			return err
		}

		if term.IsTerminal(os.Stdout.Fd()) && !communityPlain {
			return tui.RunFeed(cmd.Context(), service)
		}

		raw := communityCategory
		if raw == "" {
			raw = cfg.Category
		}
		category, err := resolveCategory(raw)
		if err != nil {
			return err
		}
		posts, err := service.Posts(cmd.Context(), category)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			cmd.Println("no posts")
			return nil
		}
		for _, p := range posts {
			liked := " "
			if p.Liked {
				liked = "♥"
			}
			cmd.Printf("%s %5d  ♥%-3d 💬%-3d  %-40s  %s, %s\n",
				liked, p.ID, p.LikesCount, len(p.Comments), p.Title,
				p.Author.DisplayName, humanize.Time(p.CreatedAt))
		}
		return nil
	},
}

var communityPostCmd = &cobra.Command{
	Use:   "post <title> <content>",
	Short: "Publish a post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := feedService()
		if err != nil {
			return err
		}
		category, err := resolveCategory(postCategory)
		if err != nil {
			return err
		}
		if category == "" {
			category = api.CategoryShowcase
		}
		req := api.PostCreate{Title: args[0], Content: args[1], Category: category}
		if postProject != 0 {
			req.LinkedProjectID = &postProject
		}
		post, err := service.CreatePost(cmd.Context(), req)
		if err != nil {
			return err
		}
		service.Cache().Wait()
		cmd.Printf("Posted #%d in %s.\n", post.ID, post.Category)
		return nil
	},
}

var communityLikeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setLike(cmd, args[0], true) },
}

var communityUnlikeCmd = &cobra.Command{
	Use:   "unlike <post-id>",
	Short: "Remove a like",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setLike(cmd, args[0], false) },
}

var communityCommentCmd = &cobra.Command{
	Use:   "comment <post-id> <content>",
	Short: "Comment on a post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		service, err := feedService()
		if err != nil {
			return err
		}
		if err := service.AddComment(cmd.Context(), id, args[1]); err != nil {
			return err
		}
		service.Cache().Wait()
		cmd.Printf("Commented on post %d.\n", id)
		return nil
	},
}

var communityDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts, or a comment with --comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		service, err := feedService()
		if err != nil {
			return err
		}

		if deleteComment != 0 {
			if _, err := service.Posts(cmd.Context(), ""); err != nil {
				return err
			}
			if err := service.DeleteComment(cmd.Context(), id, deleteComment); err != nil {
				return err
			}
			service.Cache().Wait()
			cmd.Printf("Deleted comment %d on post %d.\n", deleteComment, id)
			return nil
		}

		if err := service.DeletePost(cmd.Context(), id); err != nil {
			return err
		}
		service.Cache().Wait()
		cmd.Printf("Deleted post %d.\n", id)
		return nil
	},
}

func setLike(cmd *cobra.Command, rawID string, like bool) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return err
	}
	service, err := feedService()
	if err != nil {
		return err
	}
	// Warm the affected list so the optimistic rewrite has something to act on.
	if _, err := service.Posts(cmd.Context(), ""); err != nil {
		return err
	}
	if err := service.ToggleLike(cmd.Context(), id, like); err != nil {
		return err
	}
	service.Cache().Wait()
	if like {
		cmd.Printf("Liked post %d.\n", id)
	} else {
		cmd.Printf("Unliked post %d.\n", id)
	}
	return nil
}

// resolveCategory maps a user-supplied category name to the wire value.
// Empty means all categories.
func resolveCategory(raw string) (api.PostCategory, error) {
	if raw == "" || raw == "all" {
		return "", nil
	}
	for _, cat := range api.PostCategories {
		if raw == string(cat) {
			return cat, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (known: announcements, project-showcase, astrophoto-gallery, upload-hall-of-fame)", raw)
}

func init() {
	communityCmd.Flags().StringVarP(&communityCategory, "category", "c", "", "filter by category")
	communityCmd.Flags().BoolVar(&communityPlain, "plain", false, "print the feed instead of the interactive view")
	communityPostCmd.Flags().StringVarP(&postCategory, "category", "c", "", "post category")
	communityPostCmd.Flags().Int64Var(&postProject, "project", 0, "link a project by id")
	communityDeleteCmd.Flags().Int64Var(&deleteComment, "comment", 0, "delete this comment id instead of the post")
	communityCmd.AddCommand(communityPostCmd, communityLikeCmd, communityUnlikeCmd, communityCommentCmd, communityDeleteCmd)
	rootCmd.AddCommand(communityCmd)
}
