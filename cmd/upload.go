package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/NUPS-NASA/exohunt/internal/api"
	"github.com/NUPS-NASA/exohunt/internal/staging"
	"github.com/NUPS-NASA/exohunt/internal/tui"
	"github.com/NUPS-NASA/exohunt/internal/watch"
)

var (
	uploadDark  []string
	uploadBias  []string
	uploadFlat  []string
	uploadName  string
	uploadWatch bool
	uploadYes   bool
	uploadPlain bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [fits files...]",
	Short: "Stage FITS frames, review them, and commit a new upload",
	Long: `Stage FITS frames on the server, review the parsed headers, and commit
them into a repository. With --watch, frames already in the drop folder are
picked up and new ones are collected until you press ctrl+c.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := requireSession()
		if err != nil {
			return err
		}

		files := append([]string{}, args...)
		if uploadWatch {
			collected, err := collectFromWatchDir(cmd)
			if err != nil {
				return err
			}
			files = append(files, collected...)
		}

		if len(files) == 0 {
			return fmt.Errorf("no FITS files selected")
		}

		workflow := staging.New(client, sess.User.ID, nil)
		workflow.AddFiles(files...)
		workflow.AddPreprocess(api.PreprocessDark, uploadDark...)
		workflow.AddPreprocess(api.PreprocessBias, uploadBias...)
		workflow.AddPreprocess(api.PreprocessFlat, uploadFlat...)

		// Calibration frames are optional but usually wanted; nudge once.
		if !workflow.HasPreprocessFiles() && !uploadYes {
			if !confirm(cmd, "No calibration frames attached (--dark/--bias/--flat). Continue?") {
				return fmt.Errorf("upload cancelled")
			}
		}

		if err := workflow.Stage(cmd.Context()); err != nil {
			return err
		}
		if uploadName != "" {
			workflow.SetRepositoryName(uploadName)
		}

		interactive := term.IsTerminal(os.Stdout.Fd()) && !uploadPlain
		if interactive {
			resp, err := tui.RunReview(cmd.Context(), workflow)
			if err != nil {
				return err
			}
			if resp == nil {
				cmd.Println("Upload cancelled; staged files were discarded.")
				return nil
			}
			printCommit(cmd, resp)
			return nil
		}

		// Plain mode: list what was staged and commit straight away.
		for _, item := range workflow.Items() {
			cmd.Printf("  %s  %s\n", item.Filename, staging.FormatSizeKB(item.SizeBytes))
		}
		if n := workflow.PreprocessCount(); n > 0 {
			cmd.Printf("  +%d calibration frame(s)\n", n)
		}
		resp, err := workflow.Commit(cmd.Context())
		if err != nil {
			return err
		}
		printCommit(cmd, resp)
		return nil
	},
}

// collectFromWatchDir seeds from files already in the drop folder, then
// watches for new FITS frames until interrupted.
func collectFromWatchDir(cmd *cobra.Command) ([]string, error) {
	dir := cfg.WatchDir
	if dir == "" {
		return nil, fmt.Errorf("no watch directory configured — run 'exohunt setup'")
	}

	files, err := watch.Existing(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	for _, f := range files {
		cmd.Printf("  found %s\n", f)
	}

	cmd.Printf("Watching %s for new FITS frames (ctrl+c to finish)...\n", dir)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[f] = true
	}
	err = watch.Watch(ctx, dir, func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
			cmd.Printf("  found %s\n", path)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return files, nil
}

// confirm asks a y/N question on the terminal; non-interactive runs decline.
func confirm(cmd *cobra.Command, question string) bool {
	if !term.IsTerminal(os.Stdin.Fd()) {
		return false
	}
	cmd.Printf("%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func printCommit(cmd *cobra.Command, resp *api.UploadCommitResponse) {
	cmd.Printf("Committed %d frame(s).\n", resp.CommittedCount)
	cmd.Printf("Repository: %d  Dataset: %d  Session: %d\n",
		resp.RepositoryID, resp.DatasetID, resp.SessionID)
	if resp.Message != "" {
		cmd.Println(resp.Message)
	}
}

func init() {
	uploadCmd.Flags().StringSliceVar(&uploadDark, "dark", nil, "dark calibration frames")
	uploadCmd.Flags().StringSliceVar(&uploadBias, "bias", nil, "bias calibration frames")
	uploadCmd.Flags().StringSliceVar(&uploadFlat, "flat", nil, "flat calibration frames")
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "repository name for the new upload")
	uploadCmd.Flags().BoolVar(&uploadWatch, "watch", false, "collect frames from the configured drop folder")
	uploadCmd.Flags().BoolVarP(&uploadYes, "yes", "y", false, "skip the calibration-frame confirmation")
	uploadCmd.Flags().BoolVar(&uploadPlain, "plain", false, "commit without the interactive review")
	rootCmd.AddCommand(uploadCmd)
}
