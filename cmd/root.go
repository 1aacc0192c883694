package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/NUPS-NASA/exohunt/internal/api"
	"github.com/NUPS-NASA/exohunt/internal/auth"
	"github.com/NUPS-NASA/exohunt/internal/cache"
	"github.com/NUPS-NASA/exohunt/internal/config"
	"github.com/NUPS-NASA/exohunt/internal/feed"
	"github.com/NUPS-NASA/exohunt/internal/profile"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded user profile.
var activeProfile *profile.Profile

// authManager owns the stored session and token refresh.
var authManager *auth.Manager

// client is the authenticated transport; anonClient skips the refresh loop.
var (
	client     *api.Client
	anonClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "exohunt",
	Short: "Upload FITS observations and follow the exoplanet hunt community",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		// First-run: profile missing → run setup wizard automatically.
		// Only do this when stdin is an interactive terminal.
		if !profile.Exists() {
			if term.IsTerminal(os.Stdin.Fd()) {
				fmt.Println()
				fmt.Println("  Welcome to exohunt! Looks like this is your first time.")
				if err := runSetup(true); err != nil {
					return err
				}
			}
			// Non-interactive (tests, pipes): continue with defaults, no profile required.
		}

		// Profile is optional; non-interactive environments may not have one.
		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		}

		merged, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = merged

		// Profile values fill in config gaps.
		if activeProfile != nil {
			if cfg.APIBase == config.DefaultAPIBase && activeProfile.APIBase != "" {
				cfg.APIBase = activeProfile.APIBase
			}
			if cfg.WatchDir == "" && activeProfile.WatchDir != "" {
				cfg.WatchDir = activeProfile.WatchDir
			}
		}

		return initClients()
	},
}

// initClients wires the transport and auth layers for the resolved base URL.
// The anonymous client carries no token source; the manager refreshes over
// it, and the authenticated client consults the manager on every request.
func initClients() error {
	store, err := auth.NewStore()
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	anonClient = api.New(cfg.APIBase, nil, nil)
	authManager = auth.NewManager(anonClient, store)
	if err := authManager.Hydrate(); err != nil {
		return fmt.Errorf("loading stored session: %w", err)
	}
	client = api.New(cfg.APIBase, nil, authManager)

	// A token already past its exp claim would 401 on first use; refresh
	// it up front. Failure is non-fatal: the transport has its own
	// refresh pass.
	if s := authManager.Session(); s != nil && s.AccessTokenExpired() {
		_, _ = authManager.Refresh(context.Background())
	}
	return nil
}

// requireSession returns the signed-in session or a login hint.
func requireSession() (*auth.Session, error) {
	s := authManager.Session()
	if s == nil {
		return nil, fmt.Errorf("not signed in — run 'exohunt login'")
	}
	return s, nil
}

// feedService builds the optimistic interaction layer for the current user.
func feedService() (*feed.Service, error) {
	s, err := requireSession()
	if err != nil {
		return nil, err
	}
	return feed.NewService(client, cache.New(), s.User.ID, s.User.Name), nil
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active user profile.
func GetProfile() *profile.Profile {
	return activeProfile
}
