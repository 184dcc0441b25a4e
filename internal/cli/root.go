// Package cli implements the readingplan command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/reading-plan/internal/config"
	"github.com/zapponejosh/reading-plan/internal/database"
	"github.com/zapponejosh/reading-plan/internal/logger"
)

// app is the state shared by every subcommand once the root has run.
type app struct {
	profilePath string
	logLevel    string

	profile config.Profile
	logger  *slog.Logger
}

// NewRootCmd builds the readingplan command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "readingplan",
		Short: "Generate daily Bible reading plans",
		Long: "Builds a day-by-day reading schedule from a plan-source file, " +
			"formats text and audio links, and stores plans for the API.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.profilePath, "profile", "p", "",
		"TOML plan profile (default: $PLAN_PROFILE)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")

	root.AddCommand(
		newGenerateCmd(a),
		newLinksCmd(a),
		newEventsCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.ValidateLogging(a.logLevel, "text"); err != nil {
		return err
	}
	// Logs go to stderr so stdout stays clean for JSON and citations.
	a.logger = logger.New(cmd.ErrOrStderr(), a.logLevel, "text")

	path := a.profilePath
	if path == "" {
		path = os.Getenv("PLAN_PROFILE")
	}
	p, err := config.LoadProfile(path)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	a.profile = p
	return nil
}

// openDB opens and migrates the store at path, falling back to
// $DATABASE_PATH and then the default location.
func (a *app) openDB(ctx context.Context, path string) (*database.DB, error) {
	if path == "" {
		path = os.Getenv("DATABASE_PATH")
	}
	if path == "" {
		path = config.DefaultDatabasePath
	}

	db, err := database.Open(database.DefaultConfig(path), a.logger)
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
