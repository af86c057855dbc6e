// ABOUTME: Root Cobra command for growth CLI.
// ABOUTME: Loads config, builds the logger and opens storage via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/growth/internal/config"
	"github.com/harperreed/growth/internal/logging"
	"github.com/harperreed/growth/internal/nutrition"
	"github.com/harperreed/growth/internal/reference"
	"github.com/harperreed/growth/internal/storage"
	"github.com/harperreed/growth/internal/tracker"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// noStorage marks commands that must run without an open repository.
const noStorage = "no-storage"

var (
	cfg       *config.Config
	logger    = zerolog.Nop()
	evaluator *nutrition.Evaluator
	repo      storage.Repository
	app       *tracker.Tracker

	creatorFlag  string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "growth",
	Short: "Child growth and nutritional status tracker",
	Long: `Growth records children's height and weight and classifies their
nutritional status against the WHO child growth standards (0-60 months).

WHAT IT COMPUTES:

  BMI            weight / (height in m)^2, two decimals
  Height status  length/height-for-age (stunting scale)
  Weight status  weight-for-age
  Mass status    BMI-for-age

QUICK START:

  $ growth evaluate L "1 tahun 2 bulan" 76 9.5   # Classify without saving
  $ growth add Budi L "1 tahun 2 bulan" 76 9.5   # Record a measurement
  $ growth list                                  # Recent measurements
  $ growth child list                            # Children with latest status
  $ growth child show local-Budi-L               # One child's history

AGES:

  Ages are written as "N tahun M bulan", "M bulan" or "N tahun".
  Ages outside 0-60 months are stored with "No Data" categories.

STORAGE BACKENDS:

  Set "backend" in ~/.config/growth/config.json or GROWTH_BACKEND:

  sqlite     Local SQLite file (default)
  postgres   PostgreSQL via GROWTH_DATABASE_URL
  charm      Charm KV, E2E encrypted and synced across devices
  badger     Local Badger key-value store

MCP INTEGRATION:

  Run 'growth mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "growth": { "command": "growth", "args": ["mcp"] }
    }
  }`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closeRepo()

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.GetLogLevel()
		if logLevelFlag != "" {
			level = logLevelFlag
		}
		logger, err = logging.New(level, cfg.GetLogFormat(), os.Stderr)
		if err != nil {
			return err
		}

		ds, err := reference.Default()
		if err != nil {
			return fmt.Errorf("load reference tables: %w", err)
		}
		evaluator = nutrition.NewEvaluator(ds)

		if skipsStorage(cmd) {
			return nil
		}

		repo, err = cfg.OpenStorage(cmd.Context(), logger)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		app = tracker.New(repo, evaluator, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeRepo()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// skipsStorage reports whether cmd or any parent is marked noStorage.
func skipsStorage(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[noStorage] == "true" {
			return true
		}
	}
	return cmd.Name() == "help" || cmd.Name() == "completion"
}

func closeRepo() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo, app = nil, nil
	return err
}

// creatorID is the --creator flag, falling back to the configured creator.
func creatorID() string {
	if creatorFlag != "" {
		return creatorFlag
	}
	if cfg == nil {
		return ""
	}
	return cfg.GetCreatorID()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&creatorFlag, "creator", "", "creator ID for new records (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: trace, debug, info, warn, error")
}
