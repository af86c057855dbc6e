// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Opens source and destination from the config with the backend overridden.
package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/growth/internal/config"
	"github.com/harperreed/growth/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateURL    string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy all data from one backend to another",
	Long: `Copy every measurement, deleted ones included, from one storage
backend to another. IDs, timestamps and categories are preserved.

Backends: sqlite, postgres, charm, badger. Both sides use the data
directory and settings from your config; --database-url overrides the
Postgres connection string.

IMPORTANT:

  - The destination must be empty unless --force is given
  - Run with --dry-run first to see what would be migrated
  - Your configured backend is not changed; update "backend" afterwards

EXAMPLES:

  growth migrate --from sqlite --to badger --dry-run
  growth migrate --from sqlite --to postgres --database-url postgres://...
  growth migrate --from charm --to sqlite`,
	Annotations: map[string]string{noStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == "" || migrateTo == "" {
			return fmt.Errorf("both --from and --to are required")
		}
		if migrateFrom == migrateTo {
			return fmt.Errorf("source and destination are both %s", migrateFrom)
		}

		ctx := cmd.Context()
		src, err := openBackend(ctx, migrateFrom)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		defer src.Close()

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			all, err := src.ListMeasurements(ctx, &storage.MeasurementFilter{IncludeDeleted: true})
			if err != nil {
				return fmt.Errorf("list source: %w", err)
			}
			fmt.Printf("Would migrate %d measurements from %s to %s\n", len(all), migrateFrom, migrateTo)
			return nil
		}

		if migrateTo == config.BackendBadger && !migrateForce {
			dir := cfg.GetBadgerDir()
			if nonEmpty, err := storage.IsDirNonEmpty(dir); err != nil {
				return err
			} else if nonEmpty {
				return fmt.Errorf("destination %s is not empty (use --force to merge)", dir)
			}
		}

		dst, err := openBackend(ctx, migrateTo)
		if err != nil {
			return fmt.Errorf("open destination: %w", err)
		}
		defer dst.Close()

		if !migrateForce {
			existing, err := dst.ListMeasurements(ctx, &storage.MeasurementFilter{IncludeDeleted: true, Limit: 1})
			if err != nil {
				return fmt.Errorf("check destination: %w", err)
			}
			if len(existing) > 0 {
				return fmt.Errorf("destination %s already has data (use --force to merge)", migrateTo)
			}
		}

		summary, err := storage.MigrateData(ctx, src, dst)
		if err != nil {
			if summary != nil {
				color.Yellow("⚠ Migrated %d measurements before failing", summary.Measurements)
			}
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %s → %s", migrateFrom, migrateTo)
		fmt.Printf("  Measurements: %d (%d deleted)\n", summary.Measurements, summary.Deleted)
		return nil
	},
}

// openBackend opens storage with the loaded config but a different backend.
func openBackend(ctx context.Context, backend string) (storage.Repository, error) {
	c := *cfg
	c.Backend = backend
	if migrateURL != "" {
		c.DatabaseURL = migrateURL
	}
	return c.OpenStorage(ctx, logger)
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source backend")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend")
	migrateCmd.Flags().StringVar(&migrateURL, "database-url", "", "Postgres URL for either side")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "migrate into a non-empty destination")
	rootCmd.AddCommand(migrateCmd)
}
