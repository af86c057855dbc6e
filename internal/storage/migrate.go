// ABOUTME: Data migration between growth storage backends.
// ABOUTME: Copies every measurement, soft-deleted ones included, from source to destination.

package storage

import (
	"context"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Measurements int
	Deleted      int
}

// MigrateData copies all measurements from src to dst, preserving IDs,
// timestamps and soft-delete markers. The destination should be empty
// before calling this function.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	ms, err := src.ListMeasurements(ctx, &MeasurementFilter{IncludeDeleted: true})
	if err != nil {
		return nil, fmt.Errorf("list source measurements: %w", err)
	}

	// Oldest first so backends that order by insertion keep the same order.
	for i := len(ms) - 1; i >= 0; i-- {
		m := ms[i]
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := dst.CreateMeasurement(ctx, m); err != nil {
			return summary, fmt.Errorf("create measurement %s: %w", m.ID, err)
		}
		summary.Measurements++
		if m.DeletedAt != nil {
			summary.Deleted++
		}
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
