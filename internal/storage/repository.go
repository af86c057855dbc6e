// ABOUTME: Repository interface for measurement storage.
// ABOUTME: Defines the CRUD contract every backend (SQLite, Postgres, KV) implements.
package storage

import (
	"context"
	"errors"

	"github.com/harperreed/growth/internal/models"
)

var (
	// ErrNotFound is returned when no live record matches an ID or prefix.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguousPrefix is returned when an ID prefix matches several records.
	ErrAmbiguousPrefix = errors.New("ambiguous prefix")
)

// Repository defines the storage interface for measurements.
// Deletes are soft: deleted records keep their row with DeletedAt set and
// are hidden from Get and from List unless IncludeDeleted is set.
type Repository interface {
	CreateMeasurement(ctx context.Context, m *models.Measurement) error
	GetMeasurement(ctx context.Context, idOrPrefix string) (*models.Measurement, error)
	UpdateMeasurement(ctx context.Context, m *models.Measurement) error
	DeleteMeasurement(ctx context.Context, idOrPrefix string) error
	ListMeasurements(ctx context.Context, filter *MeasurementFilter) ([]*models.Measurement, error)

	// UpdateMeasurements and DeleteMeasurements apply to every row or to
	// none. DeleteMeasurements takes full IDs.
	UpdateMeasurements(ctx context.Context, ms []*models.Measurement) error
	DeleteMeasurements(ctx context.Context, ids []string) error

	Close() error
}

// MeasurementFilter narrows a listing. Zero values mean "no constraint".
// Results are ordered by CreatedAt descending, then ID descending.
type MeasurementFilter struct {
	CreatorID string
	ChildID   string
	// ChildName matches a case-insensitive substring of the child name.
	ChildName string
	// Category matches a case-insensitive substring of any of the three categories.
	Category       string
	IncludeDeleted bool
	Limit          int
}
