// ABOUTME: Orchestrates measurement recording, editing and child-level views.
// ABOUTME: Runs the evaluator on every write and aggregates stored rows into child summaries.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/growth/internal/agetext"
	"github.com/harperreed/growth/internal/children"
	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/nutrition"
	"github.com/harperreed/growth/internal/reference"
	"github.com/harperreed/growth/internal/storage"
	"github.com/rs/zerolog"
)

// ErrInvalidMeasurement is returned for input that cannot be stored.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// Tracker is the entry point for every growth operation that touches storage.
type Tracker struct {
	repo storage.Repository
	eval *nutrition.Evaluator
	log  zerolog.Logger
	now  func() time.Time
}

// New creates a Tracker over repo.
func New(repo storage.Repository, eval *nutrition.Evaluator, log zerolog.Logger) *Tracker {
	return &Tracker{
		repo: repo,
		eval: eval,
		log:  log.With().Str("component", "tracker").Logger(),
		now:  time.Now,
	}
}

// Reference returns the dataset used for classification.
func (t *Tracker) Reference() *reference.Dataset {
	return t.eval.Dataset()
}

// Evaluate classifies a measurement without storing it.
func (t *Tracker) Evaluate(height, weight float64, sex models.Sex, ageText string) nutrition.Result {
	return t.eval.Evaluate(height, weight, sex, ageText)
}

// NewMeasurementInput is the data needed to record a measurement.
type NewMeasurementInput struct {
	ChildName string
	Sex       models.Sex
	AgeText   string
	Height    float64
	Weight    float64
}

func (in *NewMeasurementInput) normalize() error {
	in.ChildName = strings.TrimSpace(in.ChildName)
	in.AgeText = strings.TrimSpace(in.AgeText)

	switch {
	case in.ChildName == "":
		return fmt.Errorf("%w: child name is required", ErrInvalidMeasurement)
	case !in.Sex.IsValid():
		return fmt.Errorf("%w: unknown sex %q", ErrInvalidMeasurement, in.Sex)
	case in.AgeText == "":
		return fmt.Errorf("%w: age is required", ErrInvalidMeasurement)
	}
	return validateBody(in.Height, in.Weight)
}

func validateBody(height, weight float64) error {
	if height <= 0 {
		return fmt.Errorf("%w: height must be positive, got %v", ErrInvalidMeasurement, height)
	}
	if weight <= 0 {
		return fmt.Errorf("%w: weight must be positive, got %v", ErrInvalidMeasurement, weight)
	}
	return nil
}

// Record evaluates and stores a new measurement for creatorID.
func (t *Tracker) Record(ctx context.Context, in NewMeasurementInput, creatorID string) (*models.Measurement, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	m := models.NewMeasurement(creatorID, in.ChildName, in.Sex, in.AgeText, in.Height, in.Weight).
		WithCreatedAt(t.now())
	t.eval.Apply(m)

	if err := t.repo.CreateMeasurement(ctx, m); err != nil {
		return nil, fmt.Errorf("record measurement: %w", err)
	}

	t.log.Info().
		Str("id", m.ID.String()).
		Str("child_id", m.ChildID).
		Str("height_category", m.HeightCategory).
		Str("weight_category", m.WeightCategory).
		Str("mass_category", m.BMICategory).
		Msg("measurement recorded")
	return m, nil
}

// Get returns one live measurement with AgeInMonths filled in when parsable.
func (t *Tracker) Get(ctx context.Context, idOrPrefix string) (*models.Measurement, error) {
	m, err := t.repo.GetMeasurement(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	withMonths(m)
	return m, nil
}

// UpdateInput holds optional edits to a measurement. Nil fields are kept.
type UpdateInput struct {
	AgeInMonths *int
	Height      *float64
	Weight      *float64
}

// Update edits age, height or weight and re-derives BMI and categories.
// Setting AgeInMonths rewrites the age text in canonical form. Name and sex
// are changed only through UpdateChild.
func (t *Tracker) Update(ctx context.Context, idOrPrefix string, in UpdateInput) (*models.Measurement, error) {
	if in.AgeInMonths == nil && in.Height == nil && in.Weight == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidMeasurement)
	}
	if in.AgeInMonths != nil && *in.AgeInMonths < 0 {
		return nil, fmt.Errorf("%w: age in months must not be negative", ErrInvalidMeasurement)
	}

	m, err := t.repo.GetMeasurement(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	if in.AgeInMonths != nil {
		m.AgeText = agetext.Format(*in.AgeInMonths)
	}
	if in.Height != nil {
		m.Height = *in.Height
	}
	if in.Weight != nil {
		m.Weight = *in.Weight
	}
	if err := validateBody(m.Height, m.Weight); err != nil {
		return nil, err
	}

	t.eval.Apply(m)
	m.UpdatedAt = t.now()

	if err := t.repo.UpdateMeasurement(ctx, m); err != nil {
		return nil, fmt.Errorf("update measurement: %w", err)
	}

	t.log.Info().Str("id", m.ID.String()).Str("age", m.AgeText).Msg("measurement updated")
	return m, nil
}

// Delete soft-deletes one measurement.
func (t *Tracker) Delete(ctx context.Context, idOrPrefix string) error {
	if err := t.repo.DeleteMeasurement(ctx, idOrPrefix); err != nil {
		return err
	}
	t.log.Info().Str("id", idOrPrefix).Msg("measurement deleted")
	return nil
}

// ListFilter narrows a measurement listing.
type ListFilter struct {
	// Category matches any of the three categories, case-insensitive substring.
	Category  string
	CreatorID string
	ChildID   string
	Window    *children.Window
}

// ListMeasurements returns raw rows newest first, windowed. Meta counts rows.
func (t *Tracker) ListMeasurements(ctx context.Context, f ListFilter) (children.Page[*models.Measurement], error) {
	rows, err := t.repo.ListMeasurements(ctx, &storage.MeasurementFilter{
		CreatorID: f.CreatorID,
		ChildID:   f.ChildID,
		Category:  f.Category,
	})
	if err != nil {
		return children.Page[*models.Measurement]{}, err
	}
	for _, m := range rows {
		withMonths(m)
	}
	return children.Paginate(rows, f.Window), nil
}

// ListByCreator returns every live measurement recorded by creatorID.
func (t *Tracker) ListByCreator(ctx context.Context, creatorID string) ([]*models.Measurement, error) {
	rows, err := t.repo.ListMeasurements(ctx, &storage.MeasurementFilter{CreatorID: creatorID})
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		withMonths(m)
	}
	return rows, nil
}

// ChildFilter narrows a child listing.
type ChildFilter struct {
	// Name matches the child name, case-insensitive substring.
	Name      string
	CreatorID string
	Window    *children.Window
}

// ListChildren aggregates rows into child summaries, then windows them.
// Meta counts children, not rows.
func (t *Tracker) ListChildren(ctx context.Context, f ChildFilter) (children.Page[*models.ChildSummary], error) {
	rows, err := t.repo.ListMeasurements(ctx, &storage.MeasurementFilter{
		CreatorID: f.CreatorID,
		ChildName: f.Name,
	})
	if err != nil {
		return children.Page[*models.ChildSummary]{}, err
	}
	return children.SummarizeAndPaginate(rows, f.Window), nil
}

// GetChild returns the summary of one child.
func (t *Tracker) GetChild(ctx context.Context, childID string) (*models.ChildSummary, error) {
	rows, err := t.childRows(ctx, childID)
	if err != nil {
		return nil, err
	}
	return children.Summarize(rows)
}

// ChildUpdate holds optional edits to a child's identity.
type ChildUpdate struct {
	Name *string
	Sex  *models.Sex
}

// UpdateChild renames a child or changes its sex on every row, moving the
// rows to the recomputed child ID in one batch. A sex change re-derives
// categories.
func (t *Tracker) UpdateChild(ctx context.Context, childID string, in ChildUpdate) (*models.ChildSummary, error) {
	if in.Name == nil && in.Sex == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidMeasurement)
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: child name is required", ErrInvalidMeasurement)
	}
	if in.Sex != nil && !in.Sex.IsValid() {
		return nil, fmt.Errorf("%w: unknown sex %q", ErrInvalidMeasurement, *in.Sex)
	}

	rows, err := t.childRows(ctx, childID)
	if err != nil {
		return nil, err
	}

	now := t.now()
	var newID string
	for _, m := range rows {
		if in.Name != nil {
			m.ChildName = strings.TrimSpace(*in.Name)
		}
		if in.Sex != nil && *in.Sex != m.Sex {
			m.Sex = *in.Sex
			t.eval.Apply(m)
		}
		m.ChildID = models.DeriveChildID(m.CreatorID, m.ChildName, m.Sex)
		m.UpdatedAt = now
		newID = m.ChildID
	}

	// All rows move together or the child keeps its old identity.
	if err := t.repo.UpdateMeasurements(ctx, rows); err != nil {
		return nil, fmt.Errorf("update child %s: %w", childID, err)
	}

	t.log.Info().Str("from", childID).Str("to", newID).Int("rows", len(rows)).Msg("child updated")
	return t.GetChild(ctx, newID)
}

// DeleteChild soft-deletes every row of a child in one batch and returns
// how many.
func (t *Tracker) DeleteChild(ctx context.Context, childID string) (int, error) {
	rows, err := t.childRows(ctx, childID)
	if err != nil {
		return 0, err
	}

	ids := make([]string, len(rows))
	for i, m := range rows {
		ids[i] = m.ID.String()
	}
	if err := t.repo.DeleteMeasurements(ctx, ids); err != nil {
		return 0, fmt.Errorf("delete child %s: %w", childID, err)
	}

	t.log.Info().Str("child_id", childID).Int("rows", len(rows)).Msg("child deleted")
	return len(rows), nil
}

// childRows loads the live rows of one child, or a not-found error that
// matches both storage.ErrNotFound and children.ErrNotFound.
func (t *Tracker) childRows(ctx context.Context, childID string) ([]*models.Measurement, error) {
	rows, err := t.repo.ListMeasurements(ctx, &storage.MeasurementFilter{ChildID: childID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrNotFound, childID, children.ErrNotFound)
	}
	return rows, nil
}

func withMonths(m *models.Measurement) {
	if months, ok := agetext.Parse(m.AgeText); ok {
		m.AgeInMonths = &months
	}
}
