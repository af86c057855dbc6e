// ABOUTME: Measurement CRUD operations for SQLite storage.
// ABOUTME: Implements Repository with soft deletes and ID prefix resolution.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/growth/internal/models"
)

// timeLayout is fixed-width so lexical order on the TEXT column matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// CreateMeasurement stores a new measurement.
func (d *DB) CreateMeasurement(ctx context.Context, m *models.Measurement) error {
	query := `INSERT INTO measurements (` + measurementColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.ExecContext(ctx, query,
		m.ID.String(),
		m.ChildID,
		m.ChildName,
		m.AgeText,
		m.Height,
		m.Weight,
		string(m.Sex),
		m.BMI,
		m.HeightCategory,
		m.WeightCategory,
		m.BMICategory,
		m.CreatorID,
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
		formatNullTime(m.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("create measurement: %w", err)
	}
	return nil
}

// GetMeasurement retrieves a live measurement by ID or ID prefix.
func (d *DB) GetMeasurement(ctx context.Context, idOrPrefix string) (*models.Measurement, error) {
	id, err := d.resolveID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + measurementColumns + ` FROM measurements WHERE id = ? AND deleted_at IS NULL`
	m, err := scanMeasurement(d.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return m, err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UpdateMeasurement overwrites the mutable fields of a live measurement.
func (d *DB) UpdateMeasurement(ctx context.Context, m *models.Measurement) error {
	return updateRow(ctx, d.db, m)
}

// UpdateMeasurements overwrites several live measurements in one transaction.
func (d *DB) UpdateMeasurements(ctx context.Context, ms []*models.Measurement) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		for _, m := range ms {
			if err := updateRow(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func updateRow(ctx context.Context, ex execer, m *models.Measurement) error {
	query := `
		UPDATE measurements SET
			child_id = ?, child_name = ?, age_text = ?, height = ?, weight = ?, gender = ?,
			bmi = ?, height_category = ?, weight_category = ?, mass_category = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := ex.ExecContext(ctx, query,
		m.ChildID,
		m.ChildName,
		m.AgeText,
		m.Height,
		m.Weight,
		string(m.Sex),
		m.BMI,
		m.HeightCategory,
		m.WeightCategory,
		m.BMICategory,
		formatTime(m.UpdatedAt),
		m.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update measurement: %w", err)
	}
	return expectAffected(result, m.ID.String())
}

// DeleteMeasurement soft-deletes a measurement by ID or prefix.
func (d *DB) DeleteMeasurement(ctx context.Context, idOrPrefix string) error {
	id, err := d.resolveID(ctx, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	return softDelete(ctx, d.db, id, time.Now())
}

// DeleteMeasurements soft-deletes measurements by full ID in one transaction.
func (d *DB) DeleteMeasurements(ctx context.Context, ids []string) error {
	now := time.Now()
	return d.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if err := softDelete(ctx, tx, id, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func softDelete(ctx context.Context, ex execer, id string, at time.Time) error {
	ts := formatTime(at)
	result, err := ex.ExecContext(ctx,
		"UPDATE measurements SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		ts, ts, id)
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	return expectAffected(result, id)
}

// ListMeasurements returns measurements matching filter, newest first.
func (d *DB) ListMeasurements(ctx context.Context, filter *MeasurementFilter) ([]*models.Measurement, error) {
	where, args := filter.whereClause(func(int) string { return "?" }, "LIKE")
	query := `SELECT ` + measurementColumns + ` FROM measurements` + where +
		` ORDER BY created_at DESC, id DESC`
	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	var out []*models.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// resolveID finds the full ID of a live measurement from a prefix.
func (d *DB) resolveID(ctx context.Context, idOrPrefix string) (string, error) {
	if isFullUUID(idOrPrefix) {
		return idOrPrefix, nil
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id FROM measurements WHERE id LIKE ?`+likeEscape+` AND deleted_at IS NULL`,
		likePrefix(idOrPrefix))
	if err != nil {
		return "", fmt.Errorf("resolve measurement ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan measurement ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve measurement ID: %w", err)
	}

	return pickMatch(idOrPrefix, matches)
}

// pickMatch applies the unique-prefix rule to candidate IDs.
func pickMatch(prefix string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w %s: matches multiple records", ErrAmbiguousPrefix, prefix)
	}
}

func expectAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(row rowScanner) (*models.Measurement, error) {
	var m models.Measurement
	var idStr, sex, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(&idStr, &m.ChildID, &m.ChildName, &m.AgeText, &m.Height, &m.Weight, &sex, &m.BMI,
		&m.HeightCategory, &m.WeightCategory, &m.BMICategory, &m.CreatorID, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan measurement: %w", err)
	}

	m.ID, _ = uuid.Parse(idStr)
	m.Sex = models.Sex(sex)
	m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	m.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	if deletedAt.Valid {
		t, _ := time.Parse(timeLayout, deletedAt.String)
		m.DeletedAt = &t
	}
	return &m, nil
}
