// ABOUTME: PostgreSQL backend built on a pgx connection pool.
// ABOUTME: Implements Repository with the same semantics as the SQLite store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/growth/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG stores measurements in PostgreSQL.
type PG struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PG)(nil)

// NewPool opens and pings a connection pool.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// OpenPostgres connects to databaseURL and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string, maxConns, minConns int32) (*PG, error) {
	pool, err := NewPool(ctx, databaseURL, maxConns, minConns)
	if err != nil {
		return nil, err
	}
	p := &PG{pool: pool}
	if err := p.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return p, nil
}

func (p *PG) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS measurements (
		id TEXT PRIMARY KEY,
		child_id TEXT NOT NULL,
		child_name TEXT NOT NULL,
		age_text TEXT NOT NULL,
		height DOUBLE PRECISION NOT NULL,
		weight DOUBLE PRECISION NOT NULL,
		gender TEXT NOT NULL,
		bmi DOUBLE PRECISION NOT NULL DEFAULT 0,
		height_category TEXT NOT NULL DEFAULT '',
		weight_category TEXT NOT NULL DEFAULT '',
		mass_category TEXT NOT NULL DEFAULT '',
		creator_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_child ON measurements(child_id);
	CREATE INDEX IF NOT EXISTS idx_measurements_creator ON measurements(creator_id);
	CREATE INDEX IF NOT EXISTS idx_measurements_created ON measurements(created_at DESC);
	`
	_, err := p.pool.Exec(ctx, schema)
	return err
}

// Close releases the pool.
func (p *PG) Close() error {
	p.pool.Close()
	return nil
}

func dollar(n int) string {
	return "$" + strconv.Itoa(n)
}

// CreateMeasurement stores a new measurement.
func (p *PG) CreateMeasurement(ctx context.Context, m *models.Measurement) error {
	query := `INSERT INTO measurements (` + measurementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := p.pool.Exec(ctx, query,
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
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
		m.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("create measurement: %w", err)
	}
	return nil
}

// GetMeasurement retrieves a live measurement by ID or ID prefix.
func (p *PG) GetMeasurement(ctx context.Context, idOrPrefix string) (*models.Measurement, error) {
	id, err := p.resolveID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + measurementColumns + ` FROM measurements WHERE id = $1 AND deleted_at IS NULL`
	m, err := scanPGMeasurement(p.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return m, err
}

// pgExecer is satisfied by both the pool and a pgx.Tx.
type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UpdateMeasurement overwrites the mutable fields of a live measurement.
func (p *PG) UpdateMeasurement(ctx context.Context, m *models.Measurement) error {
	return updatePGRow(ctx, p.pool, m)
}

// UpdateMeasurements overwrites several live measurements in one transaction.
func (p *PG) UpdateMeasurements(ctx context.Context, ms []*models.Measurement) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for _, m := range ms {
			if err := updatePGRow(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func updatePGRow(ctx context.Context, ex pgExecer, m *models.Measurement) error {
	query := `
		UPDATE measurements SET
			child_id = $1, child_name = $2, age_text = $3, height = $4, weight = $5, gender = $6,
			bmi = $7, height_category = $8, weight_category = $9, mass_category = $10, updated_at = $11
		WHERE id = $12 AND deleted_at IS NULL
	`
	tag, err := ex.Exec(ctx, query,
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
		m.UpdatedAt.UTC(),
		m.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update measurement: %w", err)
	}
	return expectPGAffected(tag, m.ID.String())
}

// DeleteMeasurement soft-deletes a measurement by ID or prefix.
func (p *PG) DeleteMeasurement(ctx context.Context, idOrPrefix string) error {
	id, err := p.resolveID(ctx, idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	return softDeletePG(ctx, p.pool, id, time.Now())
}

// DeleteMeasurements soft-deletes measurements by full ID in one transaction.
func (p *PG) DeleteMeasurements(ctx context.Context, ids []string) error {
	now := time.Now()
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for _, id := range ids {
			if err := softDeletePG(ctx, tx, id, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func softDeletePG(ctx context.Context, ex pgExecer, id string, at time.Time) error {
	tag, err := ex.Exec(ctx,
		"UPDATE measurements SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL",
		at.UTC(), id)
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	return expectPGAffected(tag, id)
}

// ListMeasurements returns measurements matching filter, newest first.
func (p *PG) ListMeasurements(ctx context.Context, filter *MeasurementFilter) ([]*models.Measurement, error) {
	where, args := filter.whereClause(dollar, "ILIKE")
	query := `SELECT ` + measurementColumns + ` FROM measurements` + where +
		` ORDER BY created_at DESC, id DESC`
	if filter != nil && filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT " + dollar(len(args))
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	var out []*models.Measurement
	for rows.Next() {
		m, err := scanPGMeasurement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *PG) resolveID(ctx context.Context, idOrPrefix string) (string, error) {
	if isFullUUID(idOrPrefix) {
		return idOrPrefix, nil
	}

	rows, err := p.pool.Query(ctx,
		`SELECT id FROM measurements WHERE id LIKE $1`+likeEscape+` AND deleted_at IS NULL`,
		likePrefix(idOrPrefix))
	if err != nil {
		return "", fmt.Errorf("resolve measurement ID: %w", err)
	}
	matches, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return "", fmt.Errorf("resolve measurement ID: %w", err)
	}
	return pickMatch(idOrPrefix, matches)
}

func expectPGAffected(tag pgconn.CommandTag, id string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanPGMeasurement(row pgx.Row) (*models.Measurement, error) {
	var m models.Measurement
	var idStr, sex string

	err := row.Scan(&idStr, &m.ChildID, &m.ChildName, &m.AgeText, &m.Height, &m.Weight, &sex, &m.BMI,
		&m.HeightCategory, &m.WeightCategory, &m.BMICategory, &m.CreatorID, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan measurement: %w", err)
	}

	m.ID, _ = uuid.Parse(idStr)
	m.Sex = models.Sex(sex)
	return &m, nil
}
