// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines the measurements table and its lookup indexes.
package storage

import "context"

// initSchema creates or updates the database schema.
// Timestamps are stored as fixed-width UTC text so string order is time order.
func (d *DB) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS measurements (
		id TEXT PRIMARY KEY,
		child_id TEXT NOT NULL,
		child_name TEXT NOT NULL,
		age_text TEXT NOT NULL,
		height REAL NOT NULL,
		weight REAL NOT NULL,
		gender TEXT NOT NULL,
		bmi REAL NOT NULL DEFAULT 0,
		height_category TEXT NOT NULL DEFAULT '',
		weight_category TEXT NOT NULL DEFAULT '',
		mass_category TEXT NOT NULL DEFAULT '',
		creator_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_child ON measurements(child_id);
	CREATE INDEX IF NOT EXISTS idx_measurements_creator ON measurements(creator_id);
	CREATE INDEX IF NOT EXISTS idx_measurements_created ON measurements(created_at DESC);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}
