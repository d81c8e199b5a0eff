package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"datadeck/internal/errors"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDatasetsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create datasets table")
	}
	if err := r.createDatasetRowsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create dataset_rows table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createDatasetsTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS datasets (
		user_id TEXT PRIMARY KEY,
		upload_id TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		status TEXT NOT NULL,
		schema JSONB NOT NULL,
		report JSONB NOT NULL DEFAULT '{}',
		row_count INTEGER NOT NULL DEFAULT 0
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createDatasetRowsTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS dataset_rows (
		user_id TEXT NOT NULL REFERENCES datasets(user_id) ON DELETE CASCADE,
		row_index INTEGER NOT NULL,
		cells JSONB NOT NULL,
		PRIMARY KEY (user_id, row_index)
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE INDEX IF NOT EXISTS idx_dataset_rows_user_order
		ON dataset_rows (user_id, row_index)`
	_, err := db.ExecContext(ctx, query)
	return err
}
