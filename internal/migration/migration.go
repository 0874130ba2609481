package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"taxoscreen/internal/errors"
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
	if err := r.createScreenRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create screen_runs table")
	}
	if err := r.createScreenResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create screen_results table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createScreenRunsTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS screen_runs (
		id UUID PRIMARY KEY,
		dataset_label TEXT NOT NULL,
		config JSONB NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT,
		features_total INTEGER NOT NULL DEFAULT 0,
		features_kept INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createScreenResultsTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS screen_results (
		run_id UUID NOT NULL REFERENCES screen_runs(id) ON DELETE CASCADE,
		feature_id TEXT NOT NULL,
		raw_p DOUBLE PRECISION NOT NULL,
		adjusted_p DOUBLE PRECISION NOT NULL,
		effect_size DOUBLE PRECISION NOT NULL,
		rank INTEGER NOT NULL,
		PRIMARY KEY (run_id, feature_id)
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_screen_runs_created_at ON screen_runs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_screen_results_run_rank ON screen_results(run_id, rank)`,
	}
	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
