package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"taxoscreen/domain/core"
	"taxoscreen/domain/screen"
	"taxoscreen/ports"
)

// screenRepository implements the ScreenRepository interface
type screenRepository struct {
	db *sqlx.DB
}

// NewScreenRepository creates a new screen repository
func NewScreenRepository(db *sqlx.DB) ports.ScreenRepository {
	return &screenRepository{db: db}
}

// CreateRun inserts a run and its results in one transaction
func (r *screenRepository) CreateRun(ctx context.Context, run *screen.Run) error {
	configJSON, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO screen_runs (
		id, dataset_label, config, status, error_message,
		features_total, features_kept, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.ExecContext(ctx, query,
		run.ID.String(), run.DatasetLabel, configJSON, run.Status, run.ErrorMessage,
		run.FeaturesTotal, run.FeaturesKept, run.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to create screen run: %w", err)
	}

	resultQuery := `INSERT INTO screen_results (
		run_id, feature_id, raw_p, adjusted_p, effect_size, rank
	) VALUES ($1, $2, $3, $4, $5, $6)`
	for _, res := range run.Results {
		_, err = tx.ExecContext(ctx, resultQuery,
			run.ID.String(), res.FeatureID, res.RawP, res.AdjustedP, res.EffectSize, res.Rank,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result for feature %s: %w", res.FeatureID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit screen run: %w", err)
	}
	return nil
}

// GetRun retrieves a run and its results by ID
func (r *screenRepository) GetRun(ctx context.Context, id core.RunID) (*screen.Run, error) {
	query := `SELECT
		id, dataset_label, config, status, COALESCE(error_message, '') as error_message,
		features_total, features_kept, created_at
	FROM screen_runs WHERE id = $1`

	run, err := r.scanRun(r.db.QueryRowxContext(ctx, query, id.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NewNotFoundError("screen run", id.String())
		}
		return nil, fmt.Errorf("failed to get screen run: %w", err)
	}

	resultQuery := `SELECT feature_id, raw_p, adjusted_p, effect_size, rank
	FROM screen_results WHERE run_id = $1 ORDER BY rank ASC`
	if err := r.db.SelectContext(ctx, &run.Results, resultQuery, id.String()); err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	return run, nil
}

// ListRuns returns runs ordered by creation time descending, without results
func (r *screenRepository) ListRuns(ctx context.Context, limit, offset int) ([]*screen.Run, error) {
	query := `SELECT
		id, dataset_label, config, status, COALESCE(error_message, '') as error_message,
		features_total, features_kept, created_at
	FROM screen_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryxContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query screen runs: %w", err)
	}
	defer rows.Close()

	var runs []*screen.Run
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan screen run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *screenRepository) scanRun(row rowScanner) (*screen.Run, error) {
	var run screen.Run
	var id string
	var configJSON []byte
	var createdAt sql.NullTime

	err := row.Scan(
		&id, &run.DatasetLabel, &configJSON, &run.Status, &run.ErrorMessage,
		&run.FeaturesTotal, &run.FeaturesKept, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	run.ID = core.RunID(id)
	if createdAt.Valid {
		run.CreatedAt = core.NewTimestamp(createdAt.Time)
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &run.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}
	return &run, nil
}
