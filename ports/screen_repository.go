package ports

import (
	"context"

	"taxoscreen/domain/core"
	"taxoscreen/domain/screen"
)

// ScreenRepository persists screening runs and their results
type ScreenRepository interface {
	// CreateRun stores a completed run together with its results
	CreateRun(ctx context.Context, run *screen.Run) error

	// GetRun retrieves a run and its results by ID
	GetRun(ctx context.Context, id core.RunID) (*screen.Run, error)

	// ListRuns returns runs ordered by creation time descending
	ListRuns(ctx context.Context, limit, offset int) ([]*screen.Run, error)
}
