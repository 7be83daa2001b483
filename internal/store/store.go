package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sustainly/esg-cli/internal/model"
)

// Store defines the persistence contract for the scoring and alert engine.
type Store interface {
	// History (append-only per user)
	AppendHistory(ctx context.Context, userID string, result model.ScoreResult) (int64, error)
	ReadHistory(ctx context.Context, userID string, limit int) ([]model.ScoreHistoryEntry, error)
	ListUsers(ctx context.Context) ([]string, error)

	// Alerts
	UpsertAlert(ctx context.Context, alert model.PredictiveAlert) error
	ListActiveAlerts(ctx context.Context, userID string, now time.Time) ([]model.PredictiveAlert, error)
	ResolveAlert(ctx context.Context, userID string, alertID uuid.UUID, now time.Time) error

	// Evaluation state (previous generation run's trend, per user)
	GetEvalState(ctx context.Context, userID string) (model.Trend, bool, error)
	SetEvalState(ctx context.Context, userID string, trend model.Trend, at time.Time) error

	// Benchmark reference data
	UpsertBenchmark(ctx context.Context, b model.IndustryBenchmark) error
	GetBenchmark(ctx context.Context, industry, dimension string) (*model.IndustryBenchmark, error)

	// Batch run checkpoints
	StartBatchRun(ctx context.Context, runID string, startedAt time.Time) error
	CheckpointUser(ctx context.Context, runID, userID, failure string, at time.Time) error
	ListCheckpointedUsers(ctx context.Context, runID string) (map[string]bool, error)
	CompleteBatchRun(ctx context.Context, runID string, completedAt time.Time) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open dispatches on the configured driver.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(databaseURL)
	case "postgres":
		return NewPostgres(ctx, databaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
