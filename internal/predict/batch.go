package predict

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sustainly/esg-cli/internal/store"
)

// BatchSummary reports the outcome of one batch generation run.
type BatchSummary struct {
	RunID     string `json:"run_id"`
	Users     int    `json:"users"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

// BatchRunner generates alerts for every user with history. Users are
// independent: one failure is checkpointed and skipped, never aborting the
// run. Passing an existing run id resumes it, skipping users already
// checkpointed; deterministic alert ids make re-fired alerts no-ops.
type BatchRunner struct {
	store       store.Store
	gen         *Generator
	industry    string
	concurrency int
	now         func() time.Time
}

// NewBatchRunner builds a batch runner over the given generator.
func NewBatchRunner(st store.Store, gen *Generator, industry string, concurrency int) *BatchRunner {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &BatchRunner{
		store:       st,
		gen:         gen,
		industry:    industry,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run executes the batch. An empty runID starts a fresh run. Cancellation
// is cooperative at user boundaries: in-flight users finish, the rest are
// left un-checkpointed for the next resume.
func (r *BatchRunner) Run(ctx context.Context, runID string) (*BatchSummary, error) {
	if runID == "" {
		runID = uuid.New().String()
	}
	if err := r.store.StartBatchRun(ctx, runID, r.now()); err != nil {
		return nil, eris.Wrapf(err, "predict: start batch run %s", runID)
	}

	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "predict: list users")
	}
	done, err := r.store.ListCheckpointedUsers(ctx, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "predict: list checkpoints for %s", runID)
	}

	zap.L().Info("predict: batch starting",
		zap.String("run_id", runID),
		zap.Int("users", len(users)),
		zap.Int("already_done", len(done)),
		zap.Int("concurrency", r.concurrency),
	)

	var processed, failed, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, userID := range users {
		if done[userID] {
			skipped.Add(1)
			continue
		}
		userID := userID
		g.Go(func() error {
			// Cancellation boundary: never start a new user after cancel.
			if err := gctx.Err(); err != nil {
				return err
			}

			if _, err := r.gen.Generate(gctx, userID, r.industry); err != nil {
				genErr := &AlertGenerationError{UserID: userID, Err: err}
				zap.L().Error("predict: user failed in batch",
					zap.String("run_id", runID),
					zap.String("user_id", userID),
					zap.Error(genErr),
				)
				failed.Add(1)
				if cpErr := r.store.CheckpointUser(gctx, runID, userID, genErr.Error(), r.now()); cpErr != nil {
					return eris.Wrapf(cpErr, "predict: checkpoint failed user %s", userID)
				}
				return nil
			}

			processed.Add(1)
			return eris.Wrapf(r.store.CheckpointUser(gctx, runID, userID, "", r.now()),
				"predict: checkpoint user %s", userID)
		})
	}

	waitErr := g.Wait()

	summary := &BatchSummary{
		RunID:     runID,
		Users:     len(users),
		Processed: int(processed.Load()),
		Failed:    int(failed.Load()),
		Skipped:   int(skipped.Load()),
	}

	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) || errors.Is(waitErr, context.DeadlineExceeded) {
			zap.L().Warn("predict: batch cancelled, resume with the same run id",
				zap.String("run_id", runID))
			return summary, waitErr
		}
		return summary, waitErr
	}

	if err := r.store.CompleteBatchRun(ctx, runID, r.now()); err != nil {
		return summary, eris.Wrapf(err, "predict: complete batch run %s", runID)
	}

	zap.L().Info("predict: batch complete",
		zap.String("run_id", runID),
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}
