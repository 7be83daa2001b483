package predict

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sustainly/esg-cli/internal/catalog"
	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/internal/store"
	"github.com/sustainly/esg-cli/internal/trend"
)

// AlertGenerationError scopes a generation failure to one user so batch
// processing can log it and continue.
type AlertGenerationError struct {
	UserID string
	Err    error
}

func (e *AlertGenerationError) Error() string {
	return fmt.Sprintf("alert generation for %s: %v", e.UserID, e.Err)
}

func (e *AlertGenerationError) Unwrap() error { return e.Err }

// Generator evaluates the alert rules against a user's stored history and
// persists the fired alerts. It is stateless between calls; the previous
// run's trend lives in the store's eval state.
type Generator struct {
	store    store.Store
	calendar []model.RegulatoryCalendarEntry
	now      func() time.Time
}

// NewGenerator builds a generator. calendar may be empty, which disables
// the regulatory deadline rule.
func NewGenerator(st store.Store, calendar []model.RegulatoryCalendarEntry) *Generator {
	return &Generator{
		store:    st,
		calendar: calendar,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the generator clock, used by tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate runs the rules for one user, upserts the fired alerts, and
// records this run's trend for the next one. Deterministic alert ids make
// re-running a no-op when conditions are unchanged.
func (g *Generator) Generate(ctx context.Context, userID, industry string) ([]model.PredictiveAlert, error) {
	history, err := g.store.ReadHistory(ctx, userID, 10)
	if err != nil {
		return nil, eris.Wrapf(err, "predict: read history for %s", userID)
	}
	if len(history) == 0 {
		return nil, eris.Errorf("predict: no score history for %s", userID)
	}

	latest := history[0]
	prior := history[1:]
	tr := trend.Classify(latest.Result.OverallScore, prior)
	delta := trend.Delta(latest.Result.OverallScore, prior)

	prevTrend, known, err := g.store.GetEvalState(ctx, userID)
	if err != nil {
		return nil, eris.Wrapf(err, "predict: get eval state for %s", userID)
	}
	if !known {
		prevTrend = ""
	}

	now := g.now()
	alerts := Evaluate(Input{
		UserID:       userID,
		Industry:     industry,
		Result:       latest.Result,
		History:      prior,
		Trend:        tr,
		TrendDelta:   delta,
		PrevTrend:    prevTrend,
		Completeness: completeness(latest.Result),
		Calendar:     g.calendar,
		Now:          now,
	})

	for _, a := range alerts {
		if err := g.store.UpsertAlert(ctx, a); err != nil {
			return nil, eris.Wrapf(err, "predict: upsert alert %s", a.ID)
		}
	}
	if err := g.store.SetEvalState(ctx, userID, tr, now); err != nil {
		return nil, eris.Wrapf(err, "predict: set eval state for %s", userID)
	}

	zap.L().Info("predict: alerts generated",
		zap.String("user_id", userID),
		zap.Int("fired", len(alerts)),
		zap.String("trend", string(tr)),
	)
	return alerts, nil
}

// completeness approximates the answered fraction from how many scoring
// dimensions the stored result covers.
func completeness(result model.ScoreResult) float64 {
	total := len(catalog.AllSubcategories())
	if total == 0 {
		return 0
	}
	return float64(len(result.SubcategoryScores)) / float64(total)
}
