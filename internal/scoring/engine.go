package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sustainly/esg-cli/internal/catalog"
	"github.com/sustainly/esg-cli/internal/config"
	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/internal/trend"
)

// History is the slice of the store the engine needs. Appends are
// serialized per user by the caller holding one engine invocation at a
// time per user.
type History interface {
	AppendHistory(ctx context.Context, userID string, result model.ScoreResult) (int64, error)
	ReadHistory(ctx context.Context, userID string, limit int) ([]model.ScoreHistoryEntry, error)
}

// Percentiler resolves a score's industry percentile. degraded is true
// when a fallback benchmark was used.
type Percentiler interface {
	Percentile(ctx context.Context, industry, dimension string, score float64) (pct float64, degraded bool, err error)
}

// Engine runs the full pipeline: normalize, score, aggregate, benchmark,
// trend. It holds no per-user state; everything mutable lives in the store.
type Engine struct {
	catalog *catalog.Catalog
	history History
	bench   Percentiler
	cfg     config.ScoringConfig
	now     func() time.Time
}

// NewEngine builds a scoring engine. history and bench may be nil: without
// a history the trend is always insufficient_data, without a bench no
// percentile is attached.
func NewEngine(cat *catalog.Catalog, history History, bench Percentiler, cfg config.ScoringConfig) *Engine {
	if cfg.MinAnsweredFraction <= 0 {
		cfg.MinAnsweredFraction = 0.5
	}
	if cfg.ImprovementThreshold <= 0 {
		cfg.ImprovementThreshold = 60
	}
	if cfg.StrengthThreshold <= 0 {
		cfg.StrengthThreshold = 80
	}
	return &Engine{
		catalog: cat,
		history: history,
		bench:   bench,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the engine clock, used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Compute runs the pipeline for one submission and, when save is set,
// appends the result to the user's history. The returned warnings carry
// every recovered validation problem plus benchmark degradation notices.
func (e *Engine) Compute(ctx context.Context, userID, industry string, answers []model.Answer, save bool) (*model.ScoreResult, []string, error) {
	metrics, warnings := Normalize(answers, e.catalog)

	answered := len(metrics)
	if Completeness(answered, e.catalog.Len()) < e.cfg.MinAnsweredFraction {
		return nil, warnings, &IncompleteAssessmentError{
			Answered: answered,
			Total:    e.catalog.Len(),
			Minimum:  e.cfg.MinAnsweredFraction,
		}
	}

	breakdown := ScoreCategories(metrics, e.catalog)
	overall := Overall(breakdown.Categories)

	result := &model.ScoreResult{
		OverallScore:      overall,
		CategoryScores:    breakdown.Categories,
		SubcategoryScores: breakdown.Subcategories,
		Badge:             BadgeFor(overall),
		Level:             LevelFor(overall),
		ImprovementAreas:  ImprovementAreas(breakdown.Subcategories, e.cfg.ImprovementThreshold),
		Strengths:         Strengths(breakdown.Subcategories, e.cfg.StrengthThreshold),
		Trend:             model.TrendInsufficientData,
		CalculatedAt:      e.now(),
	}

	if e.bench != nil && industry != "" {
		pct, degraded, err := e.bench.Percentile(ctx, industry, "overall", overall)
		switch {
		case err != nil:
			// Benchmarking never fails a score computation.
			zap.L().Warn("scoring: benchmark unavailable", zap.String("industry", industry), zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("benchmark unavailable for %q: score has no percentile", industry))
		default:
			result.IndustryPercentile = &pct
			if degraded {
				warnings = append(warnings, (&DegradedBenchmarkWarning{Industry: industry}).Error())
			}
		}
	}

	if e.history != nil {
		prior, err := e.history.ReadHistory(ctx, userID, 10)
		if err != nil {
			return nil, warnings, eris.Wrapf(err, "scoring: read history for %s", userID)
		}
		result.Trend = trend.Classify(overall, prior)
	}

	result.QuickWins, result.LongTermGoals = Recommendations(breakdown.Categories)

	if save && e.history != nil {
		seq, err := e.history.AppendHistory(ctx, userID, *result)
		if err != nil {
			return nil, warnings, eris.Wrapf(err, "scoring: append history for %s", userID)
		}
		zap.L().Info("scoring: result saved",
			zap.String("user_id", userID),
			zap.Int64("seq", seq),
			zap.Float64("overall", overall),
			zap.String("badge", result.Badge),
		)
	}

	return result, warnings, nil
}

// Completeness is the answered fraction of the catalog for a metric set.
func Completeness(answered, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(answered) / float64(total)
}
