// Package benchmark compares scores against industry peer distributions.
package benchmark

import (
	"context"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sustainly/esg-cli/internal/model"
)

// GlobalIndustry keys the fallback benchmark used when an industry has no
// reference row.
const GlobalIndustry = "global"

var fold = cases.Fold()

// Key canonicalizes an industry name for lookups ("Retail " → "retail").
func Key(industry string) string {
	return fold.String(strings.TrimSpace(industry))
}

// Source supplies benchmark reference rows. Nil result with nil error
// means no row exists for the pair.
type Source interface {
	GetBenchmark(ctx context.Context, industry, dimension string) (*model.IndustryBenchmark, error)
}

// Engine resolves percentiles against a Source, falling back to the
// global benchmark when an industry is missing.
type Engine struct {
	source Source
}

// NewEngine builds a benchmark engine over the given source.
func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// Percentile returns the score's standing in [0,100] against the
// industry's peer distribution for the given dimension. degraded is true
// when the global fallback benchmark was used; that is a warning, not a
// failure. A missing global fallback returns an error.
func (e *Engine) Percentile(ctx context.Context, industry, dimension string, score float64) (pct float64, degraded bool, err error) {
	b, err := e.source.GetBenchmark(ctx, Key(industry), dimension)
	if err != nil {
		return 0, false, eris.Wrapf(err, "benchmark: lookup %s/%s", industry, dimension)
	}
	if b == nil {
		zap.L().Warn("benchmark: no industry benchmark, using global fallback",
			zap.String("industry", industry),
			zap.String("dimension", dimension),
		)
		b, err = e.source.GetBenchmark(ctx, GlobalIndustry, dimension)
		if err != nil {
			return 0, false, eris.Wrapf(err, "benchmark: lookup global/%s", dimension)
		}
		if b == nil {
			return 0, false, eris.Errorf("benchmark: no benchmark for %s/%s and no global fallback", industry, dimension)
		}
		degraded = true
	}

	return PercentileAgainst(score, *b), degraded, nil
}

// PercentileAgainst applies the standard-normal CDF to the score's
// z-value under the benchmark distribution, clamped to [0,100]. For a
// fixed benchmark it is monotonically non-decreasing in score.
func PercentileAgainst(score float64, b model.IndustryBenchmark) float64 {
	if b.StdDev <= 0 {
		// Degenerate distribution: everyone at the mean.
		switch {
		case score < b.Mean:
			return 0
		case score > b.Mean:
			return 100
		default:
			return 50
		}
	}
	z := (score - b.Mean) / b.StdDev
	pct := 100 * 0.5 * (1 + math.Erf(z/math.Sqrt2))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
