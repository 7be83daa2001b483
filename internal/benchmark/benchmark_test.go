package benchmark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustainly/esg-cli/internal/model"
)

type mapSource map[string]model.IndustryBenchmark

func (m mapSource) GetBenchmark(_ context.Context, industry, dimension string) (*model.IndustryBenchmark, error) {
	b, ok := m[industry+"/"+dimension]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "retail", Key(" Retail "))
	assert.Equal(t, "retail", Key("RETAIL"))
	assert.Equal(t, "", Key("  "))
}

func TestPercentileAgainst(t *testing.T) {
	t.Parallel()

	b := model.IndustryBenchmark{Mean: 65, StdDev: 12}

	// Known CDF points.
	assert.InDelta(t, 50, PercentileAgainst(65, b), 1e-9)
	assert.InDelta(t, 98.1, PercentileAgainst(90, b), 0.1)
	assert.InDelta(t, 15.9, PercentileAgainst(53, b), 0.1) // one sigma below

	// Bounded.
	assert.GreaterOrEqual(t, PercentileAgainst(0, b), 0.0)
	assert.LessOrEqual(t, PercentileAgainst(100, b), 100.0)
}

func TestPercentileAgainstMonotonic(t *testing.T) {
	t.Parallel()

	b := model.IndustryBenchmark{Mean: 65, StdDev: 12}
	prev := PercentileAgainst(0, b)
	for score := 1.0; score <= 100; score++ {
		cur := PercentileAgainst(score, b)
		assert.GreaterOrEqual(t, cur, prev, "percentile regressed at %.0f", score)
		prev = cur
	}
}

func TestPercentileAgainstDegenerateStdDev(t *testing.T) {
	t.Parallel()

	b := model.IndustryBenchmark{Mean: 65, StdDev: 0}
	assert.Equal(t, 0.0, PercentileAgainst(60, b))
	assert.Equal(t, 50.0, PercentileAgainst(65, b))
	assert.Equal(t, 100.0, PercentileAgainst(70, b))
}

func TestPercentileGlobalFallback(t *testing.T) {
	t.Parallel()

	engine := NewEngine(mapSource{
		"retail/overall": {Industry: "retail", Dimension: "overall", Mean: 65, StdDev: 12},
		"global/overall": {Industry: "global", Dimension: "overall", Mean: 60, StdDev: 15},
	})

	pct, degraded, err := engine.Percentile(context.Background(), "Retail", "overall", 65)
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.InDelta(t, 50, pct, 1e-9)

	// Unknown industry falls back to global, flagged degraded.
	pct, degraded, err = engine.Percentile(context.Background(), "florist", "overall", 60)
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.InDelta(t, 50, pct, 1e-9)
}

func TestPercentileNoGlobalFallback(t *testing.T) {
	t.Parallel()

	engine := NewEngine(mapSource{})
	_, _, err := engine.Percentile(context.Background(), "florist", "overall", 60)
	assert.Error(t, err)
}
