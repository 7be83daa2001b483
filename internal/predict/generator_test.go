package predict

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// seedHistory appends results oldest first so reads come back newest first.
func seedHistory(t *testing.T, st store.Store, userID string, overalls ...float64) {
	t.Helper()
	for i, overall := range overalls {
		result := model.ScoreResult{
			OverallScore: overall,
			CategoryScores: map[model.Category]float64{
				model.CategoryEnvironmental: overall - 5,
				model.CategorySocial:        overall,
				model.CategoryGovernance:    overall + 5,
			},
			SubcategoryScores: map[string]float64{
				"energy": overall, "emissions": overall, "waste": overall,
				"diversity": overall, "employee": overall,
				"ethics": overall, "transparency": overall,
			},
			CalculatedAt: time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
		}
		_, err := st.AppendHistory(context.Background(), userID, result)
		require.NoError(t, err)
	}
}

func TestGenerateComplianceGapFromDecliningHistory(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	// 55, 52, 48 then 45: declining, environmental 40 under the floor.
	seedHistory(t, st, "u1", 55, 52, 48, 45)

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	gen := NewGenerator(st, nil).WithClock(func() time.Time { return now })

	// environmental 40 and social 45 both sit under the floor.
	alerts, err := gen.Generate(context.Background(), "u1", "retail")
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	byID := make(map[string]model.PredictiveAlert, len(alerts))
	for _, a := range alerts {
		assert.Equal(t, model.AlertComplianceGap, a.Type)
		assert.Equal(t, model.RiskHigh, a.RiskLevel)
		assert.Equal(t, 60, a.TimelineDays)
		byID[a.ID.String()] = a
	}
	envID := model.AlertID("u1", model.AlertComplianceGap, "environmental")
	assert.Contains(t, byID, envID.String())

	// Persisted and active.
	active, err := st.ListActiveAlerts(context.Background(), "u1", now)
	require.NoError(t, err)
	require.Len(t, active, 2)

	// Eval state recorded for the next run.
	tr, known, err := st.GetEvalState(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, model.TrendDeclining, tr)
}

func TestGenerateIdempotent(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	seedHistory(t, st, "u1", 55, 52, 48, 45)

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	gen := NewGenerator(st, nil).WithClock(func() time.Time { return now })

	first, err := gen.Generate(context.Background(), "u1", "retail")
	require.NoError(t, err)

	// Second run over unchanged history: same ids, no duplicates. The
	// second run also sees PrevTrend=declining, firing the trend rule.
	second, err := gen.Generate(context.Background(), "u1", "retail")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(second), len(first))

	active, err := st.ListActiveAlerts(context.Background(), "u1", now)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, a := range active {
		seen[a.ID.String()]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "alert %s duplicated", id)
	}
}

func TestGenerateTrendDeclineOnSecondDecliningRun(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	seedHistory(t, st, "u1", 80, 76, 72, 68)

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	gen := NewGenerator(st, nil).WithClock(func() time.Time { return now })

	// First run: declining but no prior eval state, categories above the
	// floor, so nothing fires.
	alerts, err := gen.Generate(context.Background(), "u1", "retail")
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// Second run: prev trend is declining now.
	alerts, err = gen.Generate(context.Background(), "u1", "retail")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertTrendDecline, alerts[0].Type)
	assert.Equal(t, model.RiskHigh, alerts[0].RiskLevel) // dropped 8 points
}

func TestGenerateNoHistory(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	gen := NewGenerator(st, nil)
	_, err := gen.Generate(context.Background(), "ghost", "retail")
	assert.Error(t, err)
}
