package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustainly/esg-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sampleResult(overall float64, at time.Time) model.ScoreResult {
	return model.ScoreResult{
		OverallScore: overall,
		CategoryScores: map[model.Category]float64{
			model.CategoryEnvironmental: overall,
		},
		SubcategoryScores: map[string]float64{"energy": overall},
		Badge:             model.BadgeEcoImprover,
		Level:             7,
		CalculatedAt:      at,
	}
}

func sampleAlert(userID, windowKey string, now time.Time) model.PredictiveAlert {
	return model.PredictiveAlert{
		ID:                 model.AlertID(userID, model.AlertComplianceGap, windowKey),
		UserID:             userID,
		Type:               model.AlertComplianceGap,
		RiskLevel:          model.RiskHigh,
		Title:              "Environmental compliance gap",
		Description:        "Environmental score is below the compliance floor",
		PredictedImpact:    "Likely audit findings within two quarters",
		RecommendedActions: []string{"Commission an energy audit"},
		TimelineDays:       60,
		ConfidenceScore:    0.8,
		DataSources:        []string{"score_history"},
		CreatedAt:          now,
		ExpiresAt:          now.AddDate(0, 0, 60),
	}
}

func TestSQLiteHistoryRoundTrip(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var seqs []int64
	for i, overall := range []float64{55, 62, 70} {
		seq, err := st.AppendHistory(ctx, "u1", sampleResult(overall, base.AddDate(0, 0, i)))
		require.NoError(t, err)
		seqs = append(seqs, seq)
	}
	assert.Less(t, seqs[0], seqs[1])
	assert.Less(t, seqs[1], seqs[2])

	entries, err := st.ReadHistory(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Most recent first.
	assert.Equal(t, 70.0, entries[0].Result.OverallScore)
	assert.Equal(t, 55.0, entries[2].Result.OverallScore)
	assert.Equal(t, "u1", entries[0].UserID)
	assert.Equal(t, 70.0, entries[0].Result.CategoryScores[model.CategoryEnvironmental])

	limited, err := st.ReadHistory(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, 70.0, limited[0].Result.OverallScore)

	empty, err := st.ReadHistory(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteListUsers(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, u := range []string{"zeta", "alpha", "alpha"} {
		_, err := st.AppendHistory(ctx, u, sampleResult(60, at))
		require.NoError(t, err)
	}

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, users)
}

func TestSQLiteUpsertAlertPreservesCreatedAndResolved(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	alert := sampleAlert("u1", "environmental", now)
	require.NoError(t, st.UpsertAlert(ctx, alert))

	// Re-upsert later with a different risk level and a fresh expiry.
	later := alert
	later.RiskLevel = model.RiskCritical
	later.CreatedAt = now.AddDate(0, 0, 7)
	later.ExpiresAt = now.AddDate(0, 0, 67)
	require.NoError(t, st.UpsertAlert(ctx, later))

	active, err := st.ListActiveAlerts(ctx, "u1", now)
	require.NoError(t, err)
	require.Len(t, active, 1)

	got := active[0]
	assert.Equal(t, alert.ID, got.ID)
	assert.Equal(t, model.RiskCritical, got.RiskLevel)
	assert.Equal(t, now, got.CreatedAt.UTC(), "created_at survives re-upsert")
	assert.Equal(t, now.AddDate(0, 0, 67), got.ExpiresAt.UTC())
	assert.False(t, got.IsResolved)
	assert.Equal(t, alert.RecommendedActions, got.RecommendedActions)
	assert.Equal(t, alert.DataSources, got.DataSources)
}

func TestSQLiteListActiveAlertsFilters(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	live := sampleAlert("u1", "environmental", now)
	expired := sampleAlert("u1", "social", now.AddDate(0, 0, -90))
	resolved := sampleAlert("u1", "governance", now)
	other := sampleAlert("u2", "environmental", now)

	for _, a := range []model.PredictiveAlert{live, expired, resolved, other} {
		require.NoError(t, st.UpsertAlert(ctx, a))
	}
	require.NoError(t, st.ResolveAlert(ctx, "u1", resolved.ID, now))

	active, err := st.ListActiveAlerts(ctx, "u1", now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, live.ID, active[0].ID)
}

func TestSQLiteResolveAlert(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	alert := sampleAlert("u1", "environmental", now)
	require.NoError(t, st.UpsertAlert(ctx, alert))

	require.NoError(t, st.ResolveAlert(ctx, "u1", alert.ID, now.AddDate(0, 0, 1)))

	active, err := st.ListActiveAlerts(ctx, "u1", now)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Unknown id, and a mismatched user, both report not found.
	err = st.ResolveAlert(ctx, "u1", model.AlertID("u1", model.AlertTrendDecline, "none"), now)
	assert.Error(t, err)
	err = st.ResolveAlert(ctx, "u2", alert.ID, now)
	assert.Error(t, err)
}

func TestSQLiteEvalState(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	_, known, err := st.GetEvalState(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, known)

	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.SetEvalState(ctx, "u1", model.TrendDeclining, at))

	tr, known, err := st.GetEvalState(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, model.TrendDeclining, tr)

	// Overwrite on the next evaluation.
	require.NoError(t, st.SetEvalState(ctx, "u1", model.TrendStable, at.AddDate(0, 0, 1)))
	tr, _, err = st.GetEvalState(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.TrendStable, tr)
}

func TestSQLiteBenchmarks(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	missing, err := st.GetBenchmark(ctx, "retail", "overall")
	require.NoError(t, err)
	assert.Nil(t, missing)

	b := model.IndustryBenchmark{Industry: "retail", Dimension: "overall", Mean: 65, StdDev: 12, SampleSize: 1200}
	require.NoError(t, st.UpsertBenchmark(ctx, b))

	got, err := st.GetBenchmark(ctx, "retail", "overall")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b, *got)

	b.Mean = 66.5
	b.SampleSize = 1300
	require.NoError(t, st.UpsertBenchmark(ctx, b))
	got, err = st.GetBenchmark(ctx, "retail", "overall")
	require.NoError(t, err)
	assert.Equal(t, 66.5, got.Mean)
	assert.Equal(t, 1300, got.SampleSize)
}

func TestSQLiteBatchRunLifecycle(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	const runID = "run-1"

	require.NoError(t, st.StartBatchRun(ctx, runID, now))
	// Resuming the same run is a no-op, not a conflict.
	require.NoError(t, st.StartBatchRun(ctx, runID, now.Add(time.Hour)))

	require.NoError(t, st.CheckpointUser(ctx, runID, "u1", "", now))
	require.NoError(t, st.CheckpointUser(ctx, runID, "u2", "history unavailable", now))
	// Re-checkpointing a user updates in place.
	require.NoError(t, st.CheckpointUser(ctx, runID, "u2", "", now.Add(time.Minute)))

	done, err := st.ListCheckpointedUsers(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"u1": true, "u2": true}, done)

	require.NoError(t, st.CompleteBatchRun(ctx, runID, now.Add(time.Hour)))
	assert.Error(t, st.CompleteBatchRun(ctx, "no-such-run", now))
}
