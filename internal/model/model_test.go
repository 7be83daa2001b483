package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertIDDeterministic(t *testing.T) {
	t.Parallel()

	a := AlertID("u1", AlertComplianceGap, "environmental")
	b := AlertID("u1", AlertComplianceGap, "environmental")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, AlertID("u2", AlertComplianceGap, "environmental"))
	assert.NotEqual(t, a, AlertID("u1", AlertTrendDecline, "environmental"))
	assert.NotEqual(t, a, AlertID("u1", AlertComplianceGap, "social"))
}

func TestAlertActive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	alert := PredictiveAlert{ExpiresAt: now.AddDate(0, 0, 30)}

	assert.True(t, alert.Active(now))

	resolved := alert
	resolved.IsResolved = true
	assert.False(t, resolved.Active(now))

	expired := alert
	expired.ExpiresAt = now.Add(-time.Hour)
	assert.False(t, expired.Active(now))
}

func TestProvenancePrecedence(t *testing.T) {
	t.Parallel()

	assert.True(t, ProvenanceUser.Beats(ProvenanceCSVImport))
	assert.True(t, ProvenanceCSVImport.Beats(ProvenanceLLM))
	assert.False(t, ProvenanceLLM.Beats(ProvenanceUser))
	assert.False(t, ProvenanceUser.Beats(ProvenanceUser))
}

func TestFlattenNilForAbsentBuckets(t *testing.T) {
	t.Parallel()

	r := ScoreResult{
		OverallScore:      71.9,
		CategoryScores:    map[Category]float64{CategoryEnvironmental: 68},
		SubcategoryScores: map[string]float64{"energy": 70, "emissions": 66},
		Badge:             BadgeStar,
		Level:             8,
	}
	flat := r.Flatten()

	require.NotNil(t, flat.EnvironmentalScore)
	assert.Equal(t, 68.0, *flat.EnvironmentalScore)
	assert.Nil(t, flat.SocialScore)
	assert.Nil(t, flat.GovernanceScore)
	assert.Nil(t, flat.CommunityScore)
	require.NotNil(t, flat.EnergyScore)
	assert.Equal(t, 70.0, *flat.EnergyScore)
	assert.Equal(t, BadgeStar, flat.Badge)
}
