package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustainly/esg-cli/internal/benchmark"
	"github.com/sustainly/esg-cli/internal/catalog"
	"github.com/sustainly/esg-cli/internal/config"
	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/internal/predict"
	"github.com/sustainly/esg-cli/internal/scoring"
	"github.com/sustainly/esg-cli/internal/store"
)

func newTestAPI(t *testing.T) *apiServer {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	cat := catalog.Default()
	return &apiServer{
		store:  st,
		engine: scoring.NewEngine(cat, st, benchmark.NewEngine(st), config.ScoringConfig{}),
		gen:    predict.NewGenerator(st, nil),
	}
}

const scoreBody = `{
	"user_id": "u1",
	"industry": "retail",
	"save": true,
	"answers": [
		{"question_id": "energy_consumption", "value": 20000},
		{"question_id": "co2_emissions", "value": 10},
		{"question_id": "packaging_recyclability", "value": 60},
		{"question_id": "diversity_percentage", "value": 45},
		{"question_id": "female_leadership", "value": 40},
		{"question_id": "employee_satisfaction", "value": 7.5},
		{"question_id": "data_privacy_compliance", "value": 1},
		{"question_id": "ethics_training", "value": 80},
		{"question_id": "supplier_code", "value": 1},
		{"question_id": "transparency_reporting", "value": 0}
	]
}`

func TestServeHealth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestAPI(t).routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeScoreAndHistory(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestAPI(t).routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/score", "application/json", strings.NewReader(scoreBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var scored scoreResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scored))
	assert.Greater(t, scored.Result.OverallScore, 0.0)
	assert.NotEmpty(t, scored.Result.Badge)
	require.NotNil(t, scored.Result.EnvironmentalScore)
	require.NotNil(t, scored.Result.EmissionsScore)

	// The saved run shows up in history.
	resp, err = http.Get(srv.URL + "/v1/users/u1/history?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []model.ScoreHistoryEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, scored.Result.OverallScore, entries[0].Result.OverallScore)
}

func TestServeScoreResponseIsFlat(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestAPI(t).routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/score", "application/json", strings.NewReader(scoreBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))

	// One field per category and subcategory, not the internal score maps.
	for _, key := range []string{
		"overall_score", "environmental_score", "social_score", "governance_score",
		"emissions_score", "energy_score", "waste_score", "ethics_score",
		"badge", "level",
	} {
		assert.Contains(t, raw.Result, key)
	}
	assert.NotContains(t, raw.Result, "category_scores")
	assert.NotContains(t, raw.Result, "subcategory_scores")

	// The default catalog has no community question, so that bucket is null.
	assert.Equal(t, "null", string(raw.Result["community_score"]))
}

func TestServeScoreValidation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestAPI(t).routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/score", "application/json", strings.NewReader(`{"industry": "retail"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/v1/score", "application/json", strings.NewReader(`not json`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Too few answers to score.
	incomplete := `{"user_id": "u1", "industry": "retail", "answers": [
		{"question_id": "co2_emissions", "value": 10}
	]}`
	resp, err = http.Post(srv.URL+"/v1/score", "application/json", strings.NewReader(incomplete))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServeResolveAlert(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestAPI(t).routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/users/u1/alerts/not-a-uuid/resolve", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	id := model.AlertID("u1", model.AlertComplianceGap, "environmental")
	resp, err = http.Post(srv.URL+"/v1/users/u1/alerts/"+id.String()+"/resolve", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeListAlertsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestAPI(t).routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/users/u1/alerts")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
