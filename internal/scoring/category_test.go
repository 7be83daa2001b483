package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustainly/esg-cli/internal/catalog"
	"github.com/sustainly/esg-cli/internal/model"
)

func TestScoreCategoriesSubcategoryRollup(t *testing.T) {
	t.Parallel()
	cat := catalog.Default()

	metrics, warnings := Normalize([]model.Answer{
		{QuestionID: "data_privacy_compliance", Value: 1, Provenance: model.ProvenanceUser},
		{QuestionID: "ethics_training", Value: 80, Provenance: model.ProvenanceUser},
		{QuestionID: "supplier_code", Value: 1, Provenance: model.ProvenanceUser},
	}, cat)
	require.Empty(t, warnings)

	b := ScoreCategories(metrics, cat)

	// ethics = (0.05*1 + 0.05*0.8 + 0.03*1) / 0.13 * 100
	require.Contains(t, b.Subcategories, "ethics")
	assert.InDelta(t, 92.3, b.Subcategories["ethics"], 1e-9)

	// transparency unanswered: absent, and governance renormalizes to
	// ethics alone.
	assert.NotContains(t, b.Subcategories, "transparency")
	require.Contains(t, b.Categories, model.CategoryGovernance)
	assert.InDelta(t, 92.3, b.Categories[model.CategoryGovernance], 1e-9)

	// No environmental or social answers at all.
	assert.NotContains(t, b.Categories, model.CategoryEnvironmental)
	assert.NotContains(t, b.Categories, model.CategorySocial)
}

func TestScoreCategoriesFixedRollupWeights(t *testing.T) {
	t.Parallel()
	cat := catalog.Default()

	metrics, _ := Normalize([]model.Answer{
		{QuestionID: "co2_emissions", Value: 10, Provenance: model.ProvenanceUser},        // emissions 50
		{QuestionID: "energy_consumption", Value: 20000, Provenance: model.ProvenanceUser}, // energy 80
		{QuestionID: "packaging_recyclability", Value: 40, Provenance: model.ProvenanceUser}, // waste 40
	}, cat)

	b := ScoreCategories(metrics, cat)
	assert.InDelta(t, 50, b.Subcategories["emissions"], 1e-9)
	assert.InDelta(t, 80, b.Subcategories["energy"], 1e-9)
	assert.InDelta(t, 40, b.Subcategories["waste"], 1e-9)

	// environmental = 0.4*50 + 0.3*80 + 0.3*40
	assert.InDelta(t, 56, b.Categories[model.CategoryEnvironmental], 1e-9)
}

func TestScoreCategoriesEmpty(t *testing.T) {
	t.Parallel()

	b := ScoreCategories(nil, catalog.Default())
	assert.Empty(t, b.Subcategories)
	assert.Empty(t, b.Categories)
}
