package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustainly/esg-cli/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "answers.csv", `question_id,value,type
co2_emissions,12.5,numeric
renewable_energy,yes,boolean
Diversity_Ratio,40,
supplier_audits,maybe,boolean
,50,percentage
code_of_conduct,1,not_a_type
`)

	answers, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, answers, 3)

	assert.Equal(t, "co2_emissions", answers[0].QuestionID)
	assert.Equal(t, 12.5, answers[0].Value)
	assert.Equal(t, model.ValueNumeric, answers[0].ValueType)
	assert.Equal(t, model.ProvenanceCSVImport, answers[0].Provenance)

	// yes/no spellings map to 1/0.
	assert.Equal(t, 1.0, answers[1].Value)

	// Ids are lowercased; a missing type column defers to the catalog.
	assert.Equal(t, "diversity_ratio", answers[2].QuestionID)
	assert.Equal(t, model.ValueType(""), answers[2].ValueType)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "answers.yaml", `
answers:
  - question_id: co2_emissions
    value: 12.5
    value_type: numeric
  - question_id: renewable_energy
    value: 1
    provenance: csv_import
`)

	answers, err := LoadYAML(path)
	require.NoError(t, err)
	require.Len(t, answers, 2)

	// YAML answers default to user input unless tagged otherwise.
	assert.Equal(t, model.ProvenanceUser, answers[0].Provenance)
	assert.Equal(t, model.ProvenanceCSVImport, answers[1].Provenance)
	assert.Equal(t, 12.5, answers[0].Value)
}

func TestLoadYAMLMalformed(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "answers.yaml", "answers: {not: a list}\n\tbad indent")
	_, err := LoadYAML(path)
	assert.Error(t, err)
}

func TestLoadDispatch(t *testing.T) {
	t.Parallel()

	csvPath := writeFile(t, "a.CSV", "question_id,value\nco2_emissions,10\n")
	answers, err := Load(csvPath)
	require.NoError(t, err)
	assert.Len(t, answers, 1)

	ymlPath := writeFile(t, "a.yml", "answers: []\n")
	answers, err = Load(ymlPath)
	require.NoError(t, err)
	assert.Empty(t, answers)

	_, err = Load(filepath.Join(t.TempDir(), "answers.json"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"yes", 1, false},
		{"Y", 1, false},
		{"TRUE", 1, false},
		{"no", 0, false},
		{"false", 0, false},
		{"42.5", 42.5, false},
		{"-3", -3, false},
		{"maybe", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		v, err := parseValue(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, v, "input %q", tc.in)
	}
}
