package predict

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCalendarFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "calendar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
entries:
  - id: csrd-2026
    industry: retail
    name: CSRD reporting
    deadline: 2026-06-30T00:00:00Z
    timeline_days: 90
    readiness_threshold: 70
    readiness_weights:
      overall: 0.5
      governance: 0.3
      transparency: 0.2
    typical_penalty: "Fines up to 5% of annual turnover"
  - id: ""
    name: missing id
    deadline: 2026-06-30T00:00:00Z
`), 0o644))

	entries, err := LoadCalendarFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "csrd-2026", e.ID)
	assert.Equal(t, 90, e.TimelineDays)
	assert.Equal(t, 70.0, e.ReadinessThreshold)
	assert.Equal(t, 0.5, e.ReadinessWeights["overall"])
}

func TestParseCalendarCSV(t *testing.T) {
	t.Parallel()

	const feed = `id,industry,name,deadline,timeline_days,readiness_threshold
csrd-2026,retail,CSRD reporting,2026-06-30,90,70
bad-date,retail,Broken,someday,90,70
bad-days,retail,Broken,2026-06-30,soon,70
short,retail
packaging-2026,retail,Packaging directive,2026-09-01,0,60
`
	entries, err := ParseCalendarCSV(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "csrd-2026", entries[0].ID)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), entries[0].Deadline)

	// Non-positive timeline defaults to 90.
	assert.Equal(t, "packaging-2026", entries[1].ID)
	assert.Equal(t, 90, entries[1].TimelineDays)
}
