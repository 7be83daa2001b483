package benchmark

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustainly/esg-cli/internal/fetcher"
	"github.com/sustainly/esg-cli/internal/model"
)

type memUpserter struct {
	rows map[string]model.IndustryBenchmark
}

func (m *memUpserter) UpsertBenchmark(_ context.Context, b model.IndustryBenchmark) error {
	if m.rows == nil {
		m.rows = make(map[string]model.IndustryBenchmark)
	}
	m.rows[b.Industry+"/"+b.Dimension] = b
	return nil
}

func TestSyncParsesFeed(t *testing.T) {
	t.Parallel()

	const feed = `industry,dimension,mean,stddev,sample_size
Retail,overall,65.0,12.0,1200
retail,environmental,58.5,14.2,1200
global,overall,60.0,15.0,9800
retail,overall,not-a-number,12.0,1200
retail,,55.0,10.0,100
`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	up := &memUpserter{}
	syncer := NewSyncer(fetcher.New(), up)

	n, err := syncer.Sync(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	row, ok := up.rows["retail/overall"]
	require.True(t, ok)
	assert.Equal(t, 65.0, row.Mean)
	assert.Equal(t, 12.0, row.StdDev)
	assert.Equal(t, 1200, row.SampleSize)

	_, ok = up.rows["global/overall"]
	assert.True(t, ok)
}

func TestSyncDownloadError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	syncer := NewSyncer(fetcher.New(), &memUpserter{})
	_, err := syncer.Sync(context.Background(), srv.URL)
	assert.Error(t, err)
}
