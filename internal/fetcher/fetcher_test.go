package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachCSV(t *testing.T) {
	t.Parallel()

	const data = `industry,dimension,mean
retail, overall ,65.0
global,overall
`
	var rows [][]string
	err := ForEachCSV(strings.NewReader(data), true, func(row []string) error {
		rows = append(rows, row)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Fields come back trimmed, and short rows are passed through as-is.
	assert.Equal(t, []string{"retail", "overall", "65.0"}, rows[0])
	assert.Equal(t, []string{"global", "overall"}, rows[1])
}

func TestForEachCSVNoHeader(t *testing.T) {
	t.Parallel()

	var rows int
	err := ForEachCSV(strings.NewReader("a,b\nc,d\n"), false, func([]string) error {
		rows++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
}

func TestForEachCSVCallbackErrorStopsIteration(t *testing.T) {
	t.Parallel()

	wantErr := eris.New("enough")
	var rows int
	err := ForEachCSV(strings.NewReader("h\n1\n2\n3\n"), true, func([]string) error {
		rows++
		if rows == 2 {
			return wantErr
		}
		return nil
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 2, rows)
}

func TestHTTPDownload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "esg-cli/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestHTTPDownloadRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{RatePerSec: 100})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body, err := f.Download(ctx, srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(data))
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPDownloadDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	_, err := f.Download(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDownloadDispatchesByScheme(t *testing.T) {
	t.Parallel()

	f := New()
	_, err := f.Download(context.Background(), "gopher://feeds.example.com/benchmarks.csv")
	assert.Error(t, err)
}
