package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sustainly/esg-cli/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RatePerSec throttles outgoing requests. Default: 5/s.
	RatePerSec float64
}

// HTTPFetcher downloads feed files over HTTP with rate limiting and
// transient-error retry.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "esg-cli/1.0"
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 5
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), int(opts.RatePerSec)),
	}
}

// Download fetches the URL and returns the response body. Transient
// statuses (429, 5xx) are retried with backoff.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	return resilience.Retry(ctx, resilience.RetryConfig{}, "http download",
		func(ctx context.Context) (io.ReadCloser, error) {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "fetcher: rate limiter wait")
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return nil, eris.Wrap(err, "fetcher: create request")
			}
			req.Header.Set("User-Agent", f.opts.UserAgent)

			resp, err := f.client.Do(req)
			if err != nil {
				return nil, eris.Wrapf(err, "fetcher: get %s", rawURL)
			}
			if resp.StatusCode != http.StatusOK {
				_ = resp.Body.Close()
				err := eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
				if resilience.IsTransientHTTPStatus(resp.StatusCode) {
					return nil, resilience.NewTransientError(err, resp.StatusCode)
				}
				return nil, err
			}
			return resp.Body, nil
		})
}
