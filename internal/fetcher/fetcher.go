// Package fetcher downloads feed data over HTTP or FTP and parses CSV
// payloads.
package fetcher

import (
	"context"
	"io"
	"net/url"

	"github.com/rotisserie/eris"
)

// Fetcher dispatches downloads by URL scheme.
type Fetcher struct {
	http *HTTPFetcher
	ftp  *FTPFetcher
}

// New builds a fetcher with default HTTP and FTP transports.
func New() *Fetcher {
	return &Fetcher{
		http: NewHTTPFetcher(HTTPOptions{}),
		ftp:  NewFTPFetcher(FTPOptions{}),
	}
}

// Download fetches the URL and returns the body. The caller must close
// the returned reader.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %s", rawURL)
	}
	switch u.Scheme {
	case "http", "https":
		return f.http.Download(ctx, rawURL)
	case "ftp":
		return f.ftp.Download(ctx, rawURL)
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}
