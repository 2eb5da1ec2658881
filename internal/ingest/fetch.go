// Package ingest downloads captured attachments into the data directory and
// checks that what landed on disk is usable.
package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Fetcher downloads url to dest. Failures are logged and reported as false.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) bool
}

// HTTPFetcher streams resources over HTTP straight to their final path.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates a fetcher with a per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: resty.New().SetTimeout(timeout)}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) bool {
	resp, err := f.client.R().
		SetContext(ctx).
		SetOutput(dest).
		Get(url)
	if err == nil && resp.IsError() {
		err = fmt.Errorf("unexpected status %s", resp.Status())
	}
	if err != nil {
		log.Error().Err(err).Str("url", url).Str("dest", dest).Msg("download failed")
		return false
	}

	log.Info().Str("dest", dest).Int64("bytes", resp.Size()).Msg("download finished")
	return true
}

// EnsureDataDir creates the data directory. Callers log the error and keep
// running without it.
func EnsureDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return nil
}
