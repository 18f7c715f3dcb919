package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"

	"censusetl/internal/datasource/httpds"
)

// StatusError reports a non-success HTTP response for a fetched URL.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %q: unexpected status %s", e.URL, e.Status)
}

// Fetcher fetches URLs through the on-disk cache. A file present at the
// derived cache path is returned without any network access or freshness
// check; otherwise the document is fetched once, written to the cache, and
// returned. Nothing is retried here: URL, path, filesystem, and network
// failures surface as distinct error kinds and retry policy belongs to the
// caller.
type Fetcher struct {
	baseDir string
	client  *httpds.Client
}

// NewFetcher returns a Fetcher rooted at baseDir using client for misses.
func NewFetcher(baseDir string, client *httpds.Client) *Fetcher {
	return &Fetcher{baseDir: baseDir, client: client}
}

// Fetch returns the document bytes for rawURL, from cache when possible.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	p, err := FromURL(u, f.baseDir)
	if err != nil {
		return nil, err
	}

	full := p.FullPath()
	body, err := os.ReadFile(full)
	switch {
	case err == nil:
		return body, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read cache %q: %w", full, err)
	}

	resp, err := f.client.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode, Status: resp.Status}
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: read body: %w", rawURL, err)
	}

	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %q: %w", p.Dir, err)
	}
	if err := os.WriteFile(full, body, 0o644); err != nil {
		return nil, fmt.Errorf("write cache %q: %w", full, err)
	}
	return body, nil
}
