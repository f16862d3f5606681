// Package fetcher retrieves page HTML over HTTP with an optional
// file-based TTL cache so repeated watch ticks don't hammer the origin.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 20 * time.Second
	maxBodyBytes   = 8 << 20 // pages larger than this are truncated
	userAgent      = "spendguard/1.0"
)

type Fetcher struct {
	client *http.Client
	cache  *Cache
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// WithCache attaches a TTL cache. Cached bodies are returned without a
// network round trip until they expire.
func (f *Fetcher) WithCache(c *Cache) *Fetcher {
	f.cache = c
	return f
}

// GetHTML fetches the page body at url. The context bounds the whole
// request.
func (f *Fetcher) GetHTML(ctx context.Context, url string) (string, error) {
	if f.cache != nil {
		if body, ok := f.cache.Get(url); ok {
			return string(body), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if f.cache != nil {
		// Cache write failures downgrade to uncached operation.
		_ = f.cache.Set(url, body)
	}
	return string(body), nil
}
