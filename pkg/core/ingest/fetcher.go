// Package ingest pulls published market statistics pages and turns their
// tables into facts. It is the non-LLM path into the Fact Store: industry
// association stat pages, government data portals, competitor directories.
package ingest

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultUserAgent = "market-sizing-bot/1.0 (research; contact: ops@example.com)"

// Fetcher downloads HTML pages with an optional local cache.
type Fetcher struct {
	client    *http.Client
	userAgent string
	cacheDir  string // Optional local cache directory
}

// NewFetcher creates a fetcher. If cacheDir is non-empty, fetched pages are
// cached on disk and reused on subsequent runs.
func NewFetcher(cacheDir string) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: defaultUserAgent,
		cacheDir:  cacheDir,
	}
}

// FetchDocument retrieves a URL and parses it into a goquery document.
func (f *Fetcher) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	html, err := f.fetchHTML(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}
	return doc, nil
}

func (f *Fetcher) fetchHTML(ctx context.Context, url string) (string, error) {
	// 1. Check cache first
	cachePath := ""
	if f.cacheDir != "" {
		cachePath = filepath.Join(f.cacheDir, "html", f.cacheKey(url))
		if content, err := os.ReadFile(cachePath); err == nil && len(content) > 0 {
			return string(content), nil
		}
	}

	// 2. Fetch live
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body from %s: %w", url, err)
	}

	// 3. Cache the result
	if cachePath != "" {
		os.MkdirAll(filepath.Dir(cachePath), 0755)
		os.WriteFile(cachePath, body, 0644)
	}

	return string(body), nil
}

func (f *Fetcher) cacheKey(url string) string {
	return fmt.Sprintf("%x.html", sha1.Sum([]byte(url)))
}
