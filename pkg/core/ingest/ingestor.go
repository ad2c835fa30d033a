package ingest

import (
	"context"
	"fmt"

	"market_sizing/pkg/core/facts"
)

// Ingestor drives the fetch-extract-store loop for a statistics page.
type Ingestor struct {
	fetcher *Fetcher
}

func NewIngestor(fetcher *Fetcher) *Ingestor {
	return &Ingestor{fetcher: fetcher}
}

// IngestURL fetches a page, extracts its table facts into the given
// category, and stores them. Returns how many facts were stored.
func (in *Ingestor) IngestURL(ctx context.Context, store facts.Store, url, category string) (int, error) {
	doc, err := in.fetcher.FetchDocument(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("ingest %s: %w", url, err)
	}

	extracted := ExtractTableFacts(doc, category, url)
	if len(extracted) == 0 {
		return 0, fmt.Errorf("ingest %s: no numeric table rows found", url)
	}

	stored := 0
	for _, f := range extracted {
		if err := store.Put(f); err != nil {
			fmt.Printf("[INGEST] store rejected fact %q: %v\n", f.Key, err)
			continue
		}
		stored++
	}
	return stored, nil
}
