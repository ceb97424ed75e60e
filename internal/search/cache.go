package search

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/inquiry-intake/internal/metrics"
)

// PageStore is a cache of fetched page text keyed by URL.
type PageStore interface {
	Get(ctx context.Context, url string) (text string, ok bool, err error)
	Put(ctx context.Context, url, text string) error
}

// CachingFetcher consults a PageStore before delegating to the wrapped Fetcher.
// Store errors are logged and otherwise ignored.
type CachingFetcher struct {
	next  Fetcher
	store PageStore
	log   *slog.Logger
}

func NewCachingFetcher(next Fetcher, store PageStore, logger *slog.Logger) *CachingFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingFetcher{next: next, store: store, log: logger}
}

func (c *CachingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	text, ok, err := c.store.Get(ctx, url)
	if err != nil {
		c.log.Warn("page cache read failed", "url", url, "error", err)
	} else if ok {
		metrics.RecordFetch(metrics.ResultCacheHit)
		return text, nil
	}

	text, err = c.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if text != "" {
		if err := c.store.Put(ctx, url, text); err != nil {
			c.log.Warn("page cache write failed", "url", url, "error", err)
		}
	}
	return text, nil
}
