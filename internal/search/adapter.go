package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/metrics"
)

// Bundle is the combined text retrieved for one query.
type Bundle struct {
	Query     string
	Results   []Result
	PageURL   string
	PageText  string
	FetchErr  error // set when the first result's page could not be used
	Text      string
	Truncated bool
}

// Adapter combines a Provider and a Fetcher into bounded search text.
type Adapter struct {
	provider Provider
	fetcher  Fetcher
	log      *slog.Logger
}

func NewAdapter(p Provider, f Fetcher, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{provider: p, fetcher: f, log: logger}
}

// Lookup runs one search and builds a bundle from up to n results, truncated to
// charLimit runes. It fails with common.ErrSearchUnavailable when the search
// errors or returns no items. It also fails when the top item carries no link
// or when neither snippets nor page yield any text.
func (a *Adapter) Lookup(ctx context.Context, query string, n, charLimit int) (Bundle, error) {
	log := common.LoggerFrom(ctx, a.log)
	b := Bundle{Query: query}

	results, err := a.provider.Search(ctx, query, n)
	if err != nil {
		metrics.RecordSearch(metrics.ResultError)
		return b, fmt.Errorf("%w: %v", common.ErrSearchUnavailable, err)
	}
	if len(results) > n && n > 0 {
		results = results[:n]
	}
	if len(results) == 0 {
		metrics.RecordSearch(metrics.ResultEmpty)
		return b, fmt.Errorf("%w: no results for %q", common.ErrSearchUnavailable, query)
	}
	metrics.RecordSearch(metrics.ResultOK)
	b.Results = results

	b.PageURL = strings.TrimSpace(results[0].Link)
	if b.PageURL == "" {
		return b, fmt.Errorf("%w: top result has no link", common.ErrSearchUnavailable)
	}

	snippets := joinSnippets(results)

	if a.fetcher != nil {
		page, ferr := a.fetcher.Fetch(ctx, b.PageURL)
		switch {
		case ferr != nil:
			metrics.RecordFetch(metrics.ResultError)
			b.FetchErr = ferr
			log.Warn("search.fetch.degraded", "url", b.PageURL, "error", ferr)
		case strings.TrimSpace(page) == "":
			metrics.RecordFetch(metrics.ResultEmpty)
			b.FetchErr = fmt.Errorf("%w: %s: empty page", common.ErrFetchFailed, b.PageURL)
		default:
			metrics.RecordFetch(metrics.ResultOK)
			b.PageText = page
		}
	}

	full := snippets
	if b.PageText != "" {
		if full != "" {
			full += " "
		}
		full += b.PageText
	}
	if full == "" {
		return b, fmt.Errorf("%w: no usable text for %q", common.ErrSearchUnavailable, query)
	}
	b.Text, b.Truncated = Truncate(full, charLimit)

	log.Debug("search.lookup.ok",
		"query", query,
		"results", len(results),
		"page_used", b.PageText != "",
		"text_len", len(b.Text),
		"truncated", b.Truncated,
	)
	return b, nil
}

// Search is Lookup reduced to a string: constants.Unknown when nothing was found.
func (a *Adapter) Search(ctx context.Context, query string, n, charLimit int) string {
	b, err := a.Lookup(ctx, query, n, charLimit)
	if err != nil {
		common.LoggerFrom(ctx, a.log).Info("search.lookup.unavailable", "query", query, "error", err)
		return constants.Unknown
	}
	return b.Text
}

// Truncate cuts s to limit runes and appends the truncation marker when it cut.
// A non-positive limit disables truncation.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	r := []rune(s)
	return string(r[:limit]) + constants.TruncationMarker, true
}

func joinSnippets(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if s := strings.TrimSpace(r.Snippet); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
