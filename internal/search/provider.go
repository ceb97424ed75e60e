package search

import "context"

// Result is one ranked search hit.
type Result struct {
	Title   string
	Link    string
	Snippet string
}

// Provider runs a web search and returns up to n ranked results.
type Provider interface {
	Search(ctx context.Context, query string, n int) ([]Result, error)
}

// Fetcher retrieves a page and returns its normalized text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
