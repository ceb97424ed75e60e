package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
)

type fakeProvider struct {
	results []Result
	err     error
	queries []string
}

func (f *fakeProvider) Search(_ context.Context, query string, _ int) ([]Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeFetcher struct {
	pages map[string]string
	err   error
	urls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}

func threeResults() []Result {
	return []Result{
		{Link: "https://a.example/1", Snippet: "First snippet."},
		{Link: "https://b.example/2", Snippet: "Second snippet."},
		{Link: "https://c.example/3", Snippet: "Third snippet."},
	}
}

func TestLookup_SnippetsAndPage(t *testing.T) {
	fp := &fakeProvider{results: threeResults()}
	ff := &fakeFetcher{pages: map[string]string{"https://a.example/1": "Page body text."}}
	a := NewAdapter(fp, ff, nil)

	b, err := a.Lookup(context.Background(), "Owner's Name yacht insurance details", 3, 500)
	require.NoError(t, err)
	assert.Equal(t, "First snippet. Second snippet. Third snippet. Page body text.", b.Text)
	assert.False(t, b.Truncated)
	assert.Nil(t, b.FetchErr)
	assert.Equal(t, []string{"https://a.example/1"}, ff.urls)
}

func TestLookup_FetchFailureFallsBackToSnippets(t *testing.T) {
	ff := &fakeFetcher{err: errors.New("dial tcp: timeout")}
	a := NewAdapter(&fakeProvider{results: threeResults()}, ff, nil)

	b, err := a.Lookup(context.Background(), "q", 3, 500)
	require.NoError(t, err)
	assert.Equal(t, "First snippet. Second snippet. Third snippet.", b.Text)
	assert.Error(t, b.FetchErr)
}

func TestLookup_EmptyPageFallsBackToSnippets(t *testing.T) {
	a := NewAdapter(&fakeProvider{results: threeResults()}, &fakeFetcher{}, nil)

	b, err := a.Lookup(context.Background(), "q", 3, 500)
	require.NoError(t, err)
	assert.Equal(t, "First snippet. Second snippet. Third snippet.", b.Text)
	assert.ErrorIs(t, b.FetchErr, common.ErrFetchFailed)
}

func TestLookup_NoUsableText(t *testing.T) {
	results := []Result{{Link: "https://a.example/1", Snippet: "  "}, {Link: "https://b.example/2"}}
	for name, ff := range map[string]*fakeFetcher{
		"empty page":  {},
		"fetch error": {err: errors.New("connection reset")},
	} {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(&fakeProvider{results: results}, ff, nil)

			_, err := a.Lookup(context.Background(), "q", 3, 500)
			assert.ErrorIs(t, err, common.ErrSearchUnavailable)
			assert.Equal(t, constants.Unknown, a.Search(context.Background(), "q", 3, 500))
		})
	}
}

func TestLookup_Unavailable(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
	}{
		{name: "provider error", provider: &fakeProvider{err: errors.New("quota exceeded")}},
		{name: "no items", provider: &fakeProvider{}},
		{name: "top result without link", provider: &fakeProvider{results: []Result{{Snippet: "orphan"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ff := &fakeFetcher{}
			a := NewAdapter(tt.provider, ff, nil)

			_, err := a.Lookup(context.Background(), "q", 3, 500)
			assert.ErrorIs(t, err, common.ErrSearchUnavailable)
			assert.Equal(t, constants.Unknown, a.Search(context.Background(), "q", 3, 500))
			assert.Empty(t, ff.urls)
		})
	}
}

func TestLookup_CapsResultCount(t *testing.T) {
	results := append(threeResults(), Result{Link: "https://d.example/4", Snippet: "Fourth."})
	a := NewAdapter(&fakeProvider{results: results}, nil, nil)

	b, err := a.Lookup(context.Background(), "q", 3, 500)
	require.NoError(t, err)
	assert.Len(t, b.Results, 3)
	assert.NotContains(t, b.Text, "Fourth")
}

func TestSearch_Truncates(t *testing.T) {
	long := strings.Repeat("x", 800)
	ff := &fakeFetcher{pages: map[string]string{"https://a.example/1": long}}
	a := NewAdapter(&fakeProvider{results: threeResults()}, ff, nil)

	out := a.Search(context.Background(), "q", 3, 500)
	assert.Equal(t, 500+len(constants.TruncationMarker), utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, constants.TruncationMarker))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
		cut   bool
	}{
		{name: "under", in: "abc", limit: 5, want: "abc"},
		{name: "exact", in: "abcde", limit: 5, want: "abcde"},
		{name: "over", in: "abcdef", limit: 5, want: "abcde...", cut: true},
		{name: "runes", in: "ñandú ñandú", limit: 5, want: "ñandú...", cut: true},
		{name: "empty", in: "", limit: 5, want: ""},
		{name: "no limit", in: "abcdef", limit: 0, want: "abcdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cut := Truncate(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.cut, cut)
		})
	}
}

func TestTruncate_Law(t *testing.T) {
	for n := 0; n < 40; n++ {
		in := strings.Repeat("é", n)
		got, cut := Truncate(in, 20)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), 20+utf8.RuneCountInString(constants.TruncationMarker))
		if n <= 20 {
			assert.Equal(t, in, got)
			assert.False(t, cut)
		}
	}
}
