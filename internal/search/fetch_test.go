package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/inquiry-intake/internal/common"
)

func TestHTTPFetcher_HTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><style>p{}</style></head><body><h1>Yacht  cover</h1><p>Hull &amp; machinery</p></body></html>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(FetchConfig{UserAgent: "test-agent"}, srv.Client(), nil)
	text, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Yacht cover Hull & machinery", text)
}

func TestHTTPFetcher_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("line one\n\n  line two\t"))
	}))
	defer srv.Close()

	text, err := NewHTTPFetcher(FetchConfig{}, srv.Client(), nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "line one line two", text)
}

func TestHTTPFetcher_DecodesDeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		_, _ = w.Write([]byte("<p>Caf\xe9 de Paris, 42 m\xb2</p>"))
	}))
	defer srv.Close()

	text, err := NewHTTPFetcher(FetchConfig{}, srv.Client(), nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Café de Paris, 42 m²", text)
}

func TestHTTPFetcher_Failures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewHTTPFetcher(FetchConfig{Timeout: 50 * time.Millisecond}, srv.Client(), nil)
	for _, path := range []string{"/missing", "/pdf", "/slow"} {
		_, err := f.Fetch(context.Background(), srv.URL+path)
		assert.ErrorIs(t, err, common.ErrFetchFailed, path)
	}

	_, err := f.Fetch(context.Background(), "://bad-url")
	assert.ErrorIs(t, err, common.ErrFetchFailed)
}

func TestHTTPFetcher_ByteLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer srv.Close()

	text, err := NewHTTPFetcher(FetchConfig{MaxBytes: 10}, srv.Client(), nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, text, 10)
}

type memStore struct {
	pages map[string]string
	puts  int
}

func (m *memStore) Get(_ context.Context, url string) (string, bool, error) {
	t, ok := m.pages[url]
	return t, ok, nil
}

func (m *memStore) Put(_ context.Context, url, text string) error {
	m.pages[url] = text
	m.puts++
	return nil
}

func TestCachingFetcher(t *testing.T) {
	next := &fakeFetcher{pages: map[string]string{"https://a.example/1": "fresh text"}}
	store := &memStore{pages: map[string]string{}}
	c := NewCachingFetcher(next, store, nil)

	for i := 0; i < 3; i++ {
		text, err := c.Fetch(context.Background(), "https://a.example/1")
		require.NoError(t, err)
		assert.Equal(t, "fresh text", text)
	}
	assert.Len(t, next.urls, 1)
	assert.Equal(t, 1, store.puts)
}
