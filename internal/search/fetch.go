package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/textnorm"
)

// FetchConfig bounds a single page fetch.
type FetchConfig struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

// HTTPFetcher implements Fetcher over plain HTTP GET.
type HTTPFetcher struct {
	cfg    FetchConfig
	client *http.Client
	log    *slog.Logger
}

func NewHTTPFetcher(cfg FetchConfig, client *http.Client, logger *slog.Logger) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 2 << 20 // 2MB
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "inquiry-intake/1.0"
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPFetcher{cfg: cfg, client: client, log: logger}
}

// Fetch returns the normalized visible text of url. Every error wraps common.ErrFetchFailed.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrFetchFailed, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			f.log.Warn("page response body close error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s: status %d", common.ErrFetchFailed, url, resp.StatusCode)
	}

	kind, charset, ok := textKind(resp.Header.Get("Content-Type"))
	if !ok {
		return "", fmt.Errorf("%w: %s: unsupported content type %q", common.ErrFetchFailed, url, resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrFetchFailed, url, err)
	}

	decoded := textnorm.DecodeCharset(body, charset)
	var text string
	if kind == "html" {
		text = textnorm.HTMLToText(decoded)
	} else {
		text = textnorm.CollapseWhitespace(decoded)
	}

	f.log.Debug("search.fetch.ok",
		"url", url, "bytes", len(body), "text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// textKind classifies a Content-Type and returns its charset parameter; a
// missing header is treated as HTML.
func textKind(contentType string) (kind, charset string, ok bool) {
	if strings.TrimSpace(contentType) == "" {
		return "html", "", true
	}
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", "", false
	}
	switch mt {
	case "text/html", "application/xhtml+xml":
		return "html", params["charset"], true
	case "text/plain":
		return "plain", params["charset"], true
	}
	return "", "", false
}
