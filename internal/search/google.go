package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// GoogleConfig configures the Programmable Search provider.
type GoogleConfig struct {
	APIKey   string
	EngineID string // "cx"
	Endpoint string // override for tests and proxies; empty uses the public endpoint
	Timeout  time.Duration
	RateLimitConfig
}

// GoogleProvider implements Provider on the Custom Search JSON API.
type GoogleProvider struct {
	svc      *customsearch.Service
	engineID string
	timeout  time.Duration
	limiter  *RateLimiter
	log      *slog.Logger
}

// NewGoogleProvider builds the provider. httpClient may be nil.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig, httpClient *http.Client, logger *slog.Logger) (*GoogleProvider, error) {
	if strings.TrimSpace(cfg.EngineID) == "" {
		return nil, errors.New("search: engine id is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	svc, err := customsearch.NewService(ctx, clientOptions(cfg, httpClient)...)
	if err != nil {
		return nil, fmt.Errorf("create customsearch service: %w", err)
	}
	return &GoogleProvider{
		svc:      svc,
		engineID: cfg.EngineID,
		timeout:  cfg.Timeout,
		limiter:  NewRateLimiter(cfg.RateLimitConfig),
		log:      logger,
	}, nil
}

func clientOptions(cfg GoogleConfig, httpClient *http.Client) []option.ClientOption {
	var opts []option.ClientOption
	if httpClient != nil {
		// option.WithHTTPClient bypasses key handling, so the key rides on the transport.
		opts = append(opts, option.WithHTTPClient(&http.Client{
			Transport: &apiKeyTransport{key: cfg.APIKey, base: httpClient.Transport},
			Timeout:   httpClient.Timeout,
		}))
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		ep := cfg.Endpoint
		if !strings.HasSuffix(ep, "/") {
			ep += "/"
		}
		opts = append(opts, option.WithEndpoint(ep))
	}
	return opts
}

// Search issues one cse.list request for query and returns up to n results.
func (g *GoogleProvider) Search(ctx context.Context, query string, n int) ([]Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	// the API serves at most 10 per page
	n = min(max(n, 1), 10)
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.log.Debug("search.google.start", "req_id", rid, "query", query, "num", n)
	resp, err := g.svc.Cse.List().Cx(g.engineID).Q(query).Num(int64(n)).Context(ctx).Do()
	if err != nil {
		if IsRateLimited(err) {
			g.limiter.RecordRateLimitError(retryAfter(err))
		}
		g.log.Warn("search.google.error",
			"req_id", rid, "query", query, "error", err,
			"rate_limited", IsRateLimited(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("customsearch: %w", err)
	}

	out := make([]Result, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it == nil {
			continue
		}
		out = append(out, Result{Title: it.Title, Link: it.Link, Snippet: it.Snippet})
		if len(out) == n {
			break
		}
	}

	g.log.Info("search.google.ok",
		"req_id", rid, "query", query, "items", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// apiKeyTransport adds the key query parameter to every request.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.key == "" {
		return base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	q := r.URL.Query()
	q.Set("key", t.key)
	r.URL.RawQuery = q.Encode()
	return base.RoundTrip(r)
}
