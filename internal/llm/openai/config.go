package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config for the chat completions client. Any OpenAI-compatible endpoint works
// (OpenAI, Groq, a local gateway) through BaseURL.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float64       // 0..2
	Timeout     time.Duration // per completion call
}

type Client struct {
	cfg Config
	api oai.Client
	log *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		// single best-effort attempt per call
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	return &Client{
		cfg: cfg,
		api: oai.NewClient(opts...),
		log: logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }
