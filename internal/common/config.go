package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/inquiry-intake/constants"
)

// Config holds all application configuration
type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Search   SearchConfig   `toml:"search"`
	Fetch    FetchConfig    `toml:"fetch"`
	OCR      OCRConfig      `toml:"ocr"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
	Inbox    InboxConfig    `toml:"inbox"`
}

// LLMConfig holds completion-service configuration
type LLMConfig struct {
	BaseURL     string        `toml:"base_url"`
	Model       string        `toml:"model"`
	APIKey      string        `toml:"api_key"`
	Temperature float64       `toml:"temperature"`
	Timeout     time.Duration `toml:"timeout"`
}

// SearchConfig holds search-provider configuration
type SearchConfig struct {
	APIKey            string        `toml:"api_key"`
	EngineID          string        `toml:"engine_id"`
	Endpoint          string        `toml:"endpoint"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Burst             int           `toml:"burst"`
	Timeout           time.Duration `toml:"timeout"`
}

// FetchConfig holds result-page fetch configuration
type FetchConfig struct {
	Timeout   time.Duration `toml:"timeout"`
	MaxBytes  int64         `toml:"max_bytes"`
	UserAgent string        `toml:"user_agent"`
}

// OCRConfig holds document text extraction configuration
type OCRConfig struct {
	Pdftotext     string `toml:"pdftotext"`
	Pdftoppm      string `toml:"pdftoppm"`
	Tesseract     string `toml:"tesseract"`
	TesseractLang string `toml:"tesseract_lang"`
	TessdataDir   string `toml:"tessdata_dir"`
	DPI           int    `toml:"dpi"`
	MaxPages      int    `toml:"max_pages"`
}

// PipelineConfig holds gap-filling behaviour
type PipelineConfig struct {
	Workers      int           `toml:"workers"`
	ResultCount  int           `toml:"result_count"`
	CharLimit    int           `toml:"char_limit"`
	Qualifier    string        `toml:"qualifier"`
	FieldTimeout time.Duration `toml:"field_timeout"`
	RunTimeout   time.Duration `toml:"run_timeout"`
}

// CacheConfig holds the optional page cache; an empty Path disables it
type CacheConfig struct {
	Path string        `toml:"path"`
	TTL  time.Duration `toml:"ttl"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr    string `toml:"grpc_addr"`
	MetricsAddr string `toml:"metrics_addr"`
}

// InboxConfig holds inbox-watch configuration
type InboxConfig struct {
	Dir      string        `toml:"dir"`
	OutDir   string        `toml:"out_dir"`
	Debounce time.Duration `toml:"debounce"`
	Workers  int           `toml:"workers"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.0,
			Timeout:     45 * time.Second,
		},
		Search: SearchConfig{
			RequestsPerSecond: 5.0,
			Burst:             10,
			Timeout:           15 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:   15 * time.Second,
			MaxBytes:  2 << 20,
			UserAgent: "inquiry-intake/1.0",
		},
		OCR: OCRConfig{
			TesseractLang: "eng",
			DPI:           300,
		},
		Pipeline: PipelineConfig{
			Workers:      constants.DefaultFillWorkers,
			ResultCount:  constants.SearchResultCount,
			CharLimit:    constants.SearchCharLimit,
			Qualifier:    constants.SearchQualifier,
			FieldTimeout: 60 * time.Second,
			RunTimeout:   5 * time.Minute,
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Server: ServerConfig{
			GRPCAddr:    ":8080",
			MetricsAddr: ":9090",
		},
		Inbox: InboxConfig{
			Debounce: 500 * time.Millisecond,
			Workers:  2,
		},
	}
}

// LoadConfig builds configuration from defaults, an optional TOML file, then environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, NewAppError(CodeConfig, fmt.Sprintf("read config file %s", path), err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process environment.
// Missing files are skipped; variables already set are left untouched.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", getEnv("GROQ_API_KEY", getEnv("OPENAI_API_KEY", cfg.LLM.APIKey)))
	cfg.LLM.Temperature = getEnvAsFloat("LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", cfg.LLM.Timeout)

	cfg.Search.APIKey = getEnv("GOOGLE_API_KEY", cfg.Search.APIKey)
	cfg.Search.EngineID = getEnv("CSE_ID", cfg.Search.EngineID)
	cfg.Search.Endpoint = getEnv("SEARCH_ENDPOINT", cfg.Search.Endpoint)
	cfg.Search.RequestsPerSecond = getEnvAsFloat("SEARCH_RPS", cfg.Search.RequestsPerSecond)
	cfg.Search.Timeout = getEnvAsDuration("SEARCH_TIMEOUT", cfg.Search.Timeout)

	cfg.Fetch.Timeout = getEnvAsDuration("FETCH_TIMEOUT", cfg.Fetch.Timeout)
	cfg.Fetch.MaxBytes = int64(getEnvAsInt("FETCH_MAX_BYTES", int(cfg.Fetch.MaxBytes)))

	cfg.OCR.Pdftotext = getEnv("PDFTOTEXT", cfg.OCR.Pdftotext)
	cfg.OCR.Pdftoppm = getEnv("PDFTOPPM", cfg.OCR.Pdftoppm)
	cfg.OCR.Tesseract = getEnv("TESSERACT", cfg.OCR.Tesseract)
	cfg.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", cfg.OCR.TessdataDir)

	cfg.Pipeline.Workers = getEnvAsInt("FILL_WORKERS", cfg.Pipeline.Workers)
	cfg.Pipeline.FieldTimeout = getEnvAsDuration("FIELD_TIMEOUT", cfg.Pipeline.FieldTimeout)
	cfg.Pipeline.RunTimeout = getEnvAsDuration("RUN_TIMEOUT", cfg.Pipeline.RunTimeout)

	cfg.Cache.Path = getEnv("PAGE_CACHE_PATH", cfg.Cache.Path)
	cfg.Cache.TTL = getEnvAsDuration("PAGE_CACHE_TTL", cfg.Cache.TTL)

	cfg.Server.GRPCAddr = getEnv("GRPC_ADDR", cfg.Server.GRPCAddr)
	cfg.Server.MetricsAddr = getEnv("METRICS_ADDR", cfg.Server.MetricsAddr)

	cfg.Inbox.Dir = getEnv("INBOX_DIR", cfg.Inbox.Dir)
	cfg.Inbox.OutDir = getEnv("INBOX_OUT_DIR", cfg.Inbox.OutDir)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("LLM_API_KEY", c.LLM.APIKey, Required).
		Field("LLM_MODEL", c.LLM.Model, Required).
		Field("GOOGLE_API_KEY", c.Search.APIKey, Required).
		Field("CSE_ID", c.Search.EngineID, Required).
		Field("FILL_WORKERS", c.Pipeline.Workers, Positive).
		Field("result_count", c.Pipeline.ResultCount, Positive).
		Field("char_limit", c.Pipeline.CharLimit, Positive)
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
