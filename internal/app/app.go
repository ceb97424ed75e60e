package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/export"
	"github.com/joseph-ayodele/inquiry-intake/internal/extract"
	"github.com/joseph-ayodele/inquiry-intake/internal/ingest"
	"github.com/joseph-ayodele/inquiry-intake/internal/llm"
	"github.com/joseph-ayodele/inquiry-intake/internal/llm/openai"
	"github.com/joseph-ayodele/inquiry-intake/internal/ocr"
	processor "github.com/joseph-ayodele/inquiry-intake/internal/pipeline"
	"github.com/joseph-ayodele/inquiry-intake/internal/pipeline/fillgaps"
	parse "github.com/joseph-ayodele/inquiry-intake/internal/pipeline/parsefields"
	"github.com/joseph-ayodele/inquiry-intake/internal/pipeline/textextract"
	repo "github.com/joseph-ayodele/inquiry-intake/internal/repository"
	"github.com/joseph-ayodele/inquiry-intake/internal/search"
)

// App holds every long-lived component, built once from configuration.
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	Processor *processor.Processor
	Ingestor  *ingest.FSIngestor
	Exporter  *export.Service

	db *sql.DB
}

// NewLogger builds the text logger used by the binaries. Time is dropped
// unless withTime is set, matching plain console output.
func NewLogger(w io.Writer, level slog.Level, withTime bool) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if !withTime && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// New validates cfg and wires the pipeline.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger}

	// completion service
	completer := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, nil, logger)
	extractor, err := llm.NewExtractor(completer, logger)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	summarizer, err := llm.NewSummaryService(completer, logger)
	if err != nil {
		return nil, fmt.Errorf("build summarizer: %w", err)
	}

	// search
	provider, err := search.NewGoogleProvider(ctx, search.GoogleConfig{
		APIKey:   cfg.Search.APIKey,
		EngineID: cfg.Search.EngineID,
		Endpoint: cfg.Search.Endpoint,
		Timeout:  cfg.Search.Timeout,
		RateLimitConfig: search.RateLimitConfig{
			RequestsPerSecond: cfg.Search.RequestsPerSecond,
			Burst:             cfg.Search.Burst,
		},
	}, nil, logger)
	if err != nil {
		return nil, err
	}
	var fetcher search.Fetcher = search.NewHTTPFetcher(search.FetchConfig{
		Timeout:   cfg.Fetch.Timeout,
		MaxBytes:  cfg.Fetch.MaxBytes,
		UserAgent: cfg.Fetch.UserAgent,
	}, nil, logger)
	if cfg.Cache.Path != "" {
		store, err := a.openPageCache(ctx)
		if err != nil {
			return nil, err
		}
		fetcher = search.NewCachingFetcher(fetcher, store, logger)
	}
	searcher := search.NewAdapter(provider, fetcher, logger)

	// document text
	ocrExtractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
	docs := textextract.NewPipeline(extract.NewOCRAdapter(ocrExtractor, logger), logger)

	fill := fillgaps.NewPipeline(logger, fillgaps.Config{
		Workers:      cfg.Pipeline.Workers,
		ResultCount:  cfg.Pipeline.ResultCount,
		CharLimit:    cfg.Pipeline.CharLimit,
		Qualifier:    cfg.Pipeline.Qualifier,
		FieldTimeout: cfg.Pipeline.FieldTimeout,
	}, searcher, summarizer)

	a.Processor = processor.NewProcessor(logger, docs, parse.NewPipeline(logger, extractor), fill, cfg.Pipeline.RunTimeout)
	a.Ingestor = ingest.NewFSIngestor(a.Processor, cfg.Inbox.OutDir, logger)
	a.Exporter = export.NewService(logger)

	logger.Info("app.ready",
		"llm_base_url", cfg.LLM.BaseURL,
		"llm_model", completer.Model(),
		"fill_workers", cfg.Pipeline.Workers,
		"page_cache", cfg.Cache.Path != "",
	)
	return a, nil
}

func (a *App) openPageCache(ctx context.Context) (search.PageStore, error) {
	db, err := repo.Open(ctx, repo.Config{Path: a.Config.Cache.Path}, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("open page cache: %w", err)
	}
	if err := repo.HealthCheck(ctx, db, 5*time.Second, a.Logger); err != nil {
		repo.Close(db, a.Logger)
		return nil, fmt.Errorf("page cache health: %w", err)
	}
	a.db = db

	store, err := repo.NewPageCacheRepository(db, a.Config.Cache.TTL, a.Logger)
	if err != nil {
		return nil, err
	}
	if n, err := store.Prune(ctx); err != nil {
		a.Logger.Warn("page cache prune failed", "error", err)
	} else if n > 0 {
		a.Logger.Info("page cache pruned", "entries", n)
	}
	return store, nil
}

// Close releases the page cache database, if one was opened.
func (a *App) Close() {
	if a.db != nil {
		repo.Close(a.db, a.Logger)
		a.db = nil
	}
}
