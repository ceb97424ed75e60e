package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/textnorm"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | IMAGE | TEXT | HTML
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain" | "html"
	Language   string
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return NewExtractorWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewExtractorWithRunner is NewExtractor with a custom command runner (tests, sandboxes).
func NewExtractorWithRunner(cfg Config, r Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: r, logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	case constants.TEXT:
		res, err = readPlain(path)
	case constants.HTML:
		res, err = readHTML(path)
	default:
		e.logger.Error("unsupported document extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	return res, err
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	text, pages, warns, err := e.pdfToText(ctx, path)
	if err != nil {
		return ExtractionResult{SourceType: constants.PDF, Warnings: warns}, fmt.Errorf("pdftotext: %w", err)
	}
	if strings.TrimSpace(text) != "" {
		return ExtractionResult{
			Text:       Normalize(text),
			Pages:      pages,
			SourceType: constants.PDF,
			Method:     "pdf-text",
			Warnings:   warns,
		}, nil
	}

	// no text layer: scanned document
	e.logger.Info("pdf has no text layer; falling back to ocr", "path", path, "pages", pages)
	text, pages, ocrWarns, err := e.pdfToOCR(ctx, path)
	warns = append(warns, ocrWarns...)
	if err != nil {
		return ExtractionResult{SourceType: constants.PDF, Warnings: warns}, fmt.Errorf("pdf ocr: %w", err)
	}
	return ExtractionResult{
		Text:       Normalize(text),
		Pages:      pages,
		SourceType: constants.PDF,
		Method:     "pdf-ocr",
		Language:   e.cfg.TesseractLang,
		Warnings:   warns,
	}, nil
}

func readPlain(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.TEXT}, err
	}
	return ExtractionResult{
		Text:       Normalize(string(b)),
		Pages:      1,
		SourceType: constants.TEXT,
		Method:     "plain",
	}, nil
}

func readHTML(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.HTML}, err
	}
	return ExtractionResult{
		Text:       textnorm.HTMLToText(string(b)),
		Pages:      1,
		SourceType: constants.HTML,
		Method:     "html",
	}, nil
}
