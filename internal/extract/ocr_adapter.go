package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/ocr"
)

// OCRAdapter exposes ocr.Extractor as a TextExtractor.
// Every failure it returns wraps common.ErrDocumentUnreadable.
type OCRAdapter struct {
	extractor *ocr.Extractor
	logger    *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, l *slog.Logger) *OCRAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &OCRAdapter{
		extractor: e,
		logger:    l,
	}
}

func (a *OCRAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.extractor.Extract(ctx, path)
	if err != nil {
		a.logger.Warn("document extraction failed", "path", path, "error", err, "warnings", r.Warnings)
		return TextExtractionResult{SourceType: r.SourceType, Warnings: r.Warnings, Duration: r.Duration},
			fmt.Errorf("%w: %s: %v", common.ErrDocumentUnreadable, path, err)
	}
	return TextExtractionResult{
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
	}, nil
}
