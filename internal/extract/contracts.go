package extract

import (
	"context"
	"time"
)

// TextExtractor is the document stage: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "IMAGE" | "TEXT" | "HTML"
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain" | "html"
	Language   string
	Duration   time.Duration
	Warnings   []string
}
