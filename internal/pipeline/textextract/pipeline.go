package textextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/extract"
)

type Pipeline struct {
	TextExtractor extract.TextExtractor
	Log           *slog.Logger
}

func NewPipeline(tx extract.TextExtractor, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{TextExtractor: tx, Log: log}
}

// Outcome is the document stage result. Text is always usable downstream:
// when Err is set (always wrapping common.ErrDocumentUnreadable) Text is constants.Unknown.
type Outcome struct {
	Text   string
	Result extract.TextExtractionResult
	Err    error
}

// Degraded reports whether the document could not be read.
func (o Outcome) Degraded() bool { return o.Err != nil }

// Run extracts the visible text of doc. Failures never escape as errors; they
// degrade the whole document to the sentinel.
func (p *Pipeline) Run(ctx context.Context, doc *entity.Document) Outcome {
	log := common.LoggerFrom(ctx, p.Log)
	if doc == nil {
		return p.degrade(log, "", fmt.Errorf("%w: no document", common.ErrDocumentUnreadable), extract.TextExtractionResult{})
	}

	path, cleanup, err := doc.Materialize()
	if err != nil {
		return p.degrade(log, doc.DisplayName(), fmt.Errorf("%w: %v", common.ErrDocumentUnreadable, err), extract.TextExtractionResult{})
	}
	defer cleanup()

	log.Info("document.extract.start", "document", doc.DisplayName())
	res, err := p.TextExtractor.Extract(ctx, path)
	if err != nil {
		if !errors.Is(err, common.ErrDocumentUnreadable) {
			err = fmt.Errorf("%w: %v", common.ErrDocumentUnreadable, err)
		}
		return p.degrade(log, doc.DisplayName(), err, res)
	}

	log.Info("document.extract.ok",
		"document", doc.DisplayName(),
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return Outcome{Text: res.Text, Result: res}
}

func (p *Pipeline) degrade(log *slog.Logger, name string, err error, res extract.TextExtractionResult) Outcome {
	log.Warn("document.extract.degraded", "document", name, "error", err)
	return Outcome{Text: constants.Unknown, Result: res, Err: err}
}
