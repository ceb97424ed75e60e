package parsefields

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/llm"
)

type Pipeline struct {
	Logger    *slog.Logger
	Extractor llm.FieldExtractor
}

func NewPipeline(logger *slog.Logger, fe llm.FieldExtractor) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Logger: logger, Extractor: fe}
}

// Run executes the extraction stage: inquiry text (+ document text) -> schema-complete record.
// Extraction failures keep their kind (common.ErrNoJSONFound / common.ErrMalformedJSON).
func (p *Pipeline) Run(ctx context.Context, req llm.ExtractRequest) (*entity.Record, []byte, error) {
	log := common.LoggerFrom(ctx, p.Logger)
	start := time.Now()

	rec, raw, err := p.Extractor.ExtractFields(ctx, req)
	if err != nil {
		log.Error("parse.extract.failed",
			"error", err,
			"extraction_failure", common.IsExtractionFailure(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("extract fields: %w", err)
	}

	unknown := rec.UnknownFields()
	log.Info("parse.extract.ok",
		"unknown_fields", len(unknown),
		"unknown", unknown,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, raw, nil
}
