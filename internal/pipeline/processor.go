package processor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/llm"
	"github.com/joseph-ayodele/inquiry-intake/internal/metrics"
	"github.com/joseph-ayodele/inquiry-intake/internal/pipeline/fillgaps"
	parse "github.com/joseph-ayodele/inquiry-intake/internal/pipeline/parsefields"
	"github.com/joseph-ayodele/inquiry-intake/internal/pipeline/textextract"
)

// Result is everything one run produced. Record is nil unless Status is ok.
type Result struct {
	RunID    string
	Status   constants.RunStatus
	Record   *entity.Record
	RawJSON  []byte // extraction output after reconciliation
	Document *textextract.Outcome
	Fill     fillgaps.Report
	Elapsed  time.Duration
}

// Processor coordinates document text -> field extraction -> gap filling.
type Processor struct {
	Logger     *slog.Logger
	Docs       *textextract.Pipeline
	Parse      *parse.Pipeline
	Fill       *fillgaps.Pipeline
	RunTimeout time.Duration
}

func NewProcessor(logger *slog.Logger, docs *textextract.Pipeline, parse *parse.Pipeline, fill *fillgaps.Pipeline, runTimeout time.Duration) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Docs: docs, Parse: parse, Fill: fill, RunTimeout: runTimeout}
}

// Process runs the whole pipeline for one inquiry.
//
// Blank inquiry text returns common.ErrNoInput before any stage runs. An
// unreadable document degrades to sentinel text. An extraction failure ends the
// run before gap filling and is returned as a CodeExtractionFailed AppError.
func (p *Processor) Process(ctx context.Context, in entity.Inquiry) (*Result, error) {
	res := &Result{RunID: uuid.New().String()}
	ctx = common.WithRunID(ctx, res.RunID)
	log := common.LoggerFrom(ctx, p.Logger)
	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		metrics.RecordRun(string(res.Status))
	}()

	if strings.TrimSpace(in.Text) == "" {
		res.Status = constants.RunStatusNoInput
		log.Warn("processor.no_input")
		return res, common.NewAppError(common.CodeNoInput, "please enter the inquiry content before submitting", common.ErrNoInput)
	}

	if p.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.RunTimeout)
		defer cancel()
	}

	log.Info("processor.start", "text_len", len(in.Text), "has_document", in.Document != nil)

	// 1) document stage, only when something is attached
	req := llm.ExtractRequest{InquiryText: in.Text}
	if in.Document != nil {
		stageStart := time.Now()
		out := p.Docs.Run(ctx, in.Document)
		metrics.ObserveStage(metrics.StageDocument, time.Since(stageStart).Seconds())
		if out.Degraded() {
			metrics.DocumentsTotal.WithLabelValues("degraded").Inc()
		} else {
			metrics.DocumentsTotal.WithLabelValues("ok").Inc()
		}
		res.Document = &out
		req.DocumentText = out.Text
		req.DocumentName = in.Document.DisplayName()
	}

	// 2) extraction stage
	stageStart := time.Now()
	rec, raw, err := p.Parse.Run(ctx, req)
	metrics.ObserveStage(metrics.StageExtraction, time.Since(stageStart).Seconds())
	res.RawJSON = raw
	if err != nil {
		if common.IsExtractionFailure(err) {
			res.Status = constants.RunStatusExtractionFailed
			log.Error("processor.extraction_failed", "error", err)
			return res, common.NewAppError(common.CodeExtractionFailed, "failed to process the inquiry content", err)
		}
		res.Status = constants.RunStatusFailed
		log.Error("processor.failed", "stage", metrics.StageExtraction, "error", err)
		return res, wrapInternal(err)
	}

	// 3) completion stage
	stageStart = time.Now()
	res.Fill = p.Fill.Run(ctx, rec)
	metrics.ObserveStage(metrics.StageCompletion, time.Since(stageStart).Seconds())

	res.Record = rec
	res.Status = constants.RunStatusOK
	log.Info("processor.ok",
		"unknown_after_extract", len(res.Fill.Attempted()),
		"filled", len(res.Fill.Filled()),
		"unknown_final", len(rec.UnknownFields()),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func wrapInternal(err error) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return common.NewAppError(common.CodeInternal, "an error occurred while processing", err)
}
