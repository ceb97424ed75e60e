package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ExtractionError is a structured extraction that produced no record.
// Kind is common.ErrNoJSONFound or common.ErrMalformedJSON.
type ExtractionError struct {
	Kind  error
	Raw   string
	Cause error
}

func (e *ExtractionError) Error() string {
	switch {
	case e.Cause == nil:
		return fmt.Sprintf("extraction failed: %v", e.Kind)
	case errors.Is(e.Cause, e.Kind):
		return fmt.Sprintf("extraction failed: %v", e.Cause)
	default:
		return fmt.Sprintf("extraction failed: %v: %v", e.Kind, e.Cause)
	}
}

func (e *ExtractionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// Extractor implements FieldExtractor on top of a Completer.
type Extractor struct {
	completer Completer
	fields    []string
	schema    *jsonschema.Schema
	log       *slog.Logger
}

func NewExtractor(completer Completer, logger *slog.Logger) (*Extractor, error) {
	if completer == nil {
		return nil, errors.New("llm: nil completer")
	}
	if logger == nil {
		logger = slog.Default()
	}
	fields := constants.Fields()
	schema, err := CompileSchema(BuildRecordJSONSchema(fields))
	if err != nil {
		return nil, err
	}
	return &Extractor{
		completer: completer,
		fields:    fields,
		schema:    schema,
		log:       logger,
	}, nil
}

// ExtractFields runs one extraction completion and reconciles the answer onto the schema.
// The returned raw JSON is the reconciled record.
func (x *Extractor) ExtractFields(ctx context.Context, req ExtractRequest) (*entity.Record, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	x.log.Info("llm.extract.start",
		"req_id", rid,
		"text_len", len(req.InquiryText),
		"doc_len", len(req.DocumentText),
		"doc_name", req.DocumentName,
	)

	prompt := BuildExtractionPrompt(req, x.fields)
	content, err := x.completer.Complete(ctx, prompt)
	if err != nil {
		x.log.Error("llm.extract.completion_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, fmt.Errorf("extraction completion: %w", err)
	}

	span, err := LocateJSONObject(content)
	if err != nil {
		x.log.Error("llm.extract.no_json",
			"req_id", rid, "content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, []byte(content), &ExtractionError{Kind: err, Raw: content}
	}

	obj, err := DecodeObject(span)
	if err != nil {
		x.log.Error("llm.extract.malformed_json",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, []byte(span), &ExtractionError{Kind: common.ErrMalformedJSON, Raw: span, Cause: err}
	}

	// Validate strictly first; reconcile either way.
	if vErr := validateValue(x.schema, toAny(obj)); vErr != nil {
		x.log.Warn("llm.extract.schema_mismatch",
			"req_id", rid, "error", vErr,
		)
	}

	rec := Reconcile(obj, x.fields)
	if rec.Changed() {
		x.log.Warn("llm.extract.lenient_reconcile_applied",
			"req_id", rid,
			"dropped", rec.Dropped,
			"missing", rec.Missing,
			"renamed", rec.Renamed,
			"coerced", rec.Coerced,
		)
	}

	record := entity.RecordFromMap(rec.Values)
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal record: %w", err)
	}
	if err := ValidateJSON(x.schema, raw); err != nil {
		x.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("reconciled record: %w", err)
	}

	x.log.Info("llm.extract.ok",
		"req_id", rid,
		"unknown_fields", len(record.UnknownFields()),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return record, raw, nil
}

// toAny converts json.Number values back to float64 for the validator.
func toAny(m map[string]any) any {
	b, err := json.Marshal(m)
	if err != nil {
		return m
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return m
	}
	return v
}
