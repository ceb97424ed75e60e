package llm

import (
	"context"

	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
)

// Completer is a single-shot text completion endpoint: prompt in, first choice's text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type ExtractRequest struct {
	InquiryText string

	// DocumentText is the attachment's text; empty when nothing was attached.
	DocumentText string
	DocumentName string
}

// FieldExtractor is the interface our pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (*entity.Record, []byte /*rawJSON*/, error)
}

// Summarizer condenses retrieved search text into a short field value.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}
