package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SummaryService implements Summarizer on top of a Completer.
type SummaryService struct {
	completer Completer
	log       *slog.Logger
}

func NewSummaryService(completer Completer, logger *slog.Logger) (*SummaryService, error) {
	if completer == nil {
		return nil, errors.New("llm: nil completer")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryService{completer: completer, log: logger}, nil
}

// Summarize returns the trimmed 1-2 line summary of content.
func (s *SummaryService) Summarize(ctx context.Context, content string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	s.log.Debug("llm.summarize.start", "req_id", rid, "content_len", len(content))

	out, err := s.completer.Complete(ctx, BuildSummaryPrompt(content))
	if err != nil {
		s.log.Warn("llm.summarize.error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("summary completion: %w", err)
	}
	out = strings.TrimSpace(out)

	s.log.Debug("llm.summarize.ok",
		"req_id", rid, "summary_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
