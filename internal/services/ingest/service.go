package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/inquiry-intake/internal/async"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/ingest"
)

// Service connects the inbox watcher, the job queue and the ingestor.
type Service struct {
	ingestor ingest.Ingestor
	queue    async.Queue
	logger   *slog.Logger
}

// NewService creates a new ingest service. The queue may be set later with
// SetQueue when the queue's handler is this service's HandleJob.
func NewService(ing ingest.Ingestor, q async.Queue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ingestor: ing,
		queue:    q,
		logger:   logger,
	}
}

func (s *Service) SetQueue(q async.Queue) { s.queue = q }

// HandleJob processes one queued inquiry file. It is the queue's handler.
func (s *Service) HandleJob(ctx context.Context, job async.Job) error {
	r, err := s.ingestor.IngestPath(ctx, job.Path)
	if err != nil {
		return err
	}
	s.logger.Info("inbox file processed", "path", job.Path, "trace_id", job.TraceID, "run_id", r.RunID,
		"output", r.OutputPath, "queued_ms", time.Since(job.SubmittedAt).Milliseconds())
	return nil
}

// Submit enqueues path for processing.
func (s *Service) Submit(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return common.InvalidArgumentError("path is required")
	}
	if !ingest.IsInquiryFile(path) {
		s.logger.Debug("ignoring non-inquiry file", "path", path)
		return nil
	}
	job := async.Job{
		Path:        path,
		SubmittedAt: time.Now(),
		TraceID:     uuid.New().String(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("enqueue failed for file", "path", path, "err", err)
		return err
	}
	return nil
}

// Watch feeds watcher events into the queue until ctx is done or the
// watcher stops.
func (s *Service) Watch(ctx context.Context, cfg ingest.WatchConfig) error {
	events, errs, err := ingest.StartWatcher(ctx, cfg, s.logger)
	if err != nil {
		return err
	}
	s.logger.Info("watching inbox", "roots", cfg.Roots)
	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.Submit(ctx, p); err != nil && ctx.Err() == nil {
				s.logger.Warn("inbox submit failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn("inbox watcher error", "error", err)
		}
	}
}
