package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one inquiry file waiting to be processed.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// Handler processes a single job.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
