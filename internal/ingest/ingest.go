package ingest

import (
	"context"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	processor "github.com/joseph-ayodele/inquiry-intake/internal/pipeline"
)

// Result is the per-file ingest outcome.
type Result struct {
	Source     string
	Attachment string
	OutputPath string
	RunID      string
	Status     constants.RunStatus
	Err        string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Processor runs one inquiry through the pipeline.
type Processor interface {
	Process(ctx context.Context, in entity.Inquiry) (*processor.Result, error)
}

// Ingestor is the behavior the CLI and watcher depend on.
type Ingestor interface {
	// IngestPath processes a single inquiry file.
	IngestPath(ctx context.Context, path string) (Result, error)
	// IngestDirectory processes all inquiry files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Result, DirStats, error)
}
