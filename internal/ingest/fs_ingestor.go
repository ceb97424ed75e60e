package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/metrics"
)

// FSIngestor reads inquiries from the local filesystem and writes one
// <name>.json record per processed inquiry.
type FSIngestor struct {
	Proc   Processor
	OutDir string // empty -> next to the source file
	Logger *slog.Logger
}

func NewFSIngestor(proc Processor, outDir string, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Proc: proc, OutDir: outDir, Logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (Result, error) {
	out := Result{Source: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		i.Logger.Error("ingest.abs_path", "path", path, "error", err)
		return i.fail(out, err)
	}
	out.Source = abs

	if !IsInquiryFile(abs) {
		err := fmt.Errorf("%w: unsupported inquiry extension %q", common.ErrInvalidInput, filepath.Ext(abs))
		i.Logger.Warn("ingest.unsupported", "path", abs)
		metrics.RecordInboxFile("skipped")
		out.Err = err.Error()
		return out, err
	}

	in, err := LoadInquiry(abs)
	if err != nil {
		i.Logger.Error("ingest.load_failed", "path", abs, "error", err)
		return i.fail(out, err)
	}
	if in.Document == nil {
		if att := FindAttachment(abs); att != "" {
			in.Document = &entity.Document{Path: att}
		}
	}
	if in.Document != nil {
		out.Attachment = in.Document.DisplayName()
	}

	start := time.Now()
	res, err := i.Proc.Process(ctx, in)
	if res != nil {
		out.RunID = res.RunID
		out.Status = res.Status
	}
	if err != nil {
		i.Logger.Error("ingest.process_failed", "path", abs, "run_id", out.RunID, "status", out.Status, "error", err)
		return i.fail(out, err)
	}

	dest := OutputPath(abs, i.OutDir)
	if err := writeRecord(dest, res.Record); err != nil {
		i.Logger.Error("ingest.write_failed", "path", abs, "dest", dest, "error", err)
		return i.fail(out, err)
	}
	out.OutputPath = dest

	metrics.RecordInboxFile("processed")
	i.Logger.Info("ingest.ok",
		"path", abs,
		"attachment", out.Attachment,
		"run_id", out.RunID,
		"dest", dest,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (i *FSIngestor) fail(out Result, err error) (Result, error) {
	metrics.RecordInboxFile("failed")
	out.Err = err.Error()
	if out.Status == "" {
		out.Status = constants.RunStatusFailed
	}
	return out, err
}

func writeRecord(dest string, rec *entity.Record) error {
	if rec == nil {
		return fmt.Errorf("no record to write")
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dest)
}
