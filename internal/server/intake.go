package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/export"
	"github.com/joseph-ayodele/inquiry-intake/internal/ingest"
	processor "github.com/joseph-ayodele/inquiry-intake/internal/pipeline"
)

// Processor runs one inquiry through the pipeline.
type Processor interface {
	Process(ctx context.Context, in entity.Inquiry) (*processor.Result, error)
}

type IntakeService struct {
	proc     Processor
	ingestor ingest.Ingestor
	exporter *export.Service
	logger   *slog.Logger
}

func NewIntakeService(proc Processor, ing ingest.Ingestor, exp *export.Service, logger *slog.Logger) *IntakeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntakeService{proc: proc, ingestor: ing, exporter: exp, logger: logger}
}

// Process implements IntakeServiceServer.
func (s *IntakeService) Process(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	reqID := uuid.New().String()
	log := s.logger.With("req_id", reqID)

	in, err := inquiryFromStruct(req)
	if err != nil {
		log.Warn("intake.process.bad_request", "error", err)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	start := time.Now()
	log.Info("intake.process.start", "text_len", len(in.Text), "document", in.Document.DisplayName())
	res, err := s.proc.Process(ctx, in)
	if err != nil {
		runID := ""
		if res != nil {
			runID = res.RunID
		}
		log.Error("intake.process.failed", "run_id", runID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.ToStatus(err)
	}
	log.Info("intake.process.ok", "run_id", res.RunID, "elapsed_ms", time.Since(start).Milliseconds())

	out, err := processResultToStruct(res)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

// IngestDirectory implements IntakeServiceServer.
func (s *IntakeService) IngestDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.ingestor == nil {
		return nil, status.Error(codes.Unimplemented, "directory ingest is not configured")
	}
	root := strings.TrimSpace(getString(req, "root_path"))
	if root == "" {
		s.logger.Error("ingest directory request missing root_path")
		return nil, common.InvalidArgumentError("root_path is required")
	}
	skipHidden := getBool(req, "skip_hidden", true)

	s.logger.Info("starting directory ingest", "root", root, "skip_hidden", skipHidden)
	results, stats, err := s.ingestor.IngestDirectory(ctx, root, skipHidden)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "ingest directory: %v", err)
	}

	out, err := dirResultToStruct(results, stats)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

// Export implements IntakeServiceServer.
func (s *IntakeService) Export(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rows, err := rowsFromStruct(req)
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	xlsx, err := s.exporter.ExportRecordsXLSX(ctx, rows)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "rows", len(rows), "error", err)
		return nil, common.InternalError(err.Error())
	}
	out, err := structpb.NewStruct(map[string]any{
		"rows":        float64(len(rows)),
		"xlsx_base64": base64.StdEncoding.EncodeToString(xlsx),
	})
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}
