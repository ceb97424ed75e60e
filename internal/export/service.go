package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
)

// Row is one processed inquiry to be written as a worksheet row.
type Row struct {
	Source      string // inquiry file name or other origin label
	RunID       string
	ProcessedAt time.Time
	Record      *entity.Record
}

// Service produces XLSX workbooks of records, one row per record.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

const sheet = "Inquiries"

// ExportRecordsXLSX returns an XLSX workbook (as bytes): metadata columns, then one column per field.
func (s *Service) ExportRecordsXLSX(ctx context.Context, rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("xlsx close error", "error", err)
		}
	}()

	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	fields := constants.Fields()
	headers := append([]string{"Source", "Run ID", "Processed At"}, fields...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.Record == nil {
			continue
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.Source)
		write(2, r.RunID)
		if !r.ProcessedAt.IsZero() {
			write(3, r.ProcessedAt.UTC().Format(time.RFC3339))
		}
		values := r.Record.Map()
		for i, field := range fields {
			write(4+i, truncate(values[field], 32767)) // excel cell limit
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // source
	_ = f.SetColWidth(sheet, "B", "B", 38) // run id
	_ = f.SetColWidth(sheet, "C", "C", 22) // processed at
	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(sheet, "D", last, 30)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteXLSX exports rows to path.
func (s *Service) WriteXLSX(ctx context.Context, path string, rows []Row) error {
	b, err := s.ExportRecordsXLSX(ctx, rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
