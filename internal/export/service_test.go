package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
)

func TestExportRecordsXLSX(t *testing.T) {
	rec := entity.NewRecord()
	rec.Set(constants.FieldYachtModel, "Azimut 55")
	rec.Set(constants.FieldOwnerName, "Jane Doe")

	rows := []Row{
		{Source: "inquiry-1.txt", RunID: "run-1", ProcessedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC), Record: rec},
		{Source: "skipped.txt"}, // no record
	}

	b, err := NewService(nil).ExportRecordsXLSX(context.Background(), rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, got, 2)

	header := got[0]
	assert.Equal(t, []string{"Source", "Run ID", "Processed At"}, header[:3])
	assert.Equal(t, constants.Fields(), header[3:])

	row := got[1]
	assert.Equal(t, "inquiry-1.txt", row[0])
	assert.Equal(t, "run-1", row[1])
	assert.Equal(t, "2026-10-01T12:00:00Z", row[2])
	assert.Equal(t, "Azimut 55", row[3])
	assert.Equal(t, "Jane Doe", row[3+6])
	assert.Equal(t, constants.Unknown, row[4])

	assert.Equal(t, []string{sheet}, f.GetSheetList())
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	err := NewService(nil).WriteXLSX(context.Background(), path, []Row{{Source: "a", Record: entity.NewRecord()}})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "ñ", truncate("ñandú", 1))
}
