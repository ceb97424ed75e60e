package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/export"
	"github.com/joseph-ayodele/inquiry-intake/internal/ingest"
	"github.com/joseph-ayodele/inquiry-intake/internal/pipeline/fillgaps"
	processor "github.com/joseph-ayodele/inquiry-intake/internal/pipeline"
)

type fakeProcessor struct {
	got entity.Inquiry
	res *processor.Result
	err error
}

func (f *fakeProcessor) Process(_ context.Context, in entity.Inquiry) (*processor.Result, error) {
	f.got = in
	return f.res, f.err
}

type fakeIngestor struct {
	root       string
	skipHidden bool
}

func (f *fakeIngestor) IngestPath(context.Context, string) (ingest.Result, error) {
	return ingest.Result{}, nil
}

func (f *fakeIngestor) IngestDirectory(_ context.Context, root string, skipHidden bool) ([]ingest.Result, ingest.DirStats, error) {
	f.root, f.skipHidden = root, skipHidden
	return []ingest.Result{{Source: root + "/a.txt", RunID: "r1", Status: constants.RunStatusOK, OutputPath: root + "/a.json"}},
		ingest.DirStats{Scanned: 2, Matched: 1, Succeeded: 1}, nil
}

func startServer(t *testing.T, svc IntakeServiceServer) *IntakeClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterIntakeServiceServer(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewIntakeClient(conn)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestProcess_ReturnsRecord(t *testing.T) {
	rec := entity.NewRecord()
	rec.Set(constants.FieldYachtModel, "Lagoon 42")
	rec.Set(constants.FieldOwnerContact, "Owners are reached through the broker.")
	proc := &fakeProcessor{res: &processor.Result{
		RunID:   "run-1",
		Status:  constants.RunStatusOK,
		Record:  rec,
		Fill:    fillgaps.Report{Results: []fillgaps.FieldResult{{Field: constants.FieldOwnerContact, Outcome: constants.FieldEnriched}}},
		Elapsed: 1500 * time.Millisecond,
	}}
	client := startServer(t, NewIntakeService(proc, nil, export.NewService(nil), nil))

	pdf := []byte("%PDF-1.4")
	out, err := client.Process(context.Background(), mustStruct(t, map[string]any{
		"text":            "I want to insure my Lagoon 42.",
		"document_name":   "survey.pdf",
		"document_base64": base64.StdEncoding.EncodeToString(pdf),
	}))
	require.NoError(t, err)

	assert.Equal(t, "I want to insure my Lagoon 42.", proc.got.Text)
	require.NotNil(t, proc.got.Document)
	assert.Equal(t, "survey.pdf", proc.got.Document.Name)
	assert.Equal(t, pdf, proc.got.Document.Data)

	m := out.AsMap()
	assert.Equal(t, "run-1", m["run_id"])
	assert.Equal(t, "ok", m["status"])
	assert.Equal(t, float64(1500), m["elapsed_ms"])
	assert.Equal(t, []any{constants.FieldOwnerContact}, m["filled_fields"])
	record := m["record"].(map[string]any)
	assert.Len(t, record, len(constants.Fields()))
	assert.Equal(t, "Lagoon 42", record[constants.FieldYachtModel])
	assert.Equal(t, constants.Unknown, record[constants.FieldOther])
	assert.Len(t, m["fields"], len(constants.Fields()))
}

func TestProcess_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"no input", common.NewAppError(common.CodeNoInput, "enter content", common.ErrNoInput), codes.InvalidArgument},
		{"no json", common.NewAppError(common.CodeExtractionFailed, "failed", common.ErrNoJSONFound), codes.FailedPrecondition},
		{"malformed json", common.NewAppError(common.CodeExtractionFailed, "failed", common.ErrMalformedJSON), codes.FailedPrecondition},
		{"internal", common.NewAppError(common.CodeInternal, "boom", assert.AnError), codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proc := &fakeProcessor{res: &processor.Result{RunID: "r"}, err: tc.err}
			client := startServer(t, NewIntakeService(proc, nil, export.NewService(nil), nil))

			_, err := client.Process(context.Background(), mustStruct(t, map[string]any{"text": "x"}))
			require.Error(t, err)
			assert.Equal(t, tc.code, status.Code(err))
		})
	}
}

func TestProcess_BadDocument(t *testing.T) {
	proc := &fakeProcessor{}
	client := startServer(t, NewIntakeService(proc, nil, export.NewService(nil), nil))

	_, err := client.Process(context.Background(), mustStruct(t, map[string]any{
		"text":            "x",
		"document_base64": "!!not base64!!",
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Process(context.Background(), mustStruct(t, map[string]any{
		"text":            "x",
		"document_base64": base64.StdEncoding.EncodeToString([]byte("data")),
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestIngestDirectory(t *testing.T) {
	ing := &fakeIngestor{}
	client := startServer(t, NewIntakeService(&fakeProcessor{}, ing, export.NewService(nil), nil))

	out, err := client.IngestDirectory(context.Background(), mustStruct(t, map[string]any{"root_path": "/inbox"}))
	require.NoError(t, err)
	assert.Equal(t, "/inbox", ing.root)
	assert.True(t, ing.skipHidden)

	m := out.AsMap()
	assert.Equal(t, float64(1), m["succeeded"])
	results := m["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "/inbox/a.json", results[0].(map[string]any)["output_path"])

	_, err = client.IngestDirectory(context.Background(), mustStruct(t, map[string]any{"root_path": "/inbox", "skip_hidden": false}))
	require.NoError(t, err)
	assert.False(t, ing.skipHidden)

	_, err = client.IngestDirectory(context.Background(), mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestIngestDirectory_NotConfigured(t *testing.T) {
	client := startServer(t, NewIntakeService(&fakeProcessor{}, nil, export.NewService(nil), nil))
	_, err := client.IngestDirectory(context.Background(), mustStruct(t, map[string]any{"root_path": "/inbox"}))
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestExport(t *testing.T) {
	client := startServer(t, NewIntakeService(&fakeProcessor{}, nil, export.NewService(nil), nil))

	out, err := client.Export(context.Background(), mustStruct(t, map[string]any{
		"rows": []any{
			map[string]any{
				"source":       "a.eml",
				"run_id":       "run-1",
				"processed_at": "2026-10-01T12:00:00Z",
				"record":       map[string]any{constants.FieldYachtModel: "Lagoon 42"},
			},
		},
	}))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(out.AsMap()["xlsx_base64"].(string))
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Inquiries")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a.eml", rows[1][0])
	assert.Contains(t, rows[1], "Lagoon 42")

	_, err = client.Export(context.Background(), mustStruct(t, map[string]any{"rows": []any{}}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
