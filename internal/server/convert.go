package server

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/export"
	"github.com/joseph-ayodele/inquiry-intake/internal/ingest"
	processor "github.com/joseph-ayodele/inquiry-intake/internal/pipeline"
)

func getString(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// getBool returns def when key is absent.
func getBool(s *structpb.Struct, key string, def bool) bool {
	if s == nil {
		return def
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return def
	}
	if _, isBool := v.GetKind().(*structpb.Value_BoolValue); !isBool {
		return def
	}
	return v.GetBoolValue()
}

// inquiryFromStruct reads {text, document_name, document_base64}.
func inquiryFromStruct(req *structpb.Struct) (entity.Inquiry, error) {
	in := entity.Inquiry{Text: getString(req, "text")}
	data := strings.TrimSpace(getString(req, "document_base64"))
	if data == "" {
		return in, nil
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return in, fmt.Errorf("document_base64 is not valid base64: %w", err)
	}
	name := strings.TrimSpace(getString(req, "document_name"))
	if name == "" {
		return in, fmt.Errorf("document_name is required with document_base64")
	}
	in.Document = &entity.Document{Name: name, Data: raw}
	return in, nil
}

func recordToStruct(rec *entity.Record) map[string]any {
	out := make(map[string]any, len(constants.Fields()))
	for f, v := range rec.Map() {
		out[f] = v
	}
	return out
}

func stringsToAny(ss []string) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}

func processResultToStruct(res *processor.Result) (*structpb.Struct, error) {
	m := map[string]any{
		"run_id":          res.RunID,
		"status":          string(res.Status),
		"fields":          stringsToAny(constants.Fields()),
		"filled_fields":   stringsToAny(res.Fill.Filled()),
		"degraded_fields": stringsToAny(res.Fill.Degraded()),
		"elapsed_ms":      float64(res.Elapsed.Milliseconds()),
	}
	if res.Record != nil {
		m["record"] = recordToStruct(res.Record)
	}
	if res.Document != nil {
		doc := map[string]any{
			"method":   res.Document.Result.Method,
			"pages":    float64(res.Document.Result.Pages),
			"degraded": res.Document.Degraded(),
		}
		if res.Document.Err != nil {
			doc["error"] = res.Document.Err.Error()
		}
		m["document"] = doc
	}
	return structpb.NewStruct(m)
}

func dirResultToStruct(results []ingest.Result, stats ingest.DirStats) (*structpb.Struct, error) {
	items := make([]any, 0, len(results))
	for _, r := range results {
		items = append(items, map[string]any{
			"source":      r.Source,
			"attachment":  r.Attachment,
			"output_path": r.OutputPath,
			"run_id":      r.RunID,
			"status":      string(r.Status),
			"error":       r.Err,
		})
	}
	return structpb.NewStruct(map[string]any{
		"scanned":   float64(stats.Scanned),
		"matched":   float64(stats.Matched),
		"succeeded": float64(stats.Succeeded),
		"failed":    float64(stats.Failed),
		"results":   items,
	})
}

// rowsFromStruct reads {rows: [{source, run_id, processed_at, record: {...}}]}.
func rowsFromStruct(req *structpb.Struct) ([]export.Row, error) {
	list := req.GetFields()["rows"].GetListValue()
	if list == nil || len(list.GetValues()) == 0 {
		return nil, fmt.Errorf("rows is required")
	}
	rows := make([]export.Row, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		item := v.GetStructValue()
		if item == nil {
			return nil, fmt.Errorf("rows[%d] must be an object", i)
		}
		recStruct := item.GetFields()["record"].GetStructValue()
		if recStruct == nil {
			return nil, fmt.Errorf("rows[%d].record is required", i)
		}
		values := make(map[string]string, len(recStruct.GetFields()))
		for k, fv := range recStruct.GetFields() {
			values[k] = fv.GetStringValue()
		}
		row := export.Row{
			Source: getString(item, "source"),
			RunID:  getString(item, "run_id"),
			Record: entity.RecordFromMap(values),
		}
		if ts := getString(item, "processed_at"); ts != "" {
			t, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return nil, fmt.Errorf("rows[%d].processed_at must be RFC3339", i)
			}
			row.ProcessedAt = t
		}
		rows = append(rows, row)
	}
	return rows, nil
}
