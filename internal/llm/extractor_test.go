package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
)

func TestNewExtractor_NilCompleter(t *testing.T) {
	_, err := NewExtractor(nil, nil)
	require.Error(t, err)
}

func TestExtractFields_Success(t *testing.T) {
	fc := &fakeCompleter{answer: "Here you go:\n" + `{
		"Yacht Model": "Azimut 55",
		"Yacht Length": "55 ft",
		"Owner's Contact Information": "unknown"
	}`}
	x, err := NewExtractor(fc, nil)
	require.NoError(t, err)

	rec, raw, err := x.ExtractFields(context.Background(), ExtractRequest{InquiryText: "I own a 55 ft Azimut 55."})
	require.NoError(t, err)
	require.NotNil(t, rec)

	v, _ := rec.Get(constants.FieldYachtModel)
	assert.Equal(t, "Azimut 55", v)
	v, _ = rec.Get(constants.FieldOwnerContact)
	assert.Equal(t, constants.Unknown, v)

	var m map[string]string
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Len(t, m, len(constants.Fields()))

	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "PDF/Document Content:\nN/A")
}

func TestExtractFields_KeySetEqualsSchema(t *testing.T) {
	answers := []string{
		`{}`,
		`{"Unexpected": "x", "Other": 3}`,
		`{"yacht model": ["a", "b"], "Yacht Length": null}`,
	}
	for _, a := range answers {
		x, err := NewExtractor(&fakeCompleter{answer: a}, nil)
		require.NoError(t, err)

		rec, _, err := x.ExtractFields(context.Background(), ExtractRequest{InquiryText: "x"})
		require.NoError(t, err, a)

		m := rec.Map()
		assert.Len(t, m, len(constants.Fields()), a)
		for _, f := range constants.Fields() {
			assert.NotEmpty(t, m[f], a)
		}
	}
}

func TestExtractFields_NoJSON(t *testing.T) {
	x, err := NewExtractor(&fakeCompleter{answer: "Sorry, I cannot help with that."}, nil)
	require.NoError(t, err)

	rec, _, err := x.ExtractFields(context.Background(), ExtractRequest{InquiryText: "x"})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, common.ErrNoJSONFound)
	assert.True(t, common.IsExtractionFailure(err))

	var xe *ExtractionError
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, "Sorry, I cannot help with that.", xe.Raw)
}

func TestExtractFields_Malformed(t *testing.T) {
	x, err := NewExtractor(&fakeCompleter{answer: `{"Yacht Model": "Azimut",}`}, nil)
	require.NoError(t, err)

	_, _, err = x.ExtractFields(context.Background(), ExtractRequest{InquiryText: "x"})
	assert.ErrorIs(t, err, common.ErrMalformedJSON)
	assert.NotErrorIs(t, err, common.ErrNoJSONFound)
}

func TestExtractFields_CompletionError(t *testing.T) {
	boom := errors.New("connection refused")
	x, err := NewExtractor(&fakeCompleter{err: boom}, nil)
	require.NoError(t, err)

	_, _, err = x.ExtractFields(context.Background(), ExtractRequest{InquiryText: "x"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, common.IsExtractionFailure(err))
}

func TestSummarize(t *testing.T) {
	fc := &fakeCompleter{answer: "\n  Typical cover includes hull, machinery and P&I.  \n"}
	s, err := NewSummaryService(fc, nil)
	require.NoError(t, err)

	out, err := s.Summarize(context.Background(), "some search text")
	require.NoError(t, err)
	assert.Equal(t, "Typical cover includes hull, machinery and P&I.", out)
	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "some search text")
}

func TestSummarize_Error(t *testing.T) {
	s, err := NewSummaryService(&fakeCompleter{err: errors.New("rate limited")}, nil)
	require.NoError(t, err)

	_, err = s.Summarize(context.Background(), "x")
	require.Error(t, err)
}

func TestValidateJSON(t *testing.T) {
	schema, err := CompileSchema(BuildRecordJSONSchema([]string{"A", "B"}))
	require.NoError(t, err)

	assert.NoError(t, ValidateJSON(schema, []byte(`{"A":"x","B":"unknown"}`)))
	assert.Error(t, ValidateJSON(schema, []byte(`{"A":"x"}`)))
	assert.Error(t, ValidateJSON(schema, []byte(`{"A":"x","B":"y","C":"z"}`)))
	assert.Error(t, ValidateJSON(schema, []byte(`{"A":"x","B":1}`)))
	assert.Error(t, ValidateJSON(schema, []byte(`{"A":"x","B":""}`)))
	assert.Error(t, ValidateJSON(schema, []byte(`not json`)))
}

func TestExtractFields_ChecksAgainstCompiledSchema(t *testing.T) {
	x, err := NewExtractor(&fakeCompleter{answer: `{"Yacht Model": "Azimut 55"}`}, nil)
	require.NoError(t, err)

	// a record over the configured fields can never carry "Hull Survey Date"
	stricter, err := CompileSchema(BuildRecordJSONSchema(append(constants.Fields(), "Hull Survey Date")))
	require.NoError(t, err)
	x.schema = stricter

	rec, raw, err := x.ExtractFields(context.Background(), ExtractRequest{InquiryText: "x"})
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.NotEmpty(t, raw)
}
