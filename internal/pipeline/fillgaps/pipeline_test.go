package fillgaps

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/search"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	// fail queries containing any of these substrings
	failFor []string
	// per-call delay
	delay time.Duration
}

func (f *fakeSearcher) Lookup(ctx context.Context, query string, n, charLimit int) (search.Bundle, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return search.Bundle{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	for _, s := range f.failFor {
		if strings.Contains(query, s) {
			return search.Bundle{}, common.ErrSearchUnavailable
		}
	}
	return search.Bundle{Query: query, Text: "text for " + query}, nil
}

type fakeSummarizer struct {
	mu     sync.Mutex
	inputs []string
	err    error
	// fixed answer; empty means "summary of <input>"
	answer string
}

func (f *fakeSummarizer) Summarize(_ context.Context, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, content)
	if f.err != nil {
		return "", f.err
	}
	if f.answer != "" {
		return f.answer, nil
	}
	return "summary of " + content, nil
}

func fullRecord() *entity.Record {
	rec := entity.NewRecord()
	for _, f := range constants.Fields() {
		rec.Set(f, "known "+f)
	}
	return rec
}

func TestRun_NoUnknownFieldsIsNoop(t *testing.T) {
	fs, sum := &fakeSearcher{}, &fakeSummarizer{}
	p := NewPipeline(nil, Config{}, fs, sum)

	rec := fullRecord()
	before := rec.Map()

	report := p.Run(context.Background(), rec)
	assert.Empty(t, report.Attempted())
	assert.Equal(t, before, rec.Map())
	assert.Empty(t, fs.queries)
	assert.Empty(t, sum.inputs)
}

func TestRun_SingleUnknownField(t *testing.T) {
	fs, sum := &fakeSearcher{}, &fakeSummarizer{}
	p := NewPipeline(nil, Config{}, fs, sum)

	rec := fullRecord()
	rec.Set(constants.FieldOwnerContact, constants.Unknown)

	report := p.Run(context.Background(), rec)

	assert.Equal(t, []string{"Owner's Contact Information yacht insurance details"}, fs.queries)
	require.Len(t, sum.inputs, 1)
	assert.Equal(t, "text for Owner's Contact Information yacht insurance details", sum.inputs[0])
	v, _ := rec.Get(constants.FieldOwnerContact)
	assert.Equal(t, "summary of text for Owner's Contact Information yacht insurance details", v)
	assert.Equal(t, []string{constants.FieldOwnerContact}, report.Filled())
}

func TestRun_IsolationBetweenFields(t *testing.T) {
	fs := &fakeSearcher{failFor: []string{constants.FieldYachtModel}}
	sum := &fakeSummarizer{}
	p := NewPipeline(nil, Config{Workers: 3}, fs, sum)

	rec := fullRecord()
	rec.Set(constants.FieldYachtModel, constants.Unknown)
	rec.Set(constants.FieldOwnerName, constants.Unknown)

	report := p.Run(context.Background(), rec)

	a, _ := rec.Get(constants.FieldYachtModel)
	b, _ := rec.Get(constants.FieldOwnerName)
	assert.Equal(t, constants.Unknown, a)
	assert.NotEqual(t, constants.Unknown, b)
	assert.Equal(t, []string{constants.FieldYachtModel}, report.Degraded())
	assert.Equal(t, []string{constants.FieldOwnerName}, report.Filled())
	// unavailable search skips the summary call
	assert.Len(t, sum.inputs, 1)

	require.Len(t, report.Results, 2)
	assert.ErrorIs(t, report.Results[0].Err, common.ErrSearchUnavailable)
}

func TestRun_SummaryFailureDegrades(t *testing.T) {
	p := NewPipeline(nil, Config{}, &fakeSearcher{}, &fakeSummarizer{err: errors.New("429")})

	rec := entity.NewRecord()
	report := p.Run(context.Background(), rec)

	assert.Len(t, report.Attempted(), len(constants.Fields()))
	assert.Len(t, report.Degraded(), len(constants.Fields()))
	assert.Len(t, rec.UnknownFields(), len(constants.Fields()))
}

func TestRun_SummaryWrittenUnconditionally(t *testing.T) {
	p := NewPipeline(nil, Config{}, &fakeSearcher{}, &fakeSummarizer{answer: "No relevant information found."})

	rec := fullRecord()
	rec.Set(constants.FieldOther, constants.Unknown)
	p.Run(context.Background(), rec)

	v, _ := rec.Get(constants.FieldOther)
	assert.Equal(t, "No relevant information found.", v)
}

func TestRun_SnapshotScan(t *testing.T) {
	fs, sum := &fakeSearcher{}, &fakeSummarizer{}
	p := NewPipeline(nil, Config{Workers: 1}, fs, sum)

	rec := entity.NewRecord()
	p.Run(context.Background(), rec)

	// one query per field, schema order with a single worker, never built from filled values
	require.Len(t, fs.queries, len(constants.Fields()))
	for i, f := range constants.Fields() {
		assert.Equal(t, f+" yacht insurance details", fs.queries[i])
	}
	assert.Empty(t, rec.UnknownFields())
}

func TestRun_FieldTimeout(t *testing.T) {
	fs := &fakeSearcher{delay: time.Second}
	p := NewPipeline(nil, Config{Workers: 13, FieldTimeout: 20 * time.Millisecond}, fs, &fakeSummarizer{})

	rec := entity.NewRecord()
	start := time.Now()
	report := p.Run(context.Background(), rec)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Len(t, report.Degraded(), len(constants.Fields()))
	for _, r := range report.Results {
		assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
	}
}

func TestRun_ConcurrentWorkersFillEverything(t *testing.T) {
	p := NewPipeline(nil, Config{Workers: 4}, &fakeSearcher{delay: 5 * time.Millisecond}, &fakeSummarizer{})

	rec := entity.NewRecord()
	report := p.Run(context.Background(), rec)

	assert.Equal(t, constants.Fields(), report.Attempted())
	assert.Empty(t, rec.UnknownFields())
	for _, f := range constants.Fields() {
		v, _ := rec.Get(f)
		assert.Equal(t, "summary of text for "+f+" yacht insurance details", v)
	}
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "Other yacht insurance details", BuildQuery(constants.FieldOther, constants.SearchQualifier))
}
