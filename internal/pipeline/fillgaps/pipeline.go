package fillgaps

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/llm"
	"github.com/joseph-ayodele/inquiry-intake/internal/metrics"
	"github.com/joseph-ayodele/inquiry-intake/internal/search"
)

// Searcher is the slice of search.Adapter the engine needs.
type Searcher interface {
	Lookup(ctx context.Context, query string, n, charLimit int) (search.Bundle, error)
}

type Config struct {
	Workers      int           // concurrent fields; 1 processes fields in schema order
	ResultCount  int           // results read per query
	CharLimit    int           // search text budget in runes
	Qualifier    string        // appended to the field name to form the query
	FieldTimeout time.Duration // per field: search + fetch + summary
}

// FieldResult is the remediation outcome for one field.
type FieldResult struct {
	Field   string
	Query   string
	Value   string
	Outcome constants.FieldOutcome
	Err     error
}

// Report lists the fields one pass attempted, in schema order.
type Report struct {
	Results []FieldResult
}

// Attempted returns every field the pass tried to fill.
func (r Report) Attempted() []string {
	out := make([]string, 0, len(r.Results))
	for _, fr := range r.Results {
		out = append(out, fr.Field)
	}
	return out
}

// Filled returns fields that ended with a non-sentinel value.
func (r Report) Filled() []string {
	return r.with(constants.FieldEnriched)
}

// Degraded returns fields that kept the sentinel.
func (r Report) Degraded() []string {
	return r.with(constants.FieldDegraded)
}

func (r Report) with(o constants.FieldOutcome) []string {
	var out []string
	for _, fr := range r.Results {
		if fr.Outcome == o {
			out = append(out, fr.Field)
		}
	}
	return out
}

type Pipeline struct {
	Logger     *slog.Logger
	Cfg        Config
	Search     Searcher
	Summarizer llm.Summarizer
}

func NewPipeline(logger *slog.Logger, cfg Config, s Searcher, sum llm.Summarizer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = constants.DefaultFillWorkers
	}
	if cfg.ResultCount <= 0 {
		cfg.ResultCount = constants.SearchResultCount
	}
	if cfg.CharLimit <= 0 {
		cfg.CharLimit = constants.SearchCharLimit
	}
	if strings.TrimSpace(cfg.Qualifier) == "" {
		cfg.Qualifier = constants.SearchQualifier
	}
	if cfg.FieldTimeout <= 0 {
		cfg.FieldTimeout = 60 * time.Second
	}
	return &Pipeline{Logger: logger, Cfg: cfg, Search: s, Summarizer: sum}
}

// BuildQuery concatenates the field name with the qualifier phrase.
func BuildQuery(field, qualifier string) string {
	return field + " " + qualifier
}

// Run fills the record's sentinel fields in place. The set of fields is taken
// once, before any write, so values filled in this pass never feed another
// field's query. One field's failure never stops the others.
func (p *Pipeline) Run(ctx context.Context, rec *entity.Record) Report {
	log := common.LoggerFrom(ctx, p.Logger)

	// snapshot scan
	fields := rec.UnknownFields()
	if len(fields) == 0 {
		log.Info("fill.skip", "reason", "no unknown fields")
		return Report{}
	}

	start := time.Now()
	log.Info("fill.start", "fields", len(fields), "workers", p.Cfg.Workers)

	results := make([]FieldResult, len(fields))
	var g errgroup.Group
	g.SetLimit(p.Cfg.Workers)
	for i, field := range fields {
		g.Go(func() error {
			// each worker only writes its own field and its own slot
			results[i] = p.fillField(ctx, log, rec, field)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Results: results}
	log.Info("fill.done",
		"attempted", len(fields),
		"filled", len(report.Filled()),
		"degraded", report.Degraded(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report
}

func (p *Pipeline) fillField(ctx context.Context, log *slog.Logger, rec *entity.Record, field string) FieldResult {
	ctx, cancel := context.WithTimeout(ctx, p.Cfg.FieldTimeout)
	defer cancel()

	start := time.Now()
	res := FieldResult{Field: field, Query: BuildQuery(field, p.Cfg.Qualifier)}

	bundle, err := p.Search.Lookup(ctx, res.Query, p.Cfg.ResultCount, p.Cfg.CharLimit)
	if err != nil {
		// nothing found: keep the sentinel, no summary call
		return p.finish(log, rec, res, constants.Unknown, err, start)
	}

	summary, err := p.Summarizer.Summarize(ctx, bundle.Text)
	if err != nil {
		return p.finish(log, rec, res, constants.Unknown, err, start)
	}
	return p.finish(log, rec, res, summary, nil, start)
}

func (p *Pipeline) finish(log *slog.Logger, rec *entity.Record, res FieldResult, value string, err error, start time.Time) FieldResult {
	rec.Set(res.Field, value)
	res.Value, _ = rec.Get(res.Field)
	res.Err = err
	res.Outcome = constants.FieldEnriched
	if res.Value == constants.Unknown {
		res.Outcome = constants.FieldDegraded
	}
	metrics.RecordFieldOutcome(string(res.Outcome))

	if err != nil {
		log.Warn("fill.field.degraded",
			"field", res.Field, "query", res.Query, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	} else {
		log.Info("fill.field.ok",
			"field", res.Field, "outcome", res.Outcome,
			"value_len", len(res.Value),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
	return res
}
