package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_runs_total",
			Help: "Total number of pipeline runs by final status",
		},
		[]string{"status"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	DocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_documents_total",
			Help: "Total number of attached documents processed by outcome",
		},
		[]string{"outcome"},
	)

	// Field metrics
	FieldOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_field_outcomes_total",
			Help: "Total number of field results by outcome",
		},
		[]string{"outcome"},
	)

	// Search metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_search_requests_total",
			Help: "Total number of search provider requests by result",
		},
		[]string{"result"},
	)

	PageFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_page_fetches_total",
			Help: "Total number of result page fetches by result",
		},
		[]string{"result"},
	)

	// Ingest metrics
	InboxFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_inbox_files_total",
			Help: "Total number of inbox inquiry files handled by outcome",
		},
		[]string{"outcome"},
	)
)

// Label values
const (
	StageDocument   = "document"
	StageExtraction = "extraction"
	StageCompletion = "completion"

	ResultOK       = "ok"
	ResultEmpty    = "empty"
	ResultError    = "error"
	ResultCacheHit = "cache_hit"
)

// RecordRun increments the run counter for status.
func RecordRun(status string) {
	RunsTotal.WithLabelValues(status).Inc()
}

// ObserveStage records a stage duration in seconds.
func ObserveStage(stage string, seconds float64) {
	StageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordFieldOutcome increments the field outcome counter.
func RecordFieldOutcome(outcome string) {
	FieldOutcomes.WithLabelValues(outcome).Inc()
}

// RecordSearch increments the search request counter.
func RecordSearch(result string) {
	SearchRequests.WithLabelValues(result).Inc()
}

// RecordFetch increments the page fetch counter.
func RecordFetch(result string) {
	PageFetches.WithLabelValues(result).Inc()
}

// RecordInboxFile increments the inbox file counter.
func RecordInboxFile(outcome string) {
	InboxFiles.WithLabelValues(outcome).Inc()
}
