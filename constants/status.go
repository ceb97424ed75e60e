package constants

// RunStatus is the terminal status of one pipeline run.
type RunStatus string

// Stable values (used as metric labels).
const (
	RunStatusOK               RunStatus = "ok"
	RunStatusNoInput          RunStatus = "no_input"
	RunStatusExtractionFailed RunStatus = "extraction_failed"
	RunStatusFailed           RunStatus = "failed"
)

// FieldOutcome describes how a record field got its final value.
type FieldOutcome string

const (
	FieldExtracted FieldOutcome = "extracted" // present in the source text
	FieldEnriched  FieldOutcome = "enriched"  // filled by search + summary
	FieldDegraded  FieldOutcome = "degraded"  // remediation failed, sentinel kept
)
