package entities

import "time"

// RunStats aggregates the outcome of one full enrichment run. Per-record
// conditions are never fatal; they end up here so operators can judge
// enrichment coverage.
type RunStats struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	TotalRecords    int `json:"total_records"`
	EnrichedRecords int `json:"enriched_records"`
	SkippedRecords  int `json:"skipped_records"`

	CompaniesMatched   int `json:"companies_matched"`
	CompaniesUnmatched int `json:"companies_unmatched"`

	NDCAccepted int `json:"ndc_accepted"`
	NDCRejected int `json:"ndc_rejected"`

	RecordsWithoutSigs int `json:"records_without_sigs"`
}

// Merge adds the counters of other into s. Used to combine per-worker
// accumulators after a parallel run.
func (s *RunStats) Merge(other *RunStats) {
	s.TotalRecords += other.TotalRecords
	s.EnrichedRecords += other.EnrichedRecords
	s.SkippedRecords += other.SkippedRecords
	s.CompaniesMatched += other.CompaniesMatched
	s.CompaniesUnmatched += other.CompaniesUnmatched
	s.NDCAccepted += other.NDCAccepted
	s.NDCRejected += other.NDCRejected
	s.RecordsWithoutSigs += other.RecordsWithoutSigs
}
