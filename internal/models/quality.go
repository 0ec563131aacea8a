package models

import "time"

// Gate status values for a (table, partition) pair.
const (
	GateStatusPassed  = "passed"
	GateStatusFailed  = "failed"
	GateStatusUnknown = "unknown"
)

// QualityCheckResult is one append-only log entry per check run. Results are
// never mutated; the current gate status is the latest run per check.
type QualityCheckResult struct {
	CheckName      string    `json:"check_name"`
	TableName      string    `json:"table_name"`
	Partition      string    `json:"partition"`
	CheckedAt      time.Time `json:"checked_at"`
	Passed         bool      `json:"passed"`
	RecordsChecked uint64    `json:"records_checked"`
	RecordsFailed  uint64    `json:"records_failed"`
	FailureRate    float64   `json:"failure_rate"`
	RunID          string    `json:"run_id"`
}
