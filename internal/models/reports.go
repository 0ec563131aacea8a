package models

import "time"

// Pipeline stage names, in execution order.
const (
	StageTeamStats   = "team_stats"
	StageFeatures    = "features"
	StagePredictions = "predictions"
	StageReconcile   = "reconcile"
	StageMetrics     = "metrics"
)

// StageReport is the structured result every stage run returns to the
// orchestrator: what happened, not an opaque success boolean.
type StageReport struct {
	Stage       string         `json:"stage"`
	AsOfDate    time.Time      `json:"as_of_date"`
	RowsWritten int            `json:"rows_written"`
	RowsSkipped int            `json:"rows_skipped_incomplete"`
	SkipReasons map[string]int `json:"skip_reasons,omitempty"`
	GateStatus  string         `json:"quality_gate_status"`
	Duration    time.Duration  `json:"duration"`
}

// Skip adds one skipped record with a reason.
func (r *StageReport) Skip(reason string) {
	r.RowsSkipped++
	if r.SkipReasons == nil {
		r.SkipReasons = make(map[string]int)
	}
	r.SkipReasons[reason]++
}

// RunReport aggregates the per-stage reports of one daily run.
type RunReport struct {
	RunID    string        `json:"run_id"`
	AsOfDate time.Time     `json:"as_of_date"`
	Stages   []StageReport `json:"stages"`
	Duration time.Duration `json:"duration"`
}
