// Package pipeline orchestrates the daily run: team stats, feature
// materialization, prediction generation, outcome reconciliation and metric
// rollups, with quality gates between writer stages and their consumers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/logic"
	"github.com/hoopsight/predictions-api/internal/models"
)

// Prometheus metrics
var (
	stageRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hoops_pipeline_stage_runs_total",
		Help: "Total stage executions by stage and result",
	}, []string{"stage", "result"})

	stageRowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hoops_pipeline_rows_written_total",
		Help: "Rows written per stage",
	}, []string{"stage"})

	stageRowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hoops_pipeline_rows_skipped_total",
		Help: "Rows skipped per stage",
	}, []string{"stage"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hoops_pipeline_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	gateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hoops_pipeline_gate_failures_total",
		Help: "Quality gate failures by table",
	}, []string{"table"})
)

// StageRunner is implemented by every batch stage.
type StageRunner interface {
	Run(ctx context.Context, asOf time.Time) (*models.StageReport, error)
}

// Config wires the runner's stage services.
type Config struct {
	TeamStats StageRunner
	Features  StageRunner
	Predicter StageRunner
	Reconcile StageRunner
	Metrics   StageRunner
	Quality   logic.QualityGateService
	Logger    *zap.Logger
}

// Runner executes one daily pipeline run.
type Runner struct {
	cfg    Config
	logger *zap.SugaredLogger
}

func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg, logger: cfg.Logger.Sugar()}
}

// stage pairs a runner with the table it writes, so the gate can be checked
// after the stage and consulted before its consumers.
type stage struct {
	name      string
	runner    StageRunner
	writes    string
	dependsOn []string
}

func (r *Runner) stages() []stage {
	return []stage{
		{name: models.StageTeamStats, runner: r.cfg.TeamStats, writes: "team_daily_stats"},
		{name: models.StageFeatures, runner: r.cfg.Features, writes: "feature_vectors",
			dependsOn: []string{"team_daily_stats"}},
		{name: models.StagePredictions, runner: r.cfg.Predicter, writes: "predictions",
			dependsOn: []string{"feature_vectors"}},
		{name: models.StageReconcile, runner: r.cfg.Reconcile},
		{name: models.StageMetrics, runner: r.cfg.Metrics,
			dependsOn: []string{"predictions"}},
	}
}

// RunDaily executes every stage for asOf in order. A failed quality gate on
// a table blocks the stages that consume it but never the independent ones;
// reconciliation in particular always runs, since late scores must land
// regardless of today's feature quality.
func (r *Runner) RunDaily(ctx context.Context, asOf time.Time) (*models.RunReport, error) {
	start := time.Now()
	run := &models.RunReport{
		RunID:    uuid.NewString(),
		AsOfDate: asOf,
	}
	partition := logic.DateKey(asOf)

	r.logger.Infow("Pipeline run starting", "run_id", run.RunID, "as_of", partition)

	var firstErr error
	for _, st := range r.stages() {
		report := r.runStage(ctx, st, asOf, partition)
		run.Stages = append(run.Stages, *report)
		if report.GateStatus == models.GateStatusFailed && firstErr == nil {
			firstErr = logic.ErrQualityGateFailed
		}
	}

	run.Duration = time.Since(start)
	r.logger.Infow("Pipeline run finished",
		"run_id", run.RunID,
		"as_of", partition,
		"duration", run.Duration,
	)
	return run, firstErr
}

// RunStage executes a single named stage for asOf, with the same gate
// checks a full run would apply. Used by the CLI to rerun one stage.
func (r *Runner) RunStage(ctx context.Context, name string, asOf time.Time) (*models.StageReport, error) {
	partition := logic.DateKey(asOf)
	for _, st := range r.stages() {
		if st.name != name {
			continue
		}
		report := r.runStage(ctx, st, asOf, partition)
		if report.GateStatus == models.GateStatusFailed {
			return report, logic.ErrQualityGateFailed
		}
		return report, nil
	}
	return nil, fmt.Errorf("unknown stage %q", name)
}

func (r *Runner) runStage(ctx context.Context, st stage, asOf time.Time, partition string) *models.StageReport {
	for _, table := range st.dependsOn {
		status, err := r.cfg.Quality.GateStatus(ctx, table, partition)
		if err != nil {
			r.logger.Errorw("Gate status lookup failed",
				"stage", st.name, "table", table, "error", err)
			status = models.GateStatusUnknown
		}
		if status == models.GateStatusFailed {
			r.logger.Warnw("Stage blocked by failed quality gate",
				"stage", st.name, "table", table, "partition", partition)
			stageRuns.WithLabelValues(st.name, "blocked").Inc()
			report := &models.StageReport{
				Stage:      st.name,
				AsOfDate:   asOf,
				GateStatus: models.GateStatusFailed,
			}
			report.Skip("upstream_gate_failed")
			return report
		}
	}

	timer := prometheus.NewTimer(stageDuration.WithLabelValues(st.name))
	report, err := st.runner.Run(ctx, asOf)
	timer.ObserveDuration()

	if report == nil {
		report = &models.StageReport{Stage: st.name, AsOfDate: asOf}
	}
	stageRowsWritten.WithLabelValues(st.name).Add(float64(report.RowsWritten))
	stageRowsSkipped.WithLabelValues(st.name).Add(float64(report.RowsSkipped))

	if err != nil {
		// ErrNoActiveModel is recoverable: skips are already recorded and
		// the next run picks the games back up after activation.
		if errors.Is(err, logic.ErrNoActiveModel) {
			r.logger.Warnw("Stage skipped all work", "stage", st.name, "error", err)
			stageRuns.WithLabelValues(st.name, "skipped").Inc()
		} else {
			r.logger.Errorw("Stage failed", "stage", st.name, "error", err)
			stageRuns.WithLabelValues(st.name, "error").Inc()
		}
		return report
	}
	stageRuns.WithLabelValues(st.name, "ok").Inc()

	if st.writes != "" {
		report.GateStatus = r.checkGate(ctx, st.writes, partition)
	}
	return report
}

// checkGate runs the table's declared checks and reports the verdict.
func (r *Runner) checkGate(ctx context.Context, table, partition string) string {
	results, err := r.cfg.Quality.RunChecks(ctx, table, partition)
	if err != nil {
		r.logger.Errorw("Quality checks failed to run",
			"table", table, "partition", partition, "error", err)
		return models.GateStatusUnknown
	}
	for _, res := range results {
		if !res.Passed {
			gateFailures.WithLabelValues(table).Inc()
			return models.GateStatusFailed
		}
	}
	return models.GateStatusPassed
}
