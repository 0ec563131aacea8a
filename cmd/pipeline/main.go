// The pipeline command runs one daily pipeline pass and exits, for cron or
// scheduled-job orchestration. The API server exposes the same run via
// POST /api/v1/pipeline/run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/config"
	"github.com/hoopsight/predictions-api/internal/logic"
	"github.com/hoopsight/predictions-api/internal/pipeline"
	"github.com/hoopsight/predictions-api/internal/predictor"
)

func main() {
	dateFlag := flag.String("date", "", "as-of date (YYYY-MM-DD), defaults to today UTC")
	stageFlag := flag.String("stage", "", "run a single stage (team_stats, features, predictions, reconcile, metrics) instead of the full pass")
	flag.Parse()

	asOf := time.Now().UTC()
	if *dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -date %q: %v\n", *dateFlag, err)
			os.Exit(2)
		}
		asOf = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("Postgres connection failed", "error", err)
	}
	defer pg.Close()

	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		sugar.Fatalw("ClickHouse DSN invalid", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("ClickHouse connection failed", "error", err)
	}
	defer ch.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("Redis URL invalid", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	ledger := logic.NewGameLedgerService(pg, logger)
	teamStats := logic.NewTeamStatsService(pg, ledger, logger, cfg.Last5WindowSize, cfg.WorkerCount)
	h2h := logic.NewHeadToHeadService(pg, rdb, cfg.H2HCacheTTL, logger)
	rest := logic.NewRestService(pg, cfg.BackToBackMaxGap)
	features := logic.NewFeatureService(pg, ledger, teamStats, h2h, rest, logger, cfg.WorkerCount)
	registry := logic.NewModelRegistryService(pg, logger)
	predictions := logic.NewPredictionService(pg, ledger, features, registry, predictor.Default, logger)
	reconcile := logic.NewReconcileService(pg, ledger, logger)
	metrics := logic.NewMetricsService(pg, registry, logger, cfg.CalibrationBins)
	quality := logic.NewQualityGateService(pg, ch, logger, cfg.GateMaxFailRate)

	runner := pipeline.NewRunner(pipeline.Config{
		TeamStats: teamStats,
		Features:  features,
		Predicter: predictions,
		Reconcile: reconcile,
		Metrics:   metrics,
		Quality:   quality,
		Logger:    logger,
	})

	if *stageFlag != "" {
		report, err := runner.RunStage(ctx, *stageFlag, asOf)
		if report != nil {
			sugar.Infow("Stage finished",
				"stage", report.Stage,
				"written", report.RowsWritten,
				"skipped", report.RowsSkipped,
				"gate", report.GateStatus,
				"skip_reasons", report.SkipReasons,
			)
		}
		if err != nil {
			sugar.Errorw("Stage run failed", "stage", *stageFlag, "error", err)
			os.Exit(1)
		}
		return
	}

	run, err := runner.RunDaily(ctx, asOf)
	for _, st := range run.Stages {
		sugar.Infow("Stage finished",
			"stage", st.Stage,
			"written", st.RowsWritten,
			"skipped", st.RowsSkipped,
			"gate", st.GateStatus,
			"skip_reasons", st.SkipReasons,
		)
	}
	if err != nil {
		sugar.Errorw("Pipeline run finished with failures", "run_id", run.RunID, "error", err)
		os.Exit(1)
	}
	sugar.Infow("Pipeline run complete", "run_id", run.RunID, "duration", run.Duration)
}
