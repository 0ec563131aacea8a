package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/config"
	"github.com/hoopsight/predictions-api/internal/handlers"
	"github.com/hoopsight/predictions-api/internal/logic"
	"github.com/hoopsight/predictions-api/internal/pipeline"
	"github.com/hoopsight/predictions-api/internal/predictor"
)

func main() {
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

	h := handlers.New(handlers.Config{
		Postgres:    pg,
		ClickHouse:  ch,
		Redis:       rdb,
		Logger:      logger,
		Ledger:      ledger,
		TeamStats:   teamStats,
		HeadToHead:  h2h,
		Features:    features,
		Registry:    registry,
		Predictions: predictions,
		Metrics:     metrics,
		Quality:     quality,
		Pipeline:    runner,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handlers.NewRouter(h, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sugar.Infow("API listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Shutdown failed", "error", err)
	}
}
