package handlers

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/logic"
	"github.com/hoopsight/predictions-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// DailyRunner triggers a full pipeline run for one date.
type DailyRunner interface {
	RunDaily(ctx context.Context, asOf time.Time) (*models.RunReport, error)
}

type Config struct {
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
	// Services
	Ledger      logic.GameLedgerService
	TeamStats   logic.TeamStatsService
	HeadToHead  logic.HeadToHeadService
	Features    logic.FeatureService
	Registry    logic.ModelRegistryService
	Predictions logic.PredictionService
	Metrics     logic.MetricsService
	Quality     logic.QualityGateService
	Pipeline    DailyRunner
}

type Handler struct {
	pg          *pgxpool.Pool
	ch          driver.Conn
	redis       *redis.Client
	logger      *zap.SugaredLogger
	validator   *validator.Validate
	ledger      logic.GameLedgerService
	teamStats   logic.TeamStatsService
	headToHead  logic.HeadToHeadService
	features    logic.FeatureService
	registry    logic.ModelRegistryService
	predictions logic.PredictionService
	metrics     logic.MetricsService
	quality     logic.QualityGateService
	pipeline    DailyRunner
}

func New(cfg Config) *Handler {
	return &Handler{
		pg:          cfg.Postgres,
		ch:          cfg.ClickHouse,
		redis:       cfg.Redis,
		logger:      cfg.Logger.Sugar(),
		validator:   validator.New(),
		ledger:      cfg.Ledger,
		teamStats:   cfg.TeamStats,
		headToHead:  cfg.HeadToHead,
		features:    cfg.Features,
		registry:    cfg.Registry,
		predictions: cfg.Predictions,
		metrics:     cfg.Metrics,
		quality:     cfg.Quality,
		pipeline:    cfg.Pipeline,
	}
}
