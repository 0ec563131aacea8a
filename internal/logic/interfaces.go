package logic

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/hoopsight/predictions-api/internal/models"
	"github.com/hoopsight/predictions-api/internal/predictor"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RedisClient defines the interface for the Redis cache client
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// GameLedgerService is the chronologically queryable view of the game
// ledger, plus the upsert used at the ingestion boundary.
type GameLedgerService interface {
	GetGames(ctx context.Context, from, to time.Time) ([]models.Game, error)
	GetTeamSchedule(ctx context.Context, teamID string, from, to time.Time) ([]models.Game, error)
	FinalGamesBefore(ctx context.Context, asOf time.Time) ([]models.Game, error)
	GamesOn(ctx context.Context, date time.Time) ([]models.Game, error)
	UpsertGames(ctx context.Context, games []models.Game) (int, error)
}

// TeamStatsService computes and serves per-team daily form snapshots.
type TeamStatsService interface {
	Run(ctx context.Context, asOf time.Time) (*models.StageReport, error)
	GetStat(ctx context.Context, teamID string, asOf time.Time) (*models.TeamDailyStat, error)
}

// HeadToHeadService resolves historical matchup records.
type HeadToHeadService interface {
	Record(ctx context.Context, teamA, teamB string, asOf time.Time) (*models.HeadToHeadRecord, error)
}

// RestService computes rest and fatigue inputs per team per date.
type RestService interface {
	Profile(ctx context.Context, teamID string, asOf time.Time) (*models.RestProfile, error)
}

// FeatureService materializes and serves feature vectors.
type FeatureService interface {
	Run(ctx context.Context, asOf time.Time) (*models.StageReport, error)
	GetVector(ctx context.Context, gameID string) (*models.FeatureVector, error)
}

// ModelRegistryService stores versioned model artifacts and the active flag.
type ModelRegistryService interface {
	Register(ctx context.Context, artifact *models.ModelArtifact) (*models.ModelArtifact, error)
	Activate(ctx context.Context, modelID string) error
	GetActive(ctx context.Context) (*models.ModelArtifact, error)
	Get(ctx context.Context, modelID string) (*models.ModelArtifact, error)
	List(ctx context.Context) ([]models.ModelArtifact, error)
}

// PredictionService generates and serves predictions.
type PredictionService interface {
	Run(ctx context.Context, asOf time.Time) (*models.StageReport, error)
	GetByDate(ctx context.Context, date time.Time) ([]models.Prediction, error)
	GetByGame(ctx context.Context, gameID string) ([]models.Prediction, error)
}

// ReconcileService backfills actual outcomes onto predictions.
type ReconcileService interface {
	Run(ctx context.Context, asOf time.Time) (*models.StageReport, error)
}

// MetricsService rolls prediction correctness up into model metrics.
type MetricsService interface {
	Run(ctx context.Context, asOf time.Time) (*models.StageReport, error)
	Compute(ctx context.Context, modelID string, evalDate time.Time, period string) (*models.ModelMetric, error)
	GetModelMetrics(ctx context.Context, modelID string) ([]models.ModelMetric, error)
}

// QualityGateService validates stage output and records pass/fail results.
type QualityGateService interface {
	RunChecks(ctx context.Context, table, partition string) ([]models.QualityCheckResult, error)
	GateStatus(ctx context.Context, table, partition string) (string, error)
}

// PredictorResolver turns a registered artifact into a runnable predictor.
type PredictorResolver interface {
	Resolve(artifact *models.ModelArtifact) (predictor.Predictor, error)
}
