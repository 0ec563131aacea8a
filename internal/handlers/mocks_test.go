package handlers

import (
	"context"
	"time"

	"github.com/hoopsight/predictions-api/internal/models"
)

// MockLedgerService
type MockLedgerService struct {
	GetGamesFunc         func(ctx context.Context, from, to time.Time) ([]models.Game, error)
	GetTeamScheduleFunc  func(ctx context.Context, teamID string, from, to time.Time) ([]models.Game, error)
	FinalGamesBeforeFunc func(ctx context.Context, asOf time.Time) ([]models.Game, error)
	GamesOnFunc          func(ctx context.Context, date time.Time) ([]models.Game, error)
	UpsertGamesFunc      func(ctx context.Context, games []models.Game) (int, error)
}

func (m *MockLedgerService) GetGames(ctx context.Context, from, to time.Time) ([]models.Game, error) {
	if m.GetGamesFunc != nil {
		return m.GetGamesFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *MockLedgerService) GetTeamSchedule(ctx context.Context, teamID string, from, to time.Time) ([]models.Game, error) {
	if m.GetTeamScheduleFunc != nil {
		return m.GetTeamScheduleFunc(ctx, teamID, from, to)
	}
	return nil, nil
}

func (m *MockLedgerService) FinalGamesBefore(ctx context.Context, asOf time.Time) ([]models.Game, error) {
	if m.FinalGamesBeforeFunc != nil {
		return m.FinalGamesBeforeFunc(ctx, asOf)
	}
	return nil, nil
}

func (m *MockLedgerService) GamesOn(ctx context.Context, date time.Time) ([]models.Game, error) {
	if m.GamesOnFunc != nil {
		return m.GamesOnFunc(ctx, date)
	}
	return nil, nil
}

func (m *MockLedgerService) UpsertGames(ctx context.Context, games []models.Game) (int, error) {
	if m.UpsertGamesFunc != nil {
		return m.UpsertGamesFunc(ctx, games)
	}
	return len(games), nil
}

// MockTeamStatsService
type MockTeamStatsService struct {
	RunFunc     func(ctx context.Context, asOf time.Time) (*models.StageReport, error)
	GetStatFunc func(ctx context.Context, teamID string, asOf time.Time) (*models.TeamDailyStat, error)
}

func (m *MockTeamStatsService) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, asOf)
	}
	return &models.StageReport{}, nil
}

func (m *MockTeamStatsService) GetStat(ctx context.Context, teamID string, asOf time.Time) (*models.TeamDailyStat, error) {
	if m.GetStatFunc != nil {
		return m.GetStatFunc(ctx, teamID, asOf)
	}
	return &models.TeamDailyStat{TeamID: teamID, AsOfDate: asOf}, nil
}

// MockHeadToHeadService
type MockHeadToHeadService struct {
	RecordFunc func(ctx context.Context, teamA, teamB string, asOf time.Time) (*models.HeadToHeadRecord, error)
}

func (m *MockHeadToHeadService) Record(ctx context.Context, teamA, teamB string, asOf time.Time) (*models.HeadToHeadRecord, error) {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, teamA, teamB, asOf)
	}
	return &models.HeadToHeadRecord{TeamA: teamA, TeamB: teamB, AsOfDate: asOf}, nil
}

// MockFeatureService
type MockFeatureService struct {
	RunFunc       func(ctx context.Context, asOf time.Time) (*models.StageReport, error)
	GetVectorFunc func(ctx context.Context, gameID string) (*models.FeatureVector, error)
}

func (m *MockFeatureService) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, asOf)
	}
	return &models.StageReport{}, nil
}

func (m *MockFeatureService) GetVector(ctx context.Context, gameID string) (*models.FeatureVector, error) {
	if m.GetVectorFunc != nil {
		return m.GetVectorFunc(ctx, gameID)
	}
	return &models.FeatureVector{GameID: gameID, Complete: true}, nil
}

// MockRegistryService
type MockRegistryService struct {
	RegisterFunc  func(ctx context.Context, artifact *models.ModelArtifact) (*models.ModelArtifact, error)
	ActivateFunc  func(ctx context.Context, modelID string) error
	GetActiveFunc func(ctx context.Context) (*models.ModelArtifact, error)
	GetFunc       func(ctx context.Context, modelID string) (*models.ModelArtifact, error)
	ListFunc      func(ctx context.Context) ([]models.ModelArtifact, error)
}

func (m *MockRegistryService) Register(ctx context.Context, artifact *models.ModelArtifact) (*models.ModelArtifact, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, artifact)
	}
	out := *artifact
	out.ID = "mock-model-id"
	return &out, nil
}

func (m *MockRegistryService) Activate(ctx context.Context, modelID string) error {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, modelID)
	}
	return nil
}

func (m *MockRegistryService) GetActive(ctx context.Context) (*models.ModelArtifact, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx)
	}
	return &models.ModelArtifact{ID: "mock-model-id", IsActive: true}, nil
}

func (m *MockRegistryService) Get(ctx context.Context, modelID string) (*models.ModelArtifact, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, modelID)
	}
	return &models.ModelArtifact{ID: modelID}, nil
}

func (m *MockRegistryService) List(ctx context.Context) ([]models.ModelArtifact, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

// MockPredictionService
type MockPredictionService struct {
	RunFunc       func(ctx context.Context, asOf time.Time) (*models.StageReport, error)
	GetByDateFunc func(ctx context.Context, date time.Time) ([]models.Prediction, error)
	GetByGameFunc func(ctx context.Context, gameID string) ([]models.Prediction, error)
}

func (m *MockPredictionService) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, asOf)
	}
	return &models.StageReport{}, nil
}

func (m *MockPredictionService) GetByDate(ctx context.Context, date time.Time) ([]models.Prediction, error) {
	if m.GetByDateFunc != nil {
		return m.GetByDateFunc(ctx, date)
	}
	return nil, nil
}

func (m *MockPredictionService) GetByGame(ctx context.Context, gameID string) ([]models.Prediction, error) {
	if m.GetByGameFunc != nil {
		return m.GetByGameFunc(ctx, gameID)
	}
	return nil, nil
}

// MockMetricsService
type MockMetricsService struct {
	RunFunc             func(ctx context.Context, asOf time.Time) (*models.StageReport, error)
	ComputeFunc         func(ctx context.Context, modelID string, evalDate time.Time, period string) (*models.ModelMetric, error)
	GetModelMetricsFunc func(ctx context.Context, modelID string) ([]models.ModelMetric, error)
}

func (m *MockMetricsService) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, asOf)
	}
	return &models.StageReport{}, nil
}

func (m *MockMetricsService) Compute(ctx context.Context, modelID string, evalDate time.Time, period string) (*models.ModelMetric, error) {
	if m.ComputeFunc != nil {
		return m.ComputeFunc(ctx, modelID, evalDate, period)
	}
	return &models.ModelMetric{ModelID: modelID}, nil
}

func (m *MockMetricsService) GetModelMetrics(ctx context.Context, modelID string) ([]models.ModelMetric, error) {
	if m.GetModelMetricsFunc != nil {
		return m.GetModelMetricsFunc(ctx, modelID)
	}
	return nil, nil
}

// MockQualityService
type MockQualityService struct {
	RunChecksFunc  func(ctx context.Context, table, partition string) ([]models.QualityCheckResult, error)
	GateStatusFunc func(ctx context.Context, table, partition string) (string, error)
}

func (m *MockQualityService) RunChecks(ctx context.Context, table, partition string) ([]models.QualityCheckResult, error) {
	if m.RunChecksFunc != nil {
		return m.RunChecksFunc(ctx, table, partition)
	}
	return nil, nil
}

func (m *MockQualityService) GateStatus(ctx context.Context, table, partition string) (string, error) {
	if m.GateStatusFunc != nil {
		return m.GateStatusFunc(ctx, table, partition)
	}
	return models.GateStatusPassed, nil
}

// MockDailyRunner
type MockDailyRunner struct {
	RunDailyFunc func(ctx context.Context, asOf time.Time) (*models.RunReport, error)
}

func (m *MockDailyRunner) RunDaily(ctx context.Context, asOf time.Time) (*models.RunReport, error) {
	if m.RunDailyFunc != nil {
		return m.RunDailyFunc(ctx, asOf)
	}
	return &models.RunReport{RunID: "mock-run", AsOfDate: asOf}, nil
}
