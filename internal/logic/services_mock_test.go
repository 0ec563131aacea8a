package logic

import (
	"context"
	"time"

	"github.com/hoopsight/predictions-api/internal/models"
	"github.com/hoopsight/predictions-api/internal/predictor"
)

// Function-field mocks for the service interfaces. Tests set only the
// methods they exercise; the rest panic on use.

type MockLedger struct {
	GetGamesFunc         func(ctx context.Context, from, to time.Time) ([]models.Game, error)
	GetTeamScheduleFunc  func(ctx context.Context, teamID string, from, to time.Time) ([]models.Game, error)
	FinalGamesBeforeFunc func(ctx context.Context, asOf time.Time) ([]models.Game, error)
	GamesOnFunc          func(ctx context.Context, date time.Time) ([]models.Game, error)
	UpsertGamesFunc      func(ctx context.Context, games []models.Game) (int, error)
}

func (m *MockLedger) GetGames(ctx context.Context, from, to time.Time) ([]models.Game, error) {
	return m.GetGamesFunc(ctx, from, to)
}
func (m *MockLedger) GetTeamSchedule(ctx context.Context, teamID string, from, to time.Time) ([]models.Game, error) {
	return m.GetTeamScheduleFunc(ctx, teamID, from, to)
}
func (m *MockLedger) FinalGamesBefore(ctx context.Context, asOf time.Time) ([]models.Game, error) {
	return m.FinalGamesBeforeFunc(ctx, asOf)
}
func (m *MockLedger) GamesOn(ctx context.Context, date time.Time) ([]models.Game, error) {
	return m.GamesOnFunc(ctx, date)
}
func (m *MockLedger) UpsertGames(ctx context.Context, games []models.Game) (int, error) {
	return m.UpsertGamesFunc(ctx, games)
}

type MockTeamStats struct {
	RunFunc     func(ctx context.Context, asOf time.Time) (*models.StageReport, error)
	GetStatFunc func(ctx context.Context, teamID string, asOf time.Time) (*models.TeamDailyStat, error)
}

func (m *MockTeamStats) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	return m.RunFunc(ctx, asOf)
}
func (m *MockTeamStats) GetStat(ctx context.Context, teamID string, asOf time.Time) (*models.TeamDailyStat, error) {
	return m.GetStatFunc(ctx, teamID, asOf)
}

type MockH2H struct {
	RecordFunc func(ctx context.Context, teamA, teamB string, asOf time.Time) (*models.HeadToHeadRecord, error)
}

func (m *MockH2H) Record(ctx context.Context, teamA, teamB string, asOf time.Time) (*models.HeadToHeadRecord, error) {
	return m.RecordFunc(ctx, teamA, teamB, asOf)
}

type MockRest struct {
	ProfileFunc func(ctx context.Context, teamID string, asOf time.Time) (*models.RestProfile, error)
}

func (m *MockRest) Profile(ctx context.Context, teamID string, asOf time.Time) (*models.RestProfile, error) {
	return m.ProfileFunc(ctx, teamID, asOf)
}

type MockFeatures struct {
	RunFunc       func(ctx context.Context, asOf time.Time) (*models.StageReport, error)
	GetVectorFunc func(ctx context.Context, gameID string) (*models.FeatureVector, error)
}

func (m *MockFeatures) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	return m.RunFunc(ctx, asOf)
}
func (m *MockFeatures) GetVector(ctx context.Context, gameID string) (*models.FeatureVector, error) {
	return m.GetVectorFunc(ctx, gameID)
}

type MockRegistry struct {
	RegisterFunc  func(ctx context.Context, artifact *models.ModelArtifact) (*models.ModelArtifact, error)
	ActivateFunc  func(ctx context.Context, modelID string) error
	GetActiveFunc func(ctx context.Context) (*models.ModelArtifact, error)
	GetFunc       func(ctx context.Context, modelID string) (*models.ModelArtifact, error)
	ListFunc      func(ctx context.Context) ([]models.ModelArtifact, error)
}

func (m *MockRegistry) Register(ctx context.Context, artifact *models.ModelArtifact) (*models.ModelArtifact, error) {
	return m.RegisterFunc(ctx, artifact)
}
func (m *MockRegistry) Activate(ctx context.Context, modelID string) error {
	return m.ActivateFunc(ctx, modelID)
}
func (m *MockRegistry) GetActive(ctx context.Context) (*models.ModelArtifact, error) {
	return m.GetActiveFunc(ctx)
}
func (m *MockRegistry) Get(ctx context.Context, modelID string) (*models.ModelArtifact, error) {
	return m.GetFunc(ctx, modelID)
}
func (m *MockRegistry) List(ctx context.Context) ([]models.ModelArtifact, error) {
	return m.ListFunc(ctx)
}

type MockResolver struct {
	ResolveFunc func(artifact *models.ModelArtifact) (predictor.Predictor, error)
}

func (m *MockResolver) Resolve(artifact *models.ModelArtifact) (predictor.Predictor, error) {
	return m.ResolveFunc(artifact)
}

type MockPredictor struct {
	PredictFunc func(fv *models.FeatureVector) (predictor.Outcome, error)
}

func (m *MockPredictor) Predict(fv *models.FeatureVector) (predictor.Outcome, error) {
	return m.PredictFunc(fv)
}
