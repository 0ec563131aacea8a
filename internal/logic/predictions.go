package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/models"
)

const predictionColumns = `game_id, model_id, game_date, predicted_winner,
	win_probability, predicted_margin, actual_winner, was_correct,
	created_at, reconciled_at`

// predictionService generates one prediction per (game, active model).
// Inserts are ON CONFLICT DO NOTHING so overlapping scheduled runs converge
// instead of erroring or duplicating.
type predictionService struct {
	pg       PgPool
	ledger   GameLedgerService
	features FeatureService
	registry ModelRegistryService
	resolver PredictorResolver
	logger   *zap.SugaredLogger
}

func NewPredictionService(pg PgPool, ledger GameLedgerService, features FeatureService, registry ModelRegistryService, resolver PredictorResolver, logger *zap.Logger) PredictionService {
	return &predictionService{
		pg:       pg,
		ledger:   ledger,
		features: features,
		registry: registry,
		resolver: resolver,
		logger:   logger.Sugar(),
	}
}

func (s *predictionService) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	start := time.Now()
	asOf = dateOnly(asOf)
	report := &models.StageReport{Stage: models.StagePredictions, AsOfDate: asOf}

	games, err := s.ledger.GamesOn(ctx, asOf)
	if err != nil {
		return report, err
	}

	active, err := s.registry.GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveModel) {
			// Recoverable: the orchestrator can activate a model and rerun.
			for range games {
				report.Skip("no_active_model")
			}
			report.Duration = time.Since(start)
			return report, ErrNoActiveModel
		}
		return report, err
	}

	pred, err := s.resolver.Resolve(active)
	if err != nil {
		return report, fmt.Errorf("resolving predictor for %s: %w", active.ID, err)
	}

	for i := range games {
		game := &games[i]
		if game.Status != models.GameStatusScheduled {
			report.Skip("not_scheduled")
			continue
		}

		fv, err := s.features.GetVector(ctx, game.GameID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				report.Skip("missing_features")
				continue
			}
			s.logger.Errorw("Feature lookup failed", "game_id", game.GameID, "error", err)
			report.Skip("error")
			continue
		}
		if !fv.Complete {
			report.Skip("incomplete_features")
			continue
		}

		outcome, err := pred.Predict(fv)
		if err != nil {
			s.logger.Errorw("Predictor failed", "game_id", game.GameID, "error", err)
			report.Skip("predictor_error")
			continue
		}
		if outcome.WinProbability < 0 || outcome.WinProbability > 1 {
			s.logger.Errorw("Predictor emitted out-of-range probability",
				"game_id", game.GameID, "probability", outcome.WinProbability)
			report.Skip("invalid_probability")
			continue
		}

		tag, err := s.pg.Exec(ctx, `
			INSERT INTO predictions (
				game_id, model_id, game_date, predicted_winner,
				win_probability, predicted_margin, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,now())
			ON CONFLICT (game_id, model_id) DO NOTHING
		`, game.GameID, active.ID, dateOnly(game.Date),
			outcome.Winner, outcome.WinProbability, outcome.Margin)
		if err != nil {
			s.logger.Errorw("Prediction insert failed", "game_id", game.GameID, "error", err)
			report.Skip("error")
			continue
		}
		if tag.RowsAffected() == 0 {
			report.Skip("already_predicted")
			continue
		}
		report.RowsWritten++
	}

	report.Duration = time.Since(start)
	s.logger.Infow("Predictions generated",
		"as_of", DateKey(asOf),
		"model_id", active.ID,
		"written", report.RowsWritten,
		"skipped", report.RowsSkipped,
	)
	return report, nil
}

func (s *predictionService) GetByDate(ctx context.Context, date time.Time) ([]models.Prediction, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE game_date = $1
		ORDER BY game_id, model_id
	`, dateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("predictions by date query failed: %w", err)
	}
	return scanPredictions(rows)
}

func (s *predictionService) GetByGame(ctx context.Context, gameID string) ([]models.Prediction, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE game_id = $1
		ORDER BY model_id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("predictions by game query failed: %w", err)
	}
	return scanPredictions(rows)
}

func scanPredictions(rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}) ([]models.Prediction, error) {
	defer rows.Close()
	preds := []models.Prediction{}
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(
			&p.GameID, &p.ModelID, &p.GameDate, &p.PredictedWinner,
			&p.WinProbability, &p.PredictedMargin, &p.ActualWinner,
			&p.WasCorrect, &p.CreatedAt, &p.ReconciledAt,
		); err != nil {
			return nil, fmt.Errorf("prediction scan failed: %w", err)
		}
		preds = append(preds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prediction row iteration failed: %w", err)
	}
	return preds, nil
}
