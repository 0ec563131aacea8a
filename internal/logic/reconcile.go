package logic

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/models"
)

// reconcileService backfills actual outcomes onto predictions once the
// ledger shows a final score. The update is guarded on actual_winner IS
// NULL, so reruns are no-ops: once set, correctness never changes.
type reconcileService struct {
	pg     PgPool
	ledger GameLedgerService
	logger *zap.SugaredLogger
}

func NewReconcileService(pg PgPool, ledger GameLedgerService, logger *zap.Logger) ReconcileService {
	return &reconcileService{pg: pg, ledger: ledger, logger: logger.Sugar()}
}

func (s *reconcileService) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	start := time.Now()
	asOf = dateOnly(asOf)
	report := &models.StageReport{Stage: models.StageReconcile, AsOfDate: asOf}

	games, err := s.ledger.GamesOn(ctx, asOf)
	if err != nil {
		return report, err
	}

	for i := range games {
		game := &games[i]
		winner, ok := game.Winner()
		if !ok {
			report.Skip("not_final")
			continue
		}

		tag, err := s.pg.Exec(ctx, `
			UPDATE predictions
			SET actual_winner = $2,
				was_correct = (predicted_winner = $2),
				reconciled_at = now()
			WHERE game_id = $1 AND actual_winner IS NULL
		`, game.GameID, winner)
		if err != nil {
			s.logger.Errorw("Outcome reconciliation failed",
				"game_id", game.GameID, "error", err)
			report.Skip("error")
			continue
		}
		if tag.RowsAffected() == 0 {
			report.Skip("already_reconciled")
			continue
		}
		report.RowsWritten += int(tag.RowsAffected())
	}

	report.Duration = time.Since(start)
	s.logger.Infow("Outcomes reconciled",
		"as_of", DateKey(asOf),
		"updated", report.RowsWritten,
		"skipped", report.RowsSkipped,
	)
	return report, nil
}
