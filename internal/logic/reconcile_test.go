package logic

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/models"
)

func TestReconcileRunUpdatesFinalGames(t *testing.T) {
	ledger := &MockLedger{
		GamesOnFunc: func(ctx context.Context, date time.Time) ([]models.Game, error) {
			return []models.Game{
				finalGame("g1", date, "2025-26", "LAL", "BOS", 110, 100),
			}, nil
		},
	}
	var captured []any
	pool := &MockPgPool{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			captured = args
			return pgconn.NewCommandTag("UPDATE 2"), nil
		},
	}
	s := NewReconcileService(pool, ledger, zap.NewNop())

	report, err := s.Run(context.Background(), day(10))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Two models had predictions on the game; both rows updated.
	if report.RowsWritten != 2 {
		t.Errorf("RowsWritten = %d, want 2", report.RowsWritten)
	}
	if captured[1].(string) != "LAL" {
		t.Errorf("actual_winner arg = %v, want LAL", captured[1])
	}
}

func TestReconcileRunIsMonotonic(t *testing.T) {
	ledger := &MockLedger{
		GamesOnFunc: func(ctx context.Context, date time.Time) ([]models.Game, error) {
			return []models.Game{
				finalGame("g1", date, "2025-26", "LAL", "BOS", 110, 100),
			}, nil
		},
	}
	pool := &MockPgPool{
		// actual_winner already set; the guarded update touches nothing.
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}
	s := NewReconcileService(pool, ledger, zap.NewNop())

	report, err := s.Run(context.Background(), day(10))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.RowsWritten != 0 {
		t.Errorf("RowsWritten = %d, want 0", report.RowsWritten)
	}
	if report.SkipReasons["already_reconciled"] != 1 {
		t.Errorf("SkipReasons = %v, want already_reconciled:1", report.SkipReasons)
	}
}

func TestReconcileRunSkipsNonFinal(t *testing.T) {
	ledger := &MockLedger{
		GamesOnFunc: func(ctx context.Context, date time.Time) ([]models.Game, error) {
			return []models.Game{{
				GameID: "g1", Date: date, Season: "2025-26",
				HomeTeam: "LAL", AwayTeam: "BOS",
				Status: models.GameStatusScheduled,
			}}, nil
		},
	}
	pool := &MockPgPool{}
	s := NewReconcileService(pool, ledger, zap.NewNop())

	report, err := s.Run(context.Background(), day(10))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(pool.ExecCalls) != 0 {
		t.Errorf("updates = %d, want 0", len(pool.ExecCalls))
	}
	if report.SkipReasons["not_final"] != 1 {
		t.Errorf("SkipReasons = %v, want not_final:1", report.SkipReasons)
	}
}
