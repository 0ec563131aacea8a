package logic

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/models"
)

func TestUpsertGamesDerivesOutcome(t *testing.T) {
	var captured []any
	pool := &MockPgPool{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			captured = args
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	s := NewGameLedgerService(pool, zap.NewNop())

	written, err := s.UpsertGames(context.Background(), []models.Game{
		finalGame("g1", day(0), "2025-26", "LAL", "BOS", 112, 104),
	})
	if err != nil {
		t.Fatalf("UpsertGames() error = %v", err)
	}
	if written != 1 {
		t.Fatalf("written = %d, want 1", written)
	}

	// Positional args: ..., winner_id ($13), point_differential ($14), total_score ($15).
	winner, ok := captured[12].(*string)
	if !ok || winner == nil || *winner != "LAL" {
		t.Errorf("winner_id = %v, want LAL", captured[12])
	}
	diff, ok := captured[13].(*int)
	if !ok || diff == nil || *diff != 8 {
		t.Errorf("point_differential = %v, want 8", captured[13])
	}
	total, ok := captured[14].(*int)
	if !ok || total == nil || *total != 216 {
		t.Errorf("total_score = %v, want 216", captured[14])
	}
}

func TestUpsertGamesClearsOutcomeForScheduled(t *testing.T) {
	var captured []any
	pool := &MockPgPool{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			captured = args
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	s := NewGameLedgerService(pool, zap.NewNop())

	stale := "LAL"
	game := models.Game{
		GameID: "g1", Date: day(3), Season: "2025-26",
		HomeTeam: "LAL", AwayTeam: "BOS",
		Status:   models.GameStatusScheduled,
		WinnerID: &stale,
	}
	if _, err := s.UpsertGames(context.Background(), []models.Game{game}); err != nil {
		t.Fatalf("UpsertGames() error = %v", err)
	}
	if w := captured[12].(*string); w != nil {
		t.Errorf("winner_id = %q, want nil (no usable result)", *w)
	}
}

func TestUpsertGamesRejectsIdenticalTeams(t *testing.T) {
	pool := &MockPgPool{}
	s := NewGameLedgerService(pool, zap.NewNop())

	written, err := s.UpsertGames(context.Background(), []models.Game{
		finalGame("g1", day(0), "2025-26", "LAL", "LAL", 100, 90),
	})
	if err != nil {
		t.Fatalf("UpsertGames() error = %v", err)
	}
	if written != 0 {
		t.Errorf("written = %d, want 0 (identical teams rejected)", written)
	}
	if len(pool.ExecCalls) != 0 {
		t.Errorf("Exec called %d times, want 0", len(pool.ExecCalls))
	}
}

func TestGetGamesScansRows(t *testing.T) {
	pool := &MockPgPool{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &MockPgRows{Data: [][]any{
				{"g1", day(0), "2025-26", "LAL", "BOS", 110, 100,
					nil, nil, nil, nil, "final", "LAL", 10, 210},
				{"g2", day(1), "2025-26", "GSW", "MIA", nil, nil,
					nil, nil, nil, nil, "scheduled", nil, nil, nil},
			}}, nil
		},
	}
	s := NewGameLedgerService(pool, zap.NewNop())

	games, err := s.GetGames(context.Background(), day(0), day(1))
	if err != nil {
		t.Fatalf("GetGames() error = %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("len = %d, want 2", len(games))
	}
	if winner, ok := games[0].Winner(); !ok || winner != "LAL" {
		t.Errorf("games[0].Winner() = %q, %v; want LAL, true", winner, ok)
	}
	if games[1].HomeScore != nil {
		t.Errorf("scheduled game has HomeScore = %v, want nil", *games[1].HomeScore)
	}
}

func TestGameIsFinalRejectsEqualScores(t *testing.T) {
	g := finalGame("g1", day(0), "2025-26", "LAL", "BOS", 100, 100)
	if g.IsFinal() {
		t.Error("IsFinal() = true for equal scores, want false")
	}
	if _, ok := g.Winner(); ok {
		t.Error("Winner() ok = true for equal scores, want false")
	}
}
