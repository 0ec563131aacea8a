package logic

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/models"
)

const gameColumns = `game_id, game_date, season, home_team, away_team,
	home_score, away_score, home_fg_made, home_fg_att, away_fg_made, away_fg_att,
	status, winner_id, point_differential, total_score`

type gameLedgerService struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewGameLedgerService(pg PgPool, logger *zap.Logger) GameLedgerService {
	return &gameLedgerService{pg: pg, logger: logger.Sugar()}
}

// DateKey is the partition key format used for quality gates and caches.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// dateOnly normalizes to UTC midnight so day comparisons are exact.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *gameLedgerService) GetGames(ctx context.Context, from, to time.Time) ([]models.Game, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE game_date >= $1 AND game_date <= $2
		ORDER BY game_date, game_id
	`, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, fmt.Errorf("games query failed: %w", err)
	}
	return scanGames(rows)
}

func (s *gameLedgerService) GetTeamSchedule(ctx context.Context, teamID string, from, to time.Time) ([]models.Game, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE (home_team = $1 OR away_team = $1)
		  AND game_date >= $2 AND game_date <= $3
		ORDER BY game_date, game_id
	`, teamID, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, fmt.Errorf("team schedule query failed: %w", err)
	}
	return scanGames(rows)
}

func (s *gameLedgerService) FinalGamesBefore(ctx context.Context, asOf time.Time) ([]models.Game, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE game_date < $1 AND status = 'final'
		ORDER BY game_date, game_id
	`, dateOnly(asOf))
	if err != nil {
		return nil, fmt.Errorf("final games query failed: %w", err)
	}
	return scanGames(rows)
}

func (s *gameLedgerService) GamesOn(ctx context.Context, date time.Time) ([]models.Game, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE game_date = $1
		ORDER BY game_id
	`, dateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("games on date query failed: %w", err)
	}
	return scanGames(rows)
}

// UpsertGames is the ingestion boundary. The upsert only ever attaches final
// scores and derived outcome fields; identity attributes win on first write.
func (s *gameLedgerService) UpsertGames(ctx context.Context, games []models.Game) (int, error) {
	written := 0
	for i := range games {
		g := &games[i]
		if g.HomeTeam == g.AwayTeam {
			s.logger.Warnw("Rejecting game with identical teams", "game_id", g.GameID)
			continue
		}
		deriveOutcome(g)
		tag, err := s.pg.Exec(ctx, `
			INSERT INTO games (
				game_id, game_date, season, home_team, away_team,
				home_score, away_score, home_fg_made, home_fg_att,
				away_fg_made, away_fg_att, status, winner_id,
				point_differential, total_score, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now())
			ON CONFLICT (game_id) DO UPDATE SET
				home_score = EXCLUDED.home_score,
				away_score = EXCLUDED.away_score,
				home_fg_made = EXCLUDED.home_fg_made,
				home_fg_att = EXCLUDED.home_fg_att,
				away_fg_made = EXCLUDED.away_fg_made,
				away_fg_att = EXCLUDED.away_fg_att,
				status = EXCLUDED.status,
				winner_id = EXCLUDED.winner_id,
				point_differential = EXCLUDED.point_differential,
				total_score = EXCLUDED.total_score,
				updated_at = now()
		`, g.GameID, dateOnly(g.Date), g.Season, g.HomeTeam, g.AwayTeam,
			g.HomeScore, g.AwayScore, g.HomeFGMade, g.HomeFGAtt,
			g.AwayFGMade, g.AwayFGAtt, g.Status, g.WinnerID,
			g.PointDifferential, g.TotalScore)
		if err != nil {
			return written, fmt.Errorf("game upsert failed for %s: %w", g.GameID, err)
		}
		written += int(tag.RowsAffected())
	}
	return written, nil
}

// deriveOutcome fills winner_id, point_differential and total_score for
// usable final results, and clears them otherwise.
func deriveOutcome(g *models.Game) {
	g.WinnerID = nil
	g.PointDifferential = nil
	g.TotalScore = nil
	if winner, ok := g.Winner(); ok {
		diff := g.Margin()
		total := *g.HomeScore + *g.AwayScore
		g.WinnerID = &winner
		g.PointDifferential = &diff
		g.TotalScore = &total
	}
}

func scanGames(rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}) ([]models.Game, error) {
	defer rows.Close()
	games := []models.Game{}
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(
			&g.GameID, &g.Date, &g.Season, &g.HomeTeam, &g.AwayTeam,
			&g.HomeScore, &g.AwayScore, &g.HomeFGMade, &g.HomeFGAtt,
			&g.AwayFGMade, &g.AwayFGAtt, &g.Status, &g.WinnerID,
			&g.PointDifferential, &g.TotalScore,
		); err != nil {
			return nil, fmt.Errorf("game scan failed: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("game row iteration failed: %w", err)
	}
	return games, nil
}
