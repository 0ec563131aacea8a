package logic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hoopsight/predictions-api/internal/models"
)

// featureService joins team stats, head-to-head and rest inputs into one
// feature vector per game. Materialization is all-or-nothing: a game with
// any missing input writes no row and is retried on the next run.
type featureService struct {
	pg      PgPool
	ledger  GameLedgerService
	stats   TeamStatsService
	h2h     HeadToHeadService
	rest    RestService
	logger  *zap.SugaredLogger
	workers int
}

func NewFeatureService(pg PgPool, ledger GameLedgerService, stats TeamStatsService, h2h HeadToHeadService, rest RestService, logger *zap.Logger, workers int) FeatureService {
	if workers <= 0 {
		workers = 4
	}
	return &featureService{
		pg:      pg,
		ledger:  ledger,
		stats:   stats,
		h2h:     h2h,
		rest:    rest,
		logger:  logger.Sugar(),
		workers: workers,
	}
}

func (s *featureService) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	start := time.Now()
	asOf = dateOnly(asOf)
	report := &models.StageReport{Stage: models.StageFeatures, AsOfDate: asOf}

	games, err := s.ledger.GamesOn(ctx, asOf)
	if err != nil {
		return report, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range games {
		game := games[i]
		g.Go(func() error {
			written, reason, err := s.materialize(gctx, &game)
			if err != nil {
				// Per-record failures are isolated; they never abort the batch.
				s.logger.Errorw("Feature materialization failed",
					"game_id", game.GameID, "error", err)
				mu.Lock()
				report.Skip("error")
				mu.Unlock()
				return nil
			}
			mu.Lock()
			if written {
				report.RowsWritten++
			} else {
				report.Skip(reason)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	report.Duration = time.Since(start)
	s.logger.Infow("Feature vectors materialized",
		"as_of", DateKey(asOf),
		"written", report.RowsWritten,
		"skipped", report.RowsSkipped,
	)
	return report, nil
}

// materialize builds and persists one game's vector. Returns written=false
// with a reason for all the non-error skip cases.
func (s *featureService) materialize(ctx context.Context, game *models.Game) (bool, string, error) {
	if game.Status == models.GameStatusPostponed {
		return false, "postponed", nil
	}

	// Once a final game's vector has been consumed by a prediction it is
	// frozen: re-materializing would let training-time and prediction-time
	// views drift apart. Vectors for still-scheduled games stay refreshable.
	if game.Status == models.GameStatusFinal {
		consumed, err := s.hasPrediction(ctx, game.GameID)
		if err != nil {
			return false, "", err
		}
		if consumed {
			exists, err := s.vectorExists(ctx, game.GameID)
			if err != nil {
				return false, "", err
			}
			if exists {
				return false, "frozen", nil
			}
		}
	}

	homeStat, err := s.stats.GetStat(ctx, game.HomeTeam, game.Date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, "missing_home_stats", nil
		}
		return false, "", err
	}
	awayStat, err := s.stats.GetStat(ctx, game.AwayTeam, game.Date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, "missing_away_stats", nil
		}
		return false, "", err
	}
	h2h, err := s.h2h.Record(ctx, game.HomeTeam, game.AwayTeam, game.Date)
	if err != nil {
		return false, "", err
	}
	homeRest, err := s.rest.Profile(ctx, game.HomeTeam, game.Date)
	if err != nil {
		return false, "", err
	}
	awayRest, err := s.rest.Profile(ctx, game.AwayTeam, game.Date)
	if err != nil {
		return false, "", err
	}

	fv := buildVector(game, homeStat, awayStat, h2h, homeRest, awayRest)
	if err := s.upsert(ctx, fv); err != nil {
		return false, "", err
	}
	return true, "", nil
}

// buildVector assembles the immutable feature row. All required inputs are
// present by the time this is called, so the vector is complete.
func buildVector(game *models.Game, home, away *models.TeamDailyStat, h2h *models.HeadToHeadRecord, homeRest, awayRest *models.RestProfile) *models.FeatureVector {
	fv := &models.FeatureVector{
		GameID:   game.GameID,
		GameDate: game.Date,
		Season:   game.Season,
		HomeTeam: game.HomeTeam,
		AwayTeam: game.AwayTeam,

		HomeWinPct:       home.WinPct,
		HomeGamesPlayed:  home.GamesPlayed,
		HomeAvgPoints:    home.AvgPoints,
		HomeAvgOppPoints: home.AvgOppPoints,
		HomePointDiff:    home.PointDiff,
		HomeFGPct:        home.FGPct,
		HomeLast5Wins:    home.Last5Wins,
		HomeHomeWinPct:   home.HomeWinPct(),

		AwayWinPct:       away.WinPct,
		AwayGamesPlayed:  away.GamesPlayed,
		AwayAvgPoints:    away.AvgPoints,
		AwayAvgOppPoints: away.AvgOppPoints,
		AwayPointDiff:    away.PointDiff,
		AwayFGPct:        away.FGPct,
		AwayLast5Wins:    away.Last5Wins,
		AwayAwayWinPct:   away.AwayWinPct(),

		H2HHomeWins: h2h.TeamAWins,
		H2HAwayWins: h2h.TeamBWins,
		H2HTotal:    h2h.TotalGames,

		HomeBackToBack: homeRest.BackToBack,
		AwayBackToBack: awayRest.BackToBack,

		Complete: true,
	}
	if homeRest.HasPriorGame {
		d := homeRest.RestDays
		fv.HomeRestDays = &d
	}
	if awayRest.HasPriorGame {
		d := awayRest.RestDays
		fv.AwayRestDays = &d
	}
	return fv
}

func (s *featureService) upsert(ctx context.Context, fv *models.FeatureVector) error {
	_, err := s.pg.Exec(ctx, `
		INSERT INTO feature_vectors (
			game_id, game_date, season, home_team, away_team,
			home_win_pct, home_games_played, home_avg_points, home_avg_opp_points,
			home_point_diff, home_fg_pct, home_last5_wins, home_home_win_pct,
			away_win_pct, away_games_played, away_avg_points, away_avg_opp_points,
			away_point_diff, away_fg_pct, away_last5_wins, away_away_win_pct,
			h2h_home_wins, h2h_away_wins, h2h_total,
			home_rest_days, away_rest_days, home_back_to_back, away_back_to_back,
			complete, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
			$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,now(),now()
		)
		ON CONFLICT (game_id) DO UPDATE SET
			home_win_pct = EXCLUDED.home_win_pct,
			home_games_played = EXCLUDED.home_games_played,
			home_avg_points = EXCLUDED.home_avg_points,
			home_avg_opp_points = EXCLUDED.home_avg_opp_points,
			home_point_diff = EXCLUDED.home_point_diff,
			home_fg_pct = EXCLUDED.home_fg_pct,
			home_last5_wins = EXCLUDED.home_last5_wins,
			home_home_win_pct = EXCLUDED.home_home_win_pct,
			away_win_pct = EXCLUDED.away_win_pct,
			away_games_played = EXCLUDED.away_games_played,
			away_avg_points = EXCLUDED.away_avg_points,
			away_avg_opp_points = EXCLUDED.away_avg_opp_points,
			away_point_diff = EXCLUDED.away_point_diff,
			away_fg_pct = EXCLUDED.away_fg_pct,
			away_last5_wins = EXCLUDED.away_last5_wins,
			away_away_win_pct = EXCLUDED.away_away_win_pct,
			h2h_home_wins = EXCLUDED.h2h_home_wins,
			h2h_away_wins = EXCLUDED.h2h_away_wins,
			h2h_total = EXCLUDED.h2h_total,
			home_rest_days = EXCLUDED.home_rest_days,
			away_rest_days = EXCLUDED.away_rest_days,
			home_back_to_back = EXCLUDED.home_back_to_back,
			away_back_to_back = EXCLUDED.away_back_to_back,
			complete = EXCLUDED.complete,
			updated_at = now()
	`, fv.GameID, dateOnly(fv.GameDate), fv.Season, fv.HomeTeam, fv.AwayTeam,
		fv.HomeWinPct, fv.HomeGamesPlayed, fv.HomeAvgPoints, fv.HomeAvgOppPoints,
		fv.HomePointDiff, fv.HomeFGPct, fv.HomeLast5Wins, fv.HomeHomeWinPct,
		fv.AwayWinPct, fv.AwayGamesPlayed, fv.AwayAvgPoints, fv.AwayAvgOppPoints,
		fv.AwayPointDiff, fv.AwayFGPct, fv.AwayLast5Wins, fv.AwayAwayWinPct,
		fv.H2HHomeWins, fv.H2HAwayWins, fv.H2HTotal,
		fv.HomeRestDays, fv.AwayRestDays, fv.HomeBackToBack, fv.AwayBackToBack,
		fv.Complete)
	if err != nil {
		return fmt.Errorf("feature vector upsert failed for %s: %w", fv.GameID, err)
	}
	return nil
}

func (s *featureService) hasPrediction(ctx context.Context, gameID string) (bool, error) {
	var exists bool
	err := s.pg.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM predictions WHERE game_id = $1)`,
		gameID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("prediction existence check failed: %w", err)
	}
	return exists, nil
}

func (s *featureService) vectorExists(ctx context.Context, gameID string) (bool, error) {
	var exists bool
	err := s.pg.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM feature_vectors WHERE game_id = $1)`,
		gameID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("vector existence check failed: %w", err)
	}
	return exists, nil
}

func (s *featureService) GetVector(ctx context.Context, gameID string) (*models.FeatureVector, error) {
	var fv models.FeatureVector
	err := s.pg.QueryRow(ctx, `
		SELECT game_id, game_date, season, home_team, away_team,
			home_win_pct, home_games_played, home_avg_points, home_avg_opp_points,
			home_point_diff, home_fg_pct, home_last5_wins, home_home_win_pct,
			away_win_pct, away_games_played, away_avg_points, away_avg_opp_points,
			away_point_diff, away_fg_pct, away_last5_wins, away_away_win_pct,
			h2h_home_wins, h2h_away_wins, h2h_total,
			home_rest_days, away_rest_days, home_back_to_back, away_back_to_back,
			complete, created_at, updated_at
		FROM feature_vectors
		WHERE game_id = $1
	`, gameID).Scan(
		&fv.GameID, &fv.GameDate, &fv.Season, &fv.HomeTeam, &fv.AwayTeam,
		&fv.HomeWinPct, &fv.HomeGamesPlayed, &fv.HomeAvgPoints, &fv.HomeAvgOppPoints,
		&fv.HomePointDiff, &fv.HomeFGPct, &fv.HomeLast5Wins, &fv.HomeHomeWinPct,
		&fv.AwayWinPct, &fv.AwayGamesPlayed, &fv.AwayAvgPoints, &fv.AwayAvgOppPoints,
		&fv.AwayPointDiff, &fv.AwayFGPct, &fv.AwayLast5Wins, &fv.AwayAwayWinPct,
		&fv.H2HHomeWins, &fv.H2HAwayWins, &fv.H2HTotal,
		&fv.HomeRestDays, &fv.AwayRestDays, &fv.HomeBackToBack, &fv.AwayBackToBack,
		&fv.Complete, &fv.CreatedAt, &fv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("feature vector %s: %w", gameID, ErrNotFound)
		}
		return nil, fmt.Errorf("feature vector query failed: %w", err)
	}
	return &fv, nil
}
