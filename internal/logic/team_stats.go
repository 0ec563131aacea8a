package logic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hoopsight/predictions-api/internal/models"
)

// teamStatsService is the rolling-stat aggregator. It replays each team's
// final games in date order and snapshots running tallies strictly before
// the as-of date, so a row for date D never sees a game played on D.
type teamStatsService struct {
	pg      PgPool
	ledger  GameLedgerService
	logger  *zap.SugaredLogger
	window  int
	workers int
}

func NewTeamStatsService(pg PgPool, ledger GameLedgerService, logger *zap.Logger, window, workers int) TeamStatsService {
	if window <= 0 {
		window = 5
	}
	if workers <= 0 {
		workers = 4
	}
	return &teamStatsService{
		pg:      pg,
		ledger:  ledger,
		logger:  logger.Sugar(),
		window:  window,
		workers: workers,
	}
}

// scoringWindow is the trailing game count for the rolling scoring form.
const scoringWindow = 10

// teamGameView is one game from a single team's perspective.
type teamGameView struct {
	date      time.Time
	season    string
	isHome    bool
	points    int
	oppPoints int
	fgMade    int
	fgAtt     int
	hasFG     bool
	won       bool
}

// Run computes one TeamDailyStat per team for asOf. Teams appearing only in
// the day's schedule still get a row (possibly with games_played = 0): a
// thin ledger means low confidence downstream, not an error.
func (s *teamStatsService) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	start := time.Now()
	asOf = dateOnly(asOf)
	report := &models.StageReport{Stage: models.StageTeamStats, AsOfDate: asOf}

	history, err := s.ledger.FinalGamesBefore(ctx, asOf)
	if err != nil {
		return report, err
	}
	today, err := s.ledger.GamesOn(ctx, asOf)
	if err != nil {
		return report, err
	}

	teams := make(map[string]struct{})
	for _, g := range history {
		teams[g.HomeTeam] = struct{}{}
		teams[g.AwayTeam] = struct{}{}
	}
	for _, g := range today {
		teams[g.HomeTeam] = struct{}{}
		teams[g.AwayTeam] = struct{}{}
	}

	stats := BuildSnapshots(history, teams, asOf, s.window)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	written := make(chan int, len(stats))
	for i := range stats {
		stat := stats[i]
		g.Go(func() error {
			if err := s.upsert(gctx, &stat); err != nil {
				return err
			}
			written <- 1
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	close(written)
	for range written {
		report.RowsWritten++
	}

	report.Duration = time.Since(start)
	s.logger.Infow("Team stats computed",
		"as_of", DateKey(asOf),
		"teams", len(stats),
		"duration", report.Duration,
	)
	return report, nil
}

// BuildSnapshots is the pure aggregation core: for every team in teams it
// produces the TeamDailyStat at asOf from final games strictly before asOf.
// Deterministic for a fixed ledger prefix.
func BuildSnapshots(history []models.Game, teams map[string]struct{}, asOf time.Time, window int) []models.TeamDailyStat {
	views := make(map[string][]teamGameView, len(teams))
	for _, g := range history {
		if !g.IsFinal() || !g.Date.Before(asOf) {
			continue
		}
		winner, _ := g.Winner()
		views[g.HomeTeam] = append(views[g.HomeTeam], teamGameView{
			date:      g.Date,
			season:    g.Season,
			isHome:    true,
			points:    *g.HomeScore,
			oppPoints: *g.AwayScore,
			fgMade:    intOrZero(g.HomeFGMade),
			fgAtt:     intOrZero(g.HomeFGAtt),
			hasFG:     g.HomeFGMade != nil && g.HomeFGAtt != nil,
			won:       winner == g.HomeTeam,
		})
		views[g.AwayTeam] = append(views[g.AwayTeam], teamGameView{
			date:      g.Date,
			season:    g.Season,
			isHome:    false,
			points:    *g.AwayScore,
			oppPoints: *g.HomeScore,
			fgMade:    intOrZero(g.AwayFGMade),
			fgAtt:     intOrZero(g.AwayFGAtt),
			hasFG:     g.AwayFGMade != nil && g.AwayFGAtt != nil,
			won:       winner == g.AwayTeam,
		})
	}

	stats := make([]models.TeamDailyStat, 0, len(teams))
	for team := range teams {
		stats = append(stats, computeStat(team, views[team], asOf, window))
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].TeamID < stats[j].TeamID })
	return stats
}

// computeStat folds one team's chronological games into a snapshot.
// Season-to-date tallies reset at season boundaries; the trailing window is
// valid with fewer than `window` games (reduced sample, not padding).
func computeStat(team string, games []teamGameView, asOf time.Time, window int) models.TeamDailyStat {
	sort.Slice(games, func(i, j int) bool { return games[i].date.Before(games[j].date) })

	stat := models.TeamDailyStat{TeamID: team, AsOfDate: asOf}
	if len(games) == 0 {
		return stat
	}

	// Season-to-date scope: only games from the team's current season.
	season := games[len(games)-1].season
	stat.Season = season

	var pts, oppPts, fgMade, fgAtt int
	var recent []bool
	var scoring []teamGameView
	for _, g := range games {
		if g.season != season {
			continue
		}
		stat.GamesPlayed++
		pts += g.points
		oppPts += g.oppPoints
		if g.hasFG {
			fgMade += g.fgMade
			fgAtt += g.fgAtt
		}
		if g.won {
			stat.Wins++
			if g.isHome {
				stat.HomeWins++
			} else {
				stat.AwayWins++
			}
		} else {
			stat.Losses++
			if g.isHome {
				stat.HomeLosses++
			} else {
				stat.AwayLosses++
			}
		}
		recent = append(recent, g.won)
		if len(recent) > window {
			recent = recent[1:]
		}
		scoring = append(scoring, g)
		if len(scoring) > scoringWindow {
			scoring = scoring[1:]
		}
	}

	if stat.GamesPlayed > 0 {
		n := float64(stat.GamesPlayed)
		stat.WinPct = float64(stat.Wins) / n
		stat.AvgPoints = float64(pts) / n
		stat.AvgOppPoints = float64(oppPts) / n
		stat.PointDiff = stat.AvgPoints - stat.AvgOppPoints
	}
	if fgAtt > 0 {
		stat.FGPct = float64(fgMade) / float64(fgAtt)
	}
	for _, won := range recent {
		if won {
			stat.Last5Wins++
		} else {
			stat.Last5Losses++
		}
	}
	if len(scoring) > 0 {
		var rPts, rOpp int
		for _, g := range scoring {
			rPts += g.points
			rOpp += g.oppPoints
		}
		n := float64(len(scoring))
		stat.Last10AvgPoints = float64(rPts) / n
		stat.Last10AvgOppPoints = float64(rOpp) / n
	}
	return stat
}

// upsert overwrites the (team_id, as_of_date) row; reruns over an unchanged
// ledger prefix converge to identical rows.
func (s *teamStatsService) upsert(ctx context.Context, stat *models.TeamDailyStat) error {
	_, err := s.pg.Exec(ctx, `
		INSERT INTO team_daily_stats (
			team_id, as_of_date, season, games_played, wins, losses, win_pct,
			avg_points, avg_opp_points, point_diff,
			last10_avg_points, last10_avg_opp_points, fg_pct,
			home_wins, home_losses, away_wins, away_losses,
			last5_wins, last5_losses, computed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,now())
		ON CONFLICT (team_id, as_of_date) DO UPDATE SET
			season = EXCLUDED.season,
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			win_pct = EXCLUDED.win_pct,
			avg_points = EXCLUDED.avg_points,
			avg_opp_points = EXCLUDED.avg_opp_points,
			point_diff = EXCLUDED.point_diff,
			last10_avg_points = EXCLUDED.last10_avg_points,
			last10_avg_opp_points = EXCLUDED.last10_avg_opp_points,
			fg_pct = EXCLUDED.fg_pct,
			home_wins = EXCLUDED.home_wins,
			home_losses = EXCLUDED.home_losses,
			away_wins = EXCLUDED.away_wins,
			away_losses = EXCLUDED.away_losses,
			last5_wins = EXCLUDED.last5_wins,
			last5_losses = EXCLUDED.last5_losses,
			computed_at = now()
	`, stat.TeamID, stat.AsOfDate, stat.Season, stat.GamesPlayed, stat.Wins,
		stat.Losses, stat.WinPct, stat.AvgPoints, stat.AvgOppPoints,
		stat.PointDiff, stat.Last10AvgPoints, stat.Last10AvgOppPoints,
		stat.FGPct, stat.HomeWins, stat.HomeLosses,
		stat.AwayWins, stat.AwayLosses, stat.Last5Wins, stat.Last5Losses)
	if err != nil {
		return fmt.Errorf("team stat upsert failed for %s: %w", stat.TeamID, err)
	}
	return nil
}

func (s *teamStatsService) GetStat(ctx context.Context, teamID string, asOf time.Time) (*models.TeamDailyStat, error) {
	var stat models.TeamDailyStat
	err := s.pg.QueryRow(ctx, `
		SELECT team_id, as_of_date, season, games_played, wins, losses, win_pct,
			avg_points, avg_opp_points, point_diff,
			last10_avg_points, last10_avg_opp_points, fg_pct,
			home_wins, home_losses, away_wins, away_losses,
			last5_wins, last5_losses
		FROM team_daily_stats
		WHERE team_id = $1 AND as_of_date = $2
	`, teamID, dateOnly(asOf)).Scan(
		&stat.TeamID, &stat.AsOfDate, &stat.Season, &stat.GamesPlayed,
		&stat.Wins, &stat.Losses, &stat.WinPct, &stat.AvgPoints,
		&stat.AvgOppPoints, &stat.PointDiff,
		&stat.Last10AvgPoints, &stat.Last10AvgOppPoints, &stat.FGPct,
		&stat.HomeWins, &stat.HomeLosses, &stat.AwayWins, &stat.AwayLosses,
		&stat.Last5Wins, &stat.Last5Losses,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("team stat %s@%s: %w", teamID, DateKey(asOf), ErrNotFound)
		}
		return nil, fmt.Errorf("team stat query failed: %w", err)
	}
	return &stat, nil
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
