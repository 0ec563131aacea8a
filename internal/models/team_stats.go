package models

import "time"

// TeamDailyStat is the point-in-time form snapshot for one team. A row for
// as_of_date D is computed strictly from final games with date < D, so the
// same ledger prefix always reproduces the same row.
type TeamDailyStat struct {
	TeamID       string    `json:"team_id"`
	AsOfDate     time.Time `json:"as_of_date"`
	Season       string    `json:"season"`
	GamesPlayed  int       `json:"games_played"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	WinPct       float64   `json:"win_pct"`
	AvgPoints    float64   `json:"avg_points"`
	AvgOppPoints float64   `json:"avg_opp_points"`
	PointDiff    float64   `json:"point_diff"`
	// Rolling scoring form over the trailing ten games, alongside the
	// season-to-date means above.
	Last10AvgPoints    float64 `json:"last10_avg_points"`
	Last10AvgOppPoints float64 `json:"last10_avg_opp_points"`
	FGPct        float64   `json:"fg_pct"`
	HomeWins     int       `json:"home_wins"`
	HomeLosses   int       `json:"home_losses"`
	AwayWins     int       `json:"away_wins"`
	AwayLosses   int       `json:"away_losses"`
	Last5Wins    int       `json:"last5_wins"`
	Last5Losses  int       `json:"last5_losses"`
}

// HomeWinPct is the team's win fraction in home games only.
func (s *TeamDailyStat) HomeWinPct() float64 {
	n := s.HomeWins + s.HomeLosses
	if n == 0 {
		return 0
	}
	return float64(s.HomeWins) / float64(n)
}

// AwayWinPct is the team's win fraction in away games only.
func (s *TeamDailyStat) AwayWinPct() float64 {
	n := s.AwayWins + s.AwayLosses
	if n == 0 {
		return 0
	}
	return float64(s.AwayWins) / float64(n)
}

// HeadToHeadRecord summarizes the historical matchup between two teams as of
// a date boundary, from team A's perspective.
type HeadToHeadRecord struct {
	TeamA      string    `json:"team_a"`
	TeamB      string    `json:"team_b"`
	AsOfDate   time.Time `json:"as_of_date"`
	TeamAWins  int       `json:"team_a_wins"`
	TeamBWins  int       `json:"team_b_wins"`
	TotalGames int       `json:"total_games"`
}

// RestProfile captures fatigue inputs for one team on one date.
// HasPriorGame is false at season start; RestDays is meaningless then and
// must not be read as a real rest value.
type RestProfile struct {
	TeamID       string    `json:"team_id"`
	AsOfDate     time.Time `json:"as_of_date"`
	HasPriorGame bool      `json:"has_prior_game"`
	RestDays     int       `json:"rest_days"`
	BackToBack   bool      `json:"back_to_back"`
}
