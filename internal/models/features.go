package models

import "time"

// FeatureVector is the fixed-schema model input for one game, joining both
// teams' daily stats, the head-to-head record, and rest flags as of the game
// date. Materialization is all-or-nothing: a row with Complete=false is
// excluded from training and serving.
//
// Rest days are pointers because season openers have no prior game; nil is
// the sentinel, never a fabricated zero.
type FeatureVector struct {
	GameID   string    `json:"game_id"`
	GameDate time.Time `json:"game_date"`
	Season   string    `json:"season"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`

	HomeWinPct       float64 `json:"home_win_pct"`
	HomeGamesPlayed  int     `json:"home_games_played"`
	HomeAvgPoints    float64 `json:"home_avg_points"`
	HomeAvgOppPoints float64 `json:"home_avg_opp_points"`
	HomePointDiff    float64 `json:"home_point_diff"`
	HomeFGPct        float64 `json:"home_fg_pct"`
	HomeLast5Wins    int     `json:"home_last5_wins"`
	HomeHomeWinPct   float64 `json:"home_home_win_pct"`

	AwayWinPct       float64 `json:"away_win_pct"`
	AwayGamesPlayed  int     `json:"away_games_played"`
	AwayAvgPoints    float64 `json:"away_avg_points"`
	AwayAvgOppPoints float64 `json:"away_avg_opp_points"`
	AwayPointDiff    float64 `json:"away_point_diff"`
	AwayFGPct        float64 `json:"away_fg_pct"`
	AwayLast5Wins    int     `json:"away_last5_wins"`
	AwayAwayWinPct   float64 `json:"away_away_win_pct"`

	H2HHomeWins int `json:"h2h_home_wins"`
	H2HAwayWins int `json:"h2h_away_wins"`
	H2HTotal    int `json:"h2h_total"`

	HomeRestDays   *int `json:"home_rest_days,omitempty"`
	AwayRestDays   *int `json:"away_rest_days,omitempty"`
	HomeBackToBack bool `json:"home_back_to_back"`
	AwayBackToBack bool `json:"away_back_to_back"`

	Complete  bool      `json:"complete"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
