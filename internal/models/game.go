package models

import "time"

// Game lifecycle states. Final is terminal; postponed games re-enter as a
// new scheduled row under the same game_id once rescheduled.
const (
	GameStatusScheduled = "scheduled"
	GameStatusFinal     = "final"
	GameStatusPostponed = "postponed"
)

// Game is one row of the append-mostly game ledger. Scores are pointers
// because scheduled games have none; WinnerID, PointDifferential and
// TotalScore are derived at ingestion and never hand-set.
type Game struct {
	GameID            string     `json:"game_id"`
	Date              time.Time  `json:"game_date"`
	Season            string     `json:"season"`
	HomeTeam          string     `json:"home_team"`
	AwayTeam          string     `json:"away_team"`
	HomeScore         *int       `json:"home_score,omitempty"`
	AwayScore         *int       `json:"away_score,omitempty"`
	HomeFGMade        *int       `json:"home_fg_made,omitempty"`
	HomeFGAtt         *int       `json:"home_fg_att,omitempty"`
	AwayFGMade        *int       `json:"away_fg_made,omitempty"`
	AwayFGAtt         *int       `json:"away_fg_att,omitempty"`
	Status            string     `json:"status"`
	WinnerID          *string    `json:"winner_id,omitempty"`
	PointDifferential *int       `json:"point_differential,omitempty"`
	TotalScore        *int       `json:"total_score,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// IsFinal reports whether the game has a usable final result. A final
// status without both scores, or with equal scores, is not usable.
func (g *Game) IsFinal() bool {
	if g.Status != GameStatusFinal || g.HomeScore == nil || g.AwayScore == nil {
		return false
	}
	return *g.HomeScore != *g.AwayScore
}

// Winner returns the winning team for a usable final result.
func (g *Game) Winner() (string, bool) {
	if !g.IsFinal() {
		return "", false
	}
	if *g.HomeScore > *g.AwayScore {
		return g.HomeTeam, true
	}
	return g.AwayTeam, true
}

// Margin is the winner's margin of victory. Zero when the game has no
// usable result.
func (g *Game) Margin() int {
	if !g.IsFinal() {
		return 0
	}
	d := *g.HomeScore - *g.AwayScore
	if d < 0 {
		return -d
	}
	return d
}
