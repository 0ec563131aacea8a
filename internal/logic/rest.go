package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hoopsight/predictions-api/internal/models"
)

// restService computes days of rest and back-to-back flags. A team with no
// prior game gets the HasPriorGame=false sentinel; fabricating a rest value
// of 0 or 1 would feed models a false fatigue signal.
type restService struct {
	pg        PgPool
	maxB2BGap int
}

func NewRestService(pg PgPool, maxB2BGap int) RestService {
	if maxB2BGap <= 0 {
		maxB2BGap = 1
	}
	return &restService{pg: pg, maxB2BGap: maxB2BGap}
}

func (s *restService) Profile(ctx context.Context, teamID string, asOf time.Time) (*models.RestProfile, error) {
	asOf = dateOnly(asOf)
	profile := &models.RestProfile{TeamID: teamID, AsOfDate: asOf}

	var lastGame time.Time
	err := s.pg.QueryRow(ctx, `
		SELECT game_date
		FROM games
		WHERE (home_team = $1 OR away_team = $1)
		  AND game_date < $2
		  AND status = 'final'
		ORDER BY game_date DESC
		LIMIT 1
	`, teamID, asOf).Scan(&lastGame)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Season start: no prior game, sentinel profile.
			return profile, nil
		}
		return nil, fmt.Errorf("rest query failed for %s: %w", teamID, err)
	}

	profile.HasPriorGame = true
	profile.RestDays = int(asOf.Sub(dateOnly(lastGame)).Hours() / 24)
	profile.BackToBack = profile.RestDays <= s.maxB2BGap
	return profile, nil
}
