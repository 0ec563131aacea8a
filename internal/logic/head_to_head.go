package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/models"
)

// headToHeadService resolves historical matchup records. The record is a
// pure function of the ledger; Redis holds a keyed cache that is safe to
// evict and recompute at any time, never a source of truth.
type headToHeadService struct {
	pg     PgPool
	cache  RedisClient
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewHeadToHeadService(pg PgPool, cache RedisClient, ttl time.Duration, logger *zap.Logger) HeadToHeadService {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &headToHeadService{pg: pg, cache: cache, ttl: ttl, logger: logger.Sugar()}
}

func h2hCacheKey(teamA, teamB string, asOf time.Time) string {
	return "h2h:" + teamA + ":" + teamB + ":" + DateKey(asOf)
}

func (s *headToHeadService) Record(ctx context.Context, teamA, teamB string, asOf time.Time) (*models.HeadToHeadRecord, error) {
	asOf = dateOnly(asOf)
	key := h2hCacheKey(teamA, teamB, asOf)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var rec models.HeadToHeadRecord
			if json.Unmarshal(data, &rec) == nil {
				return &rec, nil
			}
		} else if err != redis.Nil {
			s.logger.Warnw("H2H cache read failed", "key", key, "error", err)
		}
	}

	rec, err := s.compute(ctx, teamA, teamB, asOf)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(rec); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl).Err(); err != nil {
				s.logger.Warnw("H2H cache write failed", "key", key, "error", err)
			}
		}
	}
	return rec, nil
}

func (s *headToHeadService) compute(ctx context.Context, teamA, teamB string, asOf time.Time) (*models.HeadToHeadRecord, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT winner_id
		FROM games
		WHERE game_date < $3
		  AND status = 'final'
		  AND winner_id IS NOT NULL
		  AND ((home_team = $1 AND away_team = $2)
		    OR (home_team = $2 AND away_team = $1))
	`, teamA, teamB, asOf)
	if err != nil {
		return nil, fmt.Errorf("h2h query failed: %w", err)
	}
	defer rows.Close()

	rec := &models.HeadToHeadRecord{TeamA: teamA, TeamB: teamB, AsOfDate: asOf}
	for rows.Next() {
		var winner string
		if err := rows.Scan(&winner); err != nil {
			return nil, fmt.Errorf("h2h scan failed: %w", err)
		}
		rec.TotalGames++
		switch winner {
		case teamA:
			rec.TeamAWins++
		case teamB:
			rec.TeamBWins++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("h2h row iteration failed: %w", err)
	}
	return rec, nil
}
