package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/models"
)

// qualityService runs declarative checks against a table partition and
// appends the results to the ClickHouse quality log. A failing check never
// rolls back written rows; it marks the partition unfit so downstream
// stages refuse to consume it.
type qualityService struct {
	pg          PgPool
	ch          driver.Conn
	validate    *validator.Validate
	logger      *zap.SugaredLogger
	maxFailRate float64
}

func NewQualityGateService(pg PgPool, ch driver.Conn, logger *zap.Logger, maxFailRate float64) QualityGateService {
	return &qualityService{
		pg:          pg,
		ch:          ch,
		validate:    validator.New(),
		logger:      logger.Sugar(),
		maxFailRate: maxFailRate,
	}
}

type qualityCheck struct {
	name string
	run  func(ctx context.Context, partition string) (failed, total uint64, err error)
}

func (s *qualityService) checksFor(table string) []qualityCheck {
	switch table {
	case "games":
		return []qualityCheck{
			{"final_games_have_scores", s.checkFinalScores},
			{"teams_are_distinct", s.checkDistinctTeams},
		}
	case "team_daily_stats":
		return []qualityCheck{
			{"one_row_per_team_per_date", s.checkNoDuplicateStats},
			{"record_adds_up", s.checkRecordConsistency},
		}
	case "feature_vectors":
		return []qualityCheck{
			{"win_pcts_in_range", s.checkVectorRanges},
		}
	case "predictions":
		return []qualityCheck{
			{"win_probability_in_range", s.checkProbabilityRange},
		}
	default:
		return nil
	}
}

func (s *qualityService) RunChecks(ctx context.Context, table, partition string) ([]models.QualityCheckResult, error) {
	checks := s.checksFor(table)
	if len(checks) == 0 {
		return nil, fmt.Errorf("no quality checks declared for table %q", table)
	}

	runID := uuid.NewString()
	now := time.Now().UTC()
	results := make([]models.QualityCheckResult, 0, len(checks))

	for _, check := range checks {
		failed, total, err := check.run(ctx, partition)
		if err != nil {
			return results, fmt.Errorf("quality check %s on %s/%s: %w",
				check.name, table, partition, err)
		}
		var rate float64
		if total > 0 {
			rate = float64(failed) / float64(total)
		}
		result := models.QualityCheckResult{
			CheckName:      check.name,
			TableName:      table,
			Partition:      partition,
			CheckedAt:      now,
			Passed:         rate <= s.maxFailRate,
			RecordsChecked: total,
			RecordsFailed:  failed,
			FailureRate:    rate,
			RunID:          runID,
		}
		if !result.Passed {
			s.logger.Warnw("Quality check failed",
				"check", check.name,
				"table", table,
				"partition", partition,
				"failed", failed,
				"total", total,
			)
		}
		results = append(results, result)
	}

	if err := s.appendResults(ctx, results); err != nil {
		return results, err
	}
	return results, nil
}

// appendResults writes one batch of immutable log rows to ClickHouse.
func (s *qualityService) appendResults(ctx context.Context, results []models.QualityCheckResult) error {
	batch, err := s.ch.PrepareBatch(ctx, `
		INSERT INTO hoops_quality.quality_check_results (
			checked_at, check_name, table_name, partition, passed,
			records_checked, records_failed, failure_rate, run_id
		)
	`)
	if err != nil {
		return fmt.Errorf("quality log batch prepare failed: %w", err)
	}
	for _, r := range results {
		passed := uint8(0)
		if r.Passed {
			passed = 1
		}
		if err := batch.Append(r.CheckedAt, r.CheckName, r.TableName, r.Partition,
			passed, r.RecordsChecked, r.RecordsFailed, r.FailureRate, r.RunID); err != nil {
			return fmt.Errorf("quality log append failed: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("quality log send failed: %w", err)
	}
	return nil
}

// GateStatus reports the latest verdict per declared check. Unknown until
// every check for the partition has at least one logged run.
func (s *qualityService) GateStatus(ctx context.Context, table, partition string) (string, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT check_name, argMax(passed, checked_at) AS latest
		FROM hoops_quality.quality_check_results
		WHERE table_name = ? AND partition = ?
		GROUP BY check_name
	`, table, partition)
	if err != nil {
		return models.GateStatusUnknown, fmt.Errorf("gate status query failed: %w", err)
	}
	defer rows.Close()

	seen := 0
	for rows.Next() {
		var name string
		var passed uint8
		if err := rows.Scan(&name, &passed); err != nil {
			return models.GateStatusUnknown, fmt.Errorf("gate status scan failed: %w", err)
		}
		seen++
		if passed == 0 {
			return models.GateStatusFailed, nil
		}
	}
	if err := rows.Err(); err != nil {
		return models.GateStatusUnknown, fmt.Errorf("gate status iteration failed: %w", err)
	}
	if seen < len(s.checksFor(table)) {
		return models.GateStatusUnknown, nil
	}
	return models.GateStatusPassed, nil
}

func (s *qualityService) checkFinalScores(ctx context.Context, partition string) (uint64, uint64, error) {
	var failed, total uint64
	err := s.pg.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE status = 'final'
				AND (home_score IS NULL OR away_score IS NULL)),
			count(*)
		FROM games
		WHERE game_date = $1::date
	`, partition).Scan(&failed, &total)
	return failed, total, err
}

func (s *qualityService) checkDistinctTeams(ctx context.Context, partition string) (uint64, uint64, error) {
	var failed, total uint64
	err := s.pg.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE home_team = away_team),
			count(*)
		FROM games
		WHERE game_date = $1::date
	`, partition).Scan(&failed, &total)
	return failed, total, err
}

func (s *qualityService) checkNoDuplicateStats(ctx context.Context, partition string) (uint64, uint64, error) {
	var failed, total uint64
	err := s.pg.QueryRow(ctx, `
		SELECT
			coalesce((
				SELECT sum(c - 1) FROM (
					SELECT count(*) AS c
					FROM team_daily_stats
					WHERE as_of_date = $1::date
					GROUP BY team_id
					HAVING count(*) > 1
				) dupes
			), 0),
			count(*)
		FROM team_daily_stats
		WHERE as_of_date = $1::date
	`, partition).Scan(&failed, &total)
	return failed, total, err
}

func (s *qualityService) checkRecordConsistency(ctx context.Context, partition string) (uint64, uint64, error) {
	var failed, total uint64
	err := s.pg.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE wins + losses <> games_played
				OR win_pct < 0 OR win_pct > 1),
			count(*)
		FROM team_daily_stats
		WHERE as_of_date = $1::date
	`, partition).Scan(&failed, &total)
	return failed, total, err
}

func (s *qualityService) checkVectorRanges(ctx context.Context, partition string) (uint64, uint64, error) {
	var failed, total uint64
	err := s.pg.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE home_win_pct < 0 OR home_win_pct > 1
				OR away_win_pct < 0 OR away_win_pct > 1
				OR home_fg_pct < 0 OR home_fg_pct > 1
				OR away_fg_pct < 0 OR away_fg_pct > 1),
			count(*)
		FROM feature_vectors
		WHERE game_date = $1::date
	`, partition).Scan(&failed, &total)
	return failed, total, err
}

// checkProbabilityRange validates each prediction row against the struct's
// declared constraints rather than re-stating them in SQL.
func (s *qualityService) checkProbabilityRange(ctx context.Context, partition string) (uint64, uint64, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT game_id, model_id, predicted_winner, win_probability
		FROM predictions
		WHERE game_date = $1::date
	`, partition)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	var failed, total uint64
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.GameID, &p.ModelID, &p.PredictedWinner, &p.WinProbability); err != nil {
			return failed, total, err
		}
		total++
		if err := s.validate.Struct(&p); err != nil {
			failed++
		}
	}
	return failed, total, rows.Err()
}
