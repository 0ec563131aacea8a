package logic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/models"
)

// PredictionSample is one reconciled prediction flattened for metric math.
type PredictionSample struct {
	WinProbability float64 // confidence in the predicted winner
	PredictedHome  bool
	ActualHome     bool
	WasCorrect     bool
}

// HomeProb converts winner-relative confidence into the probability that
// the home team wins, the positive class for every threshold metric here.
func (s PredictionSample) HomeProb() float64 {
	if s.PredictedHome {
		return s.WinProbability
	}
	return 1 - s.WinProbability
}

// metricsService rolls reconciled predictions up into per-model metrics.
// Pure and recomputable; each call writes exactly one model_metrics row.
type metricsService struct {
	pg       PgPool
	registry ModelRegistryService
	logger   *zap.SugaredLogger
	bins     int
}

func NewMetricsService(pg PgPool, registry ModelRegistryService, logger *zap.Logger, bins int) MetricsService {
	if bins <= 0 {
		bins = 10
	}
	return &metricsService{pg: pg, registry: registry, logger: logger.Sugar(), bins: bins}
}

func (s *metricsService) Run(ctx context.Context, asOf time.Time) (*models.StageReport, error) {
	start := time.Now()
	asOf = dateOnly(asOf)
	report := &models.StageReport{Stage: models.StageMetrics, AsOfDate: asOf}

	active, err := s.registry.GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveModel) {
			report.Skip("no_active_model")
			report.Duration = time.Since(start)
			return report, ErrNoActiveModel
		}
		return report, err
	}

	for _, period := range []string{models.PeriodWeek, models.PeriodMonth, models.PeriodSeason} {
		if _, err := s.Compute(ctx, active.ID, asOf, period); err != nil {
			s.logger.Errorw("Metric computation failed",
				"model_id", active.ID, "period", period, "error", err)
			report.Skip("error")
			continue
		}
		report.RowsWritten++
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (s *metricsService) Compute(ctx context.Context, modelID string, evalDate time.Time, period string) (*models.ModelMetric, error) {
	evalDate = dateOnly(evalDate)

	samples, err := s.loadSamples(ctx, modelID, evalDate, period)
	if err != nil {
		return nil, err
	}

	metric := ComputeMetrics(samples, s.bins)
	metric.ModelID = modelID
	metric.EvaluationDate = evalDate
	metric.EvaluationPeriod = period

	_, err = s.pg.Exec(ctx, `
		INSERT INTO model_metrics (
			model_id, evaluation_date, evaluation_period, games_evaluated,
			accuracy, precision, recall, f1, roc_auc, mean_confidence,
			calibration_error, computed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
		ON CONFLICT (model_id, evaluation_date, evaluation_period) DO UPDATE SET
			games_evaluated = EXCLUDED.games_evaluated,
			accuracy = EXCLUDED.accuracy,
			precision = EXCLUDED.precision,
			recall = EXCLUDED.recall,
			f1 = EXCLUDED.f1,
			roc_auc = EXCLUDED.roc_auc,
			mean_confidence = EXCLUDED.mean_confidence,
			calibration_error = EXCLUDED.calibration_error,
			computed_at = now()
	`, metric.ModelID, metric.EvaluationDate, metric.EvaluationPeriod,
		metric.GamesEvaluated, metric.Accuracy, metric.Precision, metric.Recall,
		metric.F1, metric.ROCAUC, metric.MeanConfidence, metric.CalibrationError)
	if err != nil {
		return nil, fmt.Errorf("model metric upsert failed: %w", err)
	}
	return &metric, nil
}

// loadSamples fetches only reconciled predictions: a still-scheduled game
// never contributes to metrics.
func (s *metricsService) loadSamples(ctx context.Context, modelID string, evalDate time.Time, period string) ([]PredictionSample, error) {
	query := `
		SELECT p.win_probability, p.predicted_winner, p.actual_winner, g.home_team
		FROM predictions p
		JOIN games g ON g.game_id = p.game_id
		WHERE p.model_id = $1
		  AND p.was_correct IS NOT NULL
		  AND p.game_date <= $2`
	args := []any{modelID, evalDate}

	switch period {
	case models.PeriodWeek:
		query += ` AND p.game_date > $3`
		args = append(args, evalDate.AddDate(0, 0, -7))
	case models.PeriodMonth:
		query += ` AND p.game_date > $3`
		args = append(args, evalDate.AddDate(0, 0, -30))
	case models.PeriodSeason:
		season, err := s.currentSeason(ctx, evalDate)
		if err != nil {
			return nil, err
		}
		if season == "" {
			return nil, nil
		}
		query += ` AND g.season = $3`
		args = append(args, season)
	default:
		return nil, fmt.Errorf("unknown evaluation period %q", period)
	}

	rows, err := s.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("metric samples query failed: %w", err)
	}
	defer rows.Close()

	var samples []PredictionSample
	for rows.Next() {
		var prob float64
		var predicted, actual, homeTeam string
		if err := rows.Scan(&prob, &predicted, &actual, &homeTeam); err != nil {
			return nil, fmt.Errorf("metric sample scan failed: %w", err)
		}
		samples = append(samples, PredictionSample{
			WinProbability: prob,
			PredictedHome:  predicted == homeTeam,
			ActualHome:     actual == homeTeam,
			WasCorrect:     predicted == actual,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metric sample iteration failed: %w", err)
	}
	return samples, nil
}

func (s *metricsService) currentSeason(ctx context.Context, evalDate time.Time) (string, error) {
	var season string
	err := s.pg.QueryRow(ctx, `
		SELECT season FROM games
		WHERE game_date <= $1
		ORDER BY game_date DESC
		LIMIT 1
	`, evalDate).Scan(&season)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("season lookup failed: %w", err)
	}
	return season, nil
}

func (s *metricsService) GetModelMetrics(ctx context.Context, modelID string) ([]models.ModelMetric, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT model_id, evaluation_date, evaluation_period, games_evaluated,
			accuracy, precision, recall, f1, roc_auc, mean_confidence,
			calibration_error
		FROM model_metrics
		WHERE model_id = $1
		ORDER BY evaluation_date DESC, evaluation_period
	`, modelID)
	if err != nil {
		return nil, fmt.Errorf("model metrics query failed: %w", err)
	}
	defer rows.Close()

	metrics := []models.ModelMetric{}
	for rows.Next() {
		var m models.ModelMetric
		if err := rows.Scan(&m.ModelID, &m.EvaluationDate, &m.EvaluationPeriod,
			&m.GamesEvaluated, &m.Accuracy, &m.Precision, &m.Recall, &m.F1,
			&m.ROCAUC, &m.MeanConfidence, &m.CalibrationError); err != nil {
			return nil, fmt.Errorf("model metric scan failed: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("model metric iteration failed: %w", err)
	}
	return metrics, nil
}

// ComputeMetrics is the pure rollup over reconciled samples. Home-team wins
// are the positive class.
func ComputeMetrics(samples []PredictionSample, bins int) models.ModelMetric {
	metric := models.ModelMetric{GamesEvaluated: len(samples), ROCAUC: 0.5}
	if len(samples) == 0 {
		return metric
	}

	var correct, tp, fp, fn int
	var confSum float64
	for _, s := range samples {
		confSum += s.WinProbability
		if s.WasCorrect {
			correct++
		}
		switch {
		case s.PredictedHome && s.ActualHome:
			tp++
		case s.PredictedHome && !s.ActualHome:
			fp++
		case !s.PredictedHome && s.ActualHome:
			fn++
		}
	}

	n := float64(len(samples))
	metric.Accuracy = float64(correct) / n
	metric.MeanConfidence = confSum / n
	if tp+fp > 0 {
		metric.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		metric.Recall = float64(tp) / float64(tp+fn)
	}
	if metric.Precision+metric.Recall > 0 {
		metric.F1 = 2 * metric.Precision * metric.Recall / (metric.Precision + metric.Recall)
	}
	metric.ROCAUC = rocAUC(samples)
	metric.CalibrationError = calibrationError(samples, bins)
	return metric
}

// rocAUC is the rank-statistic AUC over home-win probabilities, with
// average ranks for ties. Degenerate windows (all one class) score 0.5.
func rocAUC(samples []PredictionSample) float64 {
	type scored struct {
		prob float64
		pos  bool
	}
	items := make([]scored, len(samples))
	var nPos, nNeg int
	for i, s := range samples {
		items[i] = scored{prob: s.HomeProb(), pos: s.ActualHome}
		if s.ActualHome {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0.5
	}

	sort.Slice(items, func(i, j int) bool { return items[i].prob < items[j].prob })

	var rankSum float64
	i := 0
	for i < len(items) {
		j := i
		for j < len(items) && items[j].prob == items[i].prob {
			j++
		}
		// ranks are 1-based; tied scores share the average rank
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if items[k].pos {
				rankSum += avgRank
			}
		}
		i = j
	}

	return (rankSum - float64(nPos)*float64(nPos+1)/2.0) / (float64(nPos) * float64(nNeg))
}

// calibrationError buckets stated confidence and compares it against the
// observed hit rate, weighted by bucket size (expected calibration error).
func calibrationError(samples []PredictionSample, bins int) float64 {
	counts := make([]int, bins)
	confSums := make([]float64, bins)
	hitSums := make([]float64, bins)

	for _, s := range samples {
		b := int(s.WinProbability * float64(bins))
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		counts[b]++
		confSums[b] += s.WinProbability
		if s.WasCorrect {
			hitSums[b]++
		}
	}

	var ece float64
	n := float64(len(samples))
	for b := 0; b < bins; b++ {
		if counts[b] == 0 {
			continue
		}
		c := float64(counts[b])
		gap := confSums[b]/c - hitSums[b]/c
		if gap < 0 {
			gap = -gap
		}
		ece += (c / n) * gap
	}
	return ece
}
