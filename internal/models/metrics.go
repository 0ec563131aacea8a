package models

import "time"

// Evaluation periods accepted by the metrics aggregator.
const (
	PeriodWeek   = "7d"
	PeriodMonth  = "30d"
	PeriodSeason = "season"
)

// ModelMetric is one rollup of prediction correctness for a model over an
// evaluation window. Derived and recomputable; never hand-edited.
// "Home team wins" is the positive class for precision/recall/F1.
type ModelMetric struct {
	ModelID          string    `json:"model_id"`
	EvaluationDate   time.Time `json:"evaluation_date"`
	EvaluationPeriod string    `json:"evaluation_period"`
	GamesEvaluated   int       `json:"games_evaluated"`
	Accuracy         float64   `json:"accuracy"`
	Precision        float64   `json:"precision"`
	Recall           float64   `json:"recall"`
	F1               float64   `json:"f1"`
	ROCAUC           float64   `json:"roc_auc"`
	MeanConfidence   float64   `json:"mean_confidence"`
	CalibrationError float64   `json:"calibration_error"`
}
