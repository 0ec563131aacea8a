package models

import "time"

// Prediction is one model's call on one game, created before tip-off.
// ActualWinner, WasCorrect and ReconciledAt are the only fields mutated
// after creation, exactly once, by the outcome reconciler.
type Prediction struct {
	GameID          string    `json:"game_id"`
	ModelID         string    `json:"model_id"`
	GameDate        time.Time `json:"game_date"`
	PredictedWinner string    `json:"predicted_winner"`
	WinProbability  float64   `json:"win_probability" validate:"gte=0,lte=1"`
	// Margin is reported relative to the predicted winner.
	PredictedMargin float64    `json:"predicted_margin"`
	ActualWinner    *string    `json:"actual_winner,omitempty"`
	WasCorrect      *bool      `json:"was_correct,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ReconciledAt    *time.Time `json:"reconciled_at,omitempty"`
}
