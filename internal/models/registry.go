package models

import "time"

// Hyperparameters is stored as JSONB. Values are numeric; the predictor
// packages interpret them per model type.
type Hyperparameters map[string]float64

// ModelArtifact is one versioned trained model. (model_name, model_version)
// is unique, and at most one artifact is active at any observable instant.
type ModelArtifact struct {
	ID                  string          `json:"id"`
	ModelName           string          `json:"model_name"`
	ModelVersion        string          `json:"model_version"`
	ModelType           string          `json:"model_type"`
	Hyperparameters     Hyperparameters `json:"hyperparameters"`
	TrainingDate        time.Time       `json:"training_date"`
	TrainingSampleCount int             `json:"training_sample_count"`
	IsActive            bool            `json:"is_active"`
	CreatedAt           time.Time       `json:"created_at"`
}

// ModelActivation is the audit trail row written inside every activation
// transaction.
type ModelActivation struct {
	PreviousModelID *string   `json:"previous_model_id,omitempty"`
	NewModelID      string    `json:"new_model_id"`
	ActivatedAt     time.Time `json:"activated_at"`
}
