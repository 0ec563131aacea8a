package logic

import "errors"

// Error taxonomy surfaced to callers. Per-record conditions
// (ErrIncompleteFeatures) are isolated and logged inside batch runs;
// registry violations (ErrDuplicateVersion) indicate caller logic errors
// and are never retried automatically.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateVersion   = errors.New("model version already registered")
	ErrNoActiveModel      = errors.New("no active model")
	ErrIncompleteFeatures = errors.New("feature vector incomplete")
	ErrQualityGateFailed  = errors.New("quality gate failed for partition")
)
