// Package predictor hosts the pluggable model implementations. The engine
// treats them as black boxes: a feature vector goes in, a winner with a
// probability and margin comes out. Model internals are intentionally
// outside the core design.
package predictor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hoopsight/predictions-api/internal/models"
)

var ErrUnknownModelType = errors.New("unknown model type")

// Outcome is a single prediction. WinProbability is the probability that
// Winner wins; Margin is reported relative to Winner.
type Outcome struct {
	Winner         string
	WinProbability float64
	Margin         float64
}

// Predictor consumes one complete feature vector and emits an outcome.
type Predictor interface {
	Predict(fv *models.FeatureVector) (Outcome, error)
}

// Factory builds a predictor from a registered artifact's hyperparameters.
type Factory func(hp models.Hyperparameters) (Predictor, error)

// Registry maps model_type names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(modelType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[modelType] = f
}

// Resolve builds the predictor for an artifact's model_type.
func (r *Registry) Resolve(artifact *models.ModelArtifact) (Predictor, error) {
	r.mu.RLock()
	f, ok := r.factories[artifact.ModelType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("model type %q: %w", artifact.ModelType, ErrUnknownModelType)
	}
	return f(artifact.Hyperparameters)
}

// Default is the process-wide registry with the built-in model types.
var Default = NewRegistry()

func init() {
	Default.Register(TypeLogisticBaseline, NewLogisticBaseline)
	Default.Register(TypePythagorean, NewPythagorean)
}
