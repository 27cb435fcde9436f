package ml

import (
	"context"
	"errors"
)

var (
	// ErrModelLoadCorrupt marks an artifact that exists but cannot be decoded.
	ErrModelLoadCorrupt = errors.New("model artifact is corrupt")
	// ErrSchemaMismatch marks an artifact trained on a different feature schema.
	ErrSchemaMismatch = errors.New("model feature schema mismatch")
	// ErrMissingDependency marks an artifact format with no decoder in this build.
	ErrMissingDependency = errors.New("missing model decoder")
	// ErrPredictionFailure marks a failed probability estimation.
	ErrPredictionFailure = errors.New("prediction failed")
)

// Classifier estimates the probability of the positive class for one record.
// Implementations are immutable after load and safe for concurrent use.
type Classifier interface {
	PredictProba(ctx context.Context, record FeatureRecord) (float64, error)
}
