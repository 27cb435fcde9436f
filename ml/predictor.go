package ml

import (
	"context"
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RiskThreshold separates LOW from HIGH risk; a probability equal to it is LOW.
const RiskThreshold = 0.5

// RiskLabel is the thresholded outcome shown to the user.
type RiskLabel string

const (
	HighRisk RiskLabel = "HIGH RISK"
	LowRisk  RiskLabel = "LOW RISK"
)

// LabelFor maps a probability onto a RiskLabel.
func LabelFor(probability float64) RiskLabel {
	if probability > RiskThreshold {
		return HighRisk
	}
	return LowRisk
}

// Prediction is the result of one Predict call.
type Prediction struct {
	Probability float64   `json:"probability"`
	Label       RiskLabel `json:"label"`
}

// PredictionError wraps a failed estimation. It matches ErrPredictionFailure.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() []error {
	return []error{ErrPredictionFailure, e.Err}
}

// Predictor evaluates a loaded Classifier. Results are memoized per record since
// the classifier never changes after load.
type Predictor struct {
	classifier Classifier
	cache      *lru.Cache[FeatureRecord, float64]
}

// NewPredictor wraps classifier. cacheSize <= 0 disables memoization.
func NewPredictor(classifier Classifier, cacheSize int) (*Predictor, error) {
	if classifier == nil {
		return nil, errors.New("classifier is nil")
	}
	p := &Predictor{classifier: classifier}
	if cacheSize > 0 {
		cache, err := lru.New[FeatureRecord, float64](cacheSize)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}
	return p, nil
}

// Predict returns the positive-class probability and its label. Classifier
// errors and out-of-range probabilities are reported as *PredictionError.
func (p *Predictor) Predict(ctx context.Context, record FeatureRecord) (Prediction, error) {
	if p.cache != nil {
		if probability, ok := p.cache.Get(record); ok {
			return Prediction{Probability: probability, Label: LabelFor(probability)}, nil
		}
	}

	probability, err := p.classifier.PredictProba(ctx, record)
	if err != nil {
		return Prediction{}, &PredictionError{Err: err}
	}
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return Prediction{}, &PredictionError{Err: fmt.Errorf("probability %v outside [0,1]", probability)}
	}

	if p.cache != nil {
		p.cache.Add(record, probability)
	}
	return Prediction{Probability: probability, Label: LabelFor(probability)}, nil
}
