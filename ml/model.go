package ml

import (
	"encoding/json"
	"os"
)

// EstimatorStrategy selects the underlying learner for a model. It is
// resolved once at construction time, not per prediction.
type EstimatorStrategy string

const (
	StrategyGradientBoosting EstimatorStrategy = "gradient_boosting"
	StrategyRandomForest     EstimatorStrategy = "random_forest"
)

// Regressor is a trainable estimator over raw float matrices.
type Regressor interface {
	Fit(features [][]float64, targets []float64) error
	Predict(features []float64) (float64, error)
}

// Metadata describes a persisted model artifact set. Score fields are
// pointers so each model serializes only the field it owns, zero included.
type Metadata struct {
	Version       string   `json:"version"`
	Created       string   `json:"created"`
	AccuracyScore *float64 `json:"accuracy_score,omitempty"`
	R2Score       *float64 `json:"r2_score,omitempty"`
	ModelType     string   `json:"model_type,omitempty"`
	Features      []string `json:"features,omitempty"`
}

func writeJSON(path string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func readJSON(path string, v interface{}) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, v)
}

func artifactsExist(paths ...string) bool {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func predictBatch(est Regressor, features [][]float64) ([]float64, error) {
	out := make([]float64, len(features))
	for i, row := range features {
		value, err := est.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = value
	}
	return out, nil
}
