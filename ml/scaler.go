package ml

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes each column to zero mean and unit variance.
// Columns with zero spread keep their values by scaling with 1.
type StandardScaler struct {
	Means  []float64 `json:"means"`
	Stds   []float64 `json:"stds"`
	Fitted bool      `json:"fitted"`
}

func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

func (s *StandardScaler) Fit(features [][]float64) error {
	if len(features) == 0 || len(features[0]) == 0 {
		return errors.New("empty training matrix")
	}
	cols := len(features[0])
	s.Means = make([]float64, cols)
	s.Stds = make([]float64, cols)

	column := make([]float64, len(features))
	for j := 0; j < cols; j++ {
		for i, row := range features {
			if len(row) != cols {
				return errors.New("ragged training matrix")
			}
			column[i] = row[j]
		}
		mean, std := stat.MeanStdDev(column, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Means[j] = mean
		s.Stds[j] = std
	}
	s.Fitted = true
	return nil
}

func (s *StandardScaler) Transform(features [][]float64) ([][]float64, error) {
	out := make([][]float64, len(features))
	for i, row := range features {
		scaled, err := s.TransformRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

func (s *StandardScaler) TransformRow(row []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, errors.New("scaler not fitted")
	}
	if len(row) != len(s.Means) {
		return nil, errors.New("feature count mismatch")
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Means[j]) / s.Stds[j]
	}
	return out, nil
}
