package model

import (
	"fmt"
	"math"
)

// StandardScaler centers features to zero mean and unit variance. Fitted
// parameters are retained so inference inputs are scaled identically to the
// training set.
type StandardScaler struct {
	Means   []float64
	Stddevs []float64
}

// Fit computes per-feature means and standard deviations from the sample
// matrix (rows are samples, columns features).
func (s *StandardScaler) Fit(samples [][]float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("scaler: no samples to fit")
	}
	n := len(samples[0])
	s.Means = make([]float64, n)
	s.Stddevs = make([]float64, n)

	for j := 0; j < n; j++ {
		var sum float64
		for _, row := range samples {
			sum += row[j]
		}
		mean := sum / float64(len(samples))

		var sqDiff float64
		for _, row := range samples {
			d := row[j] - mean
			sqDiff += d * d
		}
		std := math.Sqrt(sqDiff / float64(len(samples)))
		if std == 0 {
			// Constant features scale to zero; avoid dividing by zero.
			std = 1
		}

		s.Means[j] = mean
		s.Stddevs[j] = std
	}
	return nil
}

// Transform scales samples in a new matrix, leaving the input untouched.
func (s *StandardScaler) Transform(samples [][]float64) ([][]float64, error) {
	if len(s.Means) == 0 {
		return nil, fmt.Errorf("scaler: not fitted")
	}
	out := make([][]float64, len(samples))
	for i, row := range samples {
		if len(row) != len(s.Means) {
			return nil, fmt.Errorf("scaler: sample has %d features, fitted on %d", len(row), len(s.Means))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Means[j]) / s.Stddevs[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// FitTransform fits the scaler and returns the scaled training matrix.
func (s *StandardScaler) FitTransform(samples [][]float64) ([][]float64, error) {
	if err := s.Fit(samples); err != nil {
		return nil, err
	}
	return s.Transform(samples)
}
