// Package agents implements the workforce analytics agents. Each agent is a
// long-lived service object constructed at process start; analysis methods
// are side-effect free apart from lazy model training and return a flat
// Result that encodes to JSON without surprises.
package agents

import "math"

// Result is a flat analysis result keyed by metric name.
type Result map[string]any

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
