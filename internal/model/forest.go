// Package model implements the binary classifier used by the prediction
// agents: a seeded random forest over standard-scaled feature matrices, with
// snappy-compressed gob artifacts for persistence.
package model

import (
	"fmt"
	"math/rand"
)

// ForestConfig controls random forest training.
type ForestConfig struct {
	NumTrees    int
	MaxDepth    int
	MinLeafSize int
	Seed        int64
}

// DefaultForestConfig returns the training defaults.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NumTrees:    50,
		MaxDepth:    10,
		MinLeafSize: 2,
		Seed:        42,
	}
}

// RandomForest is a bagged ensemble of CART trees for binary classification.
// Training is fully deterministic for a given seed and input.
type RandomForest struct {
	Trees       []*decisionTree
	NumFeatures int
	Config      ForestConfig
	Importances []float64
}

// NewRandomForest creates an untrained forest with the given configuration.
func NewRandomForest(cfg ForestConfig) *RandomForest {
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = DefaultForestConfig().NumTrees
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultForestConfig().MaxDepth
	}
	if cfg.MinLeafSize <= 0 {
		cfg.MinLeafSize = DefaultForestConfig().MinLeafSize
	}
	return &RandomForest{Config: cfg}
}

// Fit trains the forest on the sample matrix and binary labels (0 or 1).
func (f *RandomForest) Fit(samples [][]float64, labels []int) error {
	if len(samples) == 0 {
		return fmt.Errorf("forest: no training samples")
	}
	if len(samples) != len(labels) {
		return fmt.Errorf("forest: %d samples but %d labels", len(samples), len(labels))
	}
	for _, l := range labels {
		if l != 0 && l != 1 {
			return fmt.Errorf("forest: labels must be 0 or 1, got %d", l)
		}
	}

	f.NumFeatures = len(samples[0])
	featureIdx := make([]int, f.NumFeatures)
	for i := range featureIdx {
		featureIdx[i] = i
	}

	rng := rand.New(rand.NewSource(f.Config.Seed))
	imp := make([]float64, f.NumFeatures)

	f.Trees = make([]*decisionTree, 0, f.Config.NumTrees)
	for i := 0; i < f.Config.NumTrees; i++ {
		// Bootstrap sample with replacement.
		bootSamples := make([][]float64, len(samples))
		bootLabels := make([]int, len(samples))
		for j := range bootSamples {
			k := rng.Intn(len(samples))
			bootSamples[j] = samples[k]
			bootLabels[j] = labels[k]
		}

		tree := &decisionTree{MaxDepth: f.Config.MaxDepth, MinLeafSize: f.Config.MinLeafSize}
		tree.fit(bootSamples, bootLabels, featureIdx, rng, imp)
		f.Trees = append(f.Trees, tree)
	}

	// Normalize impurity decreases to sum to one.
	var total float64
	for _, v := range imp {
		total += v
	}
	if total > 0 {
		for i := range imp {
			imp[i] /= total
		}
	}
	f.Importances = imp

	return nil
}

// Trained reports whether Fit has completed.
func (f *RandomForest) Trained() bool {
	return len(f.Trees) > 0
}

// Proba returns the positive-class probability for one sample, averaged
// across all trees. The result is always in [0, 1].
func (f *RandomForest) Proba(sample []float64) (float64, error) {
	if !f.Trained() {
		return 0, fmt.Errorf("forest: not trained")
	}
	if len(sample) != f.NumFeatures {
		return 0, fmt.Errorf("forest: sample has %d features, trained on %d", len(sample), f.NumFeatures)
	}
	var sum float64
	for _, tree := range f.Trees {
		sum += tree.predict(sample)
	}
	return sum / float64(len(f.Trees)), nil
}

// ProbaBatch returns positive-class probabilities for a sample matrix.
func (f *RandomForest) ProbaBatch(samples [][]float64) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		p, err := f.Proba(s)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Accuracy returns the fraction of samples classified correctly at a 0.5
// probability threshold.
func (f *RandomForest) Accuracy(samples [][]float64, labels []int) (float64, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("forest: no samples to score")
	}
	probs, err := f.ProbaBatch(samples)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i, p := range probs {
		pred := 0
		if p >= 0.5 {
			pred = 1
		}
		if pred == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(samples)), nil
}
