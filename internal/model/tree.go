package model

import (
	"math"
	"math/rand"
	"sort"
)

// treeNode is one node of a binary classification tree. Leaf nodes carry the
// positive-class fraction of the training samples that reached them. Fields
// are exported for gob encoding.
type treeNode struct {
	Feature   int
	Threshold float64
	Left      *treeNode
	Right     *treeNode
	Leaf      bool
	Prob      float64
}

// decisionTree is a CART classifier grown with gini impurity.
type decisionTree struct {
	Root        *treeNode
	MaxDepth    int
	MinLeafSize int
}

// fit grows the tree from all samples. Impurity decreases at each split are
// accumulated into imp, indexed by feature.
func (t *decisionTree) fit(samples [][]float64, labels []int, featureIdx []int, rng *rand.Rand, imp []float64) {
	idx := make([]int, len(samples))
	for i := range idx {
		idx[i] = i
	}
	t.Root = t.grow(samples, labels, idx, featureIdx, 0, rng, imp)
}

func (t *decisionTree) grow(samples [][]float64, labels []int, idx, featureIdx []int, depth int, rng *rand.Rand, imp []float64) *treeNode {
	pos := 0
	for _, i := range idx {
		pos += labels[i]
	}
	prob := float64(pos) / float64(len(idx))

	if depth >= t.MaxDepth || len(idx) < 2*t.MinLeafSize || pos == 0 || pos == len(idx) {
		return &treeNode{Leaf: true, Prob: prob}
	}

	feature, threshold, childGini, ok := t.bestSplit(samples, labels, idx, featureIdx, rng)
	if !ok {
		return &treeNode{Leaf: true, Prob: prob}
	}

	var left, right []int
	for _, i := range idx {
		if samples[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.MinLeafSize || len(right) < t.MinLeafSize {
		return &treeNode{Leaf: true, Prob: prob}
	}

	if imp != nil {
		imp[feature] += (gini(pos, len(idx)) - childGini) * float64(len(idx))
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.grow(samples, labels, left, featureIdx, depth+1, rng, imp),
		Right:     t.grow(samples, labels, right, featureIdx, depth+1, rng, imp),
	}
}

// bestSplit evaluates a random feature subset and returns the split with the
// lowest weighted gini impurity.
func (t *decisionTree) bestSplit(samples [][]float64, labels []int, idx, featureIdx []int, rng *rand.Rand) (int, float64, float64, bool) {
	nTry := int(math.Sqrt(float64(len(featureIdx))))
	if nTry < 1 {
		nTry = 1
	}
	candidates := make([]int, len(featureIdx))
	copy(candidates, featureIdx)
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	candidates = candidates[:nTry]

	bestGini := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	values := make([]float64, 0, len(idx))
	for _, f := range candidates {
		values = values[:0]
		for _, i := range idx {
			values = append(values, samples[i][f])
		}
		sort.Float64s(values)

		for k := 1; k < len(values); k++ {
			if values[k] == values[k-1] {
				continue
			}
			threshold := (values[k] + values[k-1]) / 2
			g := splitGini(samples, labels, idx, f, threshold)
			if g < bestGini {
				bestGini = g
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestGini, bestFeature >= 0
}

func splitGini(samples [][]float64, labels []int, idx []int, feature int, threshold float64) float64 {
	var nLeft, posLeft, nRight, posRight int
	for _, i := range idx {
		if samples[i][feature] <= threshold {
			nLeft++
			posLeft += labels[i]
		} else {
			nRight++
			posRight += labels[i]
		}
	}
	if nLeft == 0 || nRight == 0 {
		return math.Inf(1)
	}
	total := float64(nLeft + nRight)
	return float64(nLeft)/total*gini(posLeft, nLeft) + float64(nRight)/total*gini(posRight, nRight)
}

func gini(pos, n int) float64 {
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

// predict walks the tree and returns the positive-class probability.
func (t *decisionTree) predict(sample []float64) float64 {
	node := t.Root
	for !node.Leaf {
		if sample[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Prob
}
