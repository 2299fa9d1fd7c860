package ml

import (
	"errors"
	"math"
	"sort"

	"golang.org/x/exp/rand"
)

// regressionTree is a CART regressor stored as a flat node array. Child
// links are indices into Nodes so the whole tree serializes to JSON.
type regNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

type regressionTree struct {
	Nodes []regNode `json:"nodes"`
}

type treeOptions struct {
	maxDepth int
	minSplit int
	// featureSub limits each split to a random subset of candidate
	// features; 0 considers all of them.
	featureSub int
	// alpha/lambda apply XGBoost-style L1/L2 shrinkage to leaf values.
	alpha  float64
	lambda float64
	rng    *rand.Rand
}

func (t *regressionTree) fit(features [][]float64, targets []float64, opt treeOptions) error {
	if len(features) == 0 || len(targets) == 0 {
		return errors.New("features or targets empty")
	}
	if len(features) != len(targets) {
		return errors.New("features and targets size mismatch")
	}
	if opt.maxDepth <= 0 {
		opt.maxDepth = 3
	}
	if opt.minSplit < 2 {
		opt.minSplit = 2
	}
	t.Nodes = t.buildNode(features, targets, 0, opt)
	return nil
}

func (t *regressionTree) predict(features []float64) (float64, error) {
	idx, err := t.leafIndex(features)
	if err != nil {
		return 0, err
	}
	return t.Nodes[idx].Value, nil
}

// leafIndex walks the tree and returns the index of the matched leaf.
func (t *regressionTree) leafIndex(features []float64) (int, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.New("tree not trained")
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return idx, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func (t *regressionTree) buildNode(features [][]float64, targets []float64, depth int, opt treeOptions) []regNode {
	leaf := regNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Value:      leafValue(targets, opt.alpha, opt.lambda),
		IsLeaf:     true,
	}
	if depth >= opt.maxDepth || len(targets) < opt.minSplit {
		return []regNode{leaf}
	}

	bestFeature, threshold, ok := findBestRegSplit(features, targets, opt)
	if !ok {
		return []regNode{leaf}
	}

	leftFeatures, leftTargets, rightFeatures, rightTargets := splitSamples(features, targets, bestFeature, threshold)
	if len(leftTargets) == 0 || len(rightTargets) == 0 {
		return []regNode{leaf}
	}

	leftNodes := t.buildNode(leftFeatures, leftTargets, depth+1, opt)
	rightNodes := t.buildNode(rightFeatures, rightTargets, depth+1, opt)

	root := regNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		Value:      leaf.Value,
		IsLeaf:     false,
	}

	nodes := make([]regNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, leftNodes...)
	nodes = append(nodes, rightNodes...)
	return nodes
}

// leafValue is the shrunken mean of the targets: soft-threshold(sum, alpha)
// divided by (count + lambda). With alpha=lambda=0 it is the plain mean.
func leafValue(targets []float64, alpha, lambda float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range targets {
		sum += v
	}
	if alpha > 0 {
		switch {
		case sum > alpha:
			sum -= alpha
		case sum < -alpha:
			sum += alpha
		default:
			sum = 0
		}
	}
	return sum / (float64(len(targets)) + lambda)
}

func findBestRegSplit(features [][]float64, targets []float64, opt treeOptions) (int, float64, bool) {
	featureCount := len(features[0])
	candidates := candidateFeatures(featureCount, opt.featureSub, opt.rng)

	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.MaxFloat64

	values := make([]float64, len(features))
	for _, featureIdx := range candidates {
		for i := range features {
			values[i] = features[i][featureIdx]
		}
		threshold := median(values)
		leftTargets, rightTargets := splitTargets(features, targets, featureIdx, threshold)
		if len(leftTargets) == 0 || len(rightTargets) == 0 {
			continue
		}
		score := weightedSSE(leftTargets, rightTargets)
		if score < bestScore {
			bestScore = score
			bestFeature = featureIdx
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func candidateFeatures(total, sub int, rng *rand.Rand) []int {
	if sub <= 0 || sub >= total || rng == nil {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return rng.Perm(total)[:sub]
}

func splitSamples(features [][]float64, targets []float64, featureIdx int, threshold float64) ([][]float64, []float64, [][]float64, []float64) {
	leftFeatures := make([][]float64, 0)
	leftTargets := make([]float64, 0)
	rightFeatures := make([][]float64, 0)
	rightTargets := make([]float64, 0)
	for i, row := range features {
		if row[featureIdx] <= threshold {
			leftFeatures = append(leftFeatures, row)
			leftTargets = append(leftTargets, targets[i])
		} else {
			rightFeatures = append(rightFeatures, row)
			rightTargets = append(rightTargets, targets[i])
		}
	}
	return leftFeatures, leftTargets, rightFeatures, rightTargets
}

func splitTargets(features [][]float64, targets []float64, featureIdx int, threshold float64) ([]float64, []float64) {
	leftTargets := make([]float64, 0)
	rightTargets := make([]float64, 0)
	for i, row := range features {
		if row[featureIdx] <= threshold {
			leftTargets = append(leftTargets, targets[i])
		} else {
			rightTargets = append(rightTargets, targets[i])
		}
	}
	return leftTargets, rightTargets
}

func weightedSSE(left, right []float64) float64 {
	return sse(left) + sse(right)
}

func sse(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range targets {
		mean += v
	}
	mean /= float64(len(targets))
	total := 0.0
	for _, v := range targets {
		diff := v - mean
		total += diff * diff
	}
	return total
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
