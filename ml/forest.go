package ml

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
)

// RandomForestRegressor averages bootstrap-trained regression trees, each
// split restricted to sqrt(features) random candidates.
type RandomForestRegressor struct {
	NumTrees int              `json:"num_trees"`
	MaxDepth int              `json:"max_depth"`
	MinSplit int              `json:"min_split"`
	Seed     uint64           `json:"seed"`
	Trees    []regressionTree `json:"trees"`
}

func NewRandomForestRegressor(numTrees, maxDepth, minSplit int, seed uint64) *RandomForestRegressor {
	return &RandomForestRegressor{
		NumTrees: numTrees,
		MaxDepth: maxDepth,
		MinSplit: minSplit,
		Seed:     seed,
	}
}

func (f *RandomForestRegressor) Fit(features [][]float64, targets []float64) error {
	if len(features) == 0 || len(targets) == 0 {
		return errors.New("features or targets empty")
	}
	if len(features) != len(targets) {
		return errors.New("features and targets size mismatch")
	}

	rng := rand.New(rand.NewSource(f.Seed))
	featureSub := int(math.Sqrt(float64(len(features[0]))))
	if featureSub < 1 {
		featureSub = 1
	}

	f.Trees = make([]regressionTree, 0, f.NumTrees)
	for i := 0; i < f.NumTrees; i++ {
		sampleFeatures, sampleTargets := bootstrapSample(features, targets, rng)
		tree := regressionTree{}
		opt := treeOptions{
			maxDepth:   f.MaxDepth,
			minSplit:   f.MinSplit,
			featureSub: featureSub,
			rng:        rng,
		}
		if err := tree.fit(sampleFeatures, sampleTargets, opt); err != nil {
			return err
		}
		f.Trees = append(f.Trees, tree)
	}
	return nil
}

func (f *RandomForestRegressor) Predict(features []float64) (float64, error) {
	if len(f.Trees) == 0 {
		return 0, errors.New("model not trained")
	}
	sum := 0.0
	for i := range f.Trees {
		value, err := f.Trees[i].predict(features)
		if err != nil {
			return 0, err
		}
		sum += value
	}
	return sum / float64(len(f.Trees)), nil
}

func bootstrapSample(features [][]float64, targets []float64, rng *rand.Rand) ([][]float64, []float64) {
	n := len(features)
	sampleFeatures := make([][]float64, n)
	sampleTargets := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := rng.Intn(n)
		sampleFeatures[i] = features[idx]
		sampleTargets[i] = targets[idx]
	}
	return sampleFeatures, sampleTargets
}
