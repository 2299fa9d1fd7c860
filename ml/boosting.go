package ml

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
)

// GradientBoostingRegressor fits shallow regression trees to the residuals
// of a squared-loss ensemble. Each stage trains on a row subsample and its
// leaf values carry L1/L2 shrinkage.
type GradientBoostingRegressor struct {
	NumTrees       int              `json:"num_trees"`
	MaxDepth       int              `json:"max_depth"`
	LearningRate   float64          `json:"learning_rate"`
	Subsample      float64          `json:"subsample"`
	Alpha          float64          `json:"alpha"`
	Lambda         float64          `json:"lambda"`
	Seed           uint64           `json:"seed"`
	BasePrediction float64          `json:"base_prediction"`
	Trees          []regressionTree `json:"trees"`
}

func NewGradientBoostingRegressor(numTrees, maxDepth int, learningRate, subsample, alpha, lambda float64, seed uint64) *GradientBoostingRegressor {
	return &GradientBoostingRegressor{
		NumTrees:     numTrees,
		MaxDepth:     maxDepth,
		LearningRate: learningRate,
		Subsample:    subsample,
		Alpha:        alpha,
		Lambda:       lambda,
		Seed:         seed,
	}
}

func (g *GradientBoostingRegressor) Fit(features [][]float64, targets []float64) error {
	if len(features) == 0 || len(targets) == 0 {
		return errors.New("features or targets empty")
	}
	if len(features) != len(targets) {
		return errors.New("features and targets size mismatch")
	}

	rng := rand.New(rand.NewSource(g.Seed))

	base := 0.0
	for _, v := range targets {
		base += v
	}
	base /= float64(len(targets))
	g.BasePrediction = base

	current := make([]float64, len(targets))
	for i := range current {
		current[i] = base
	}

	g.Trees = make([]regressionTree, 0, g.NumTrees)
	residuals := make([]float64, len(targets))
	for stage := 0; stage < g.NumTrees; stage++ {
		for i := range targets {
			residuals[i] = targets[i] - current[i]
		}

		rows := subsampleRows(len(features), g.Subsample, rng)
		stageFeatures := make([][]float64, len(rows))
		stageResiduals := make([]float64, len(rows))
		for i, idx := range rows {
			stageFeatures[i] = features[idx]
			stageResiduals[i] = residuals[idx]
		}

		tree := regressionTree{}
		opt := treeOptions{
			maxDepth: g.MaxDepth,
			minSplit: 2,
			alpha:    g.Alpha,
			lambda:   g.Lambda,
			rng:      rng,
		}
		if err := tree.fit(stageFeatures, stageResiduals, opt); err != nil {
			return err
		}

		for i, row := range features {
			value, err := tree.predict(row)
			if err != nil {
				return err
			}
			current[i] += g.LearningRate * value
		}
		g.Trees = append(g.Trees, tree)
	}
	return nil
}

func (g *GradientBoostingRegressor) Predict(features []float64) (float64, error) {
	if len(g.Trees) == 0 {
		return 0, errors.New("model not trained")
	}
	score := g.BasePrediction
	for i := range g.Trees {
		value, err := g.Trees[i].predict(features)
		if err != nil {
			return 0, err
		}
		score += g.LearningRate * value
	}
	return score, nil
}

// GradientBoostingClassifier is a binary classifier boosted on logistic
// loss. Leaf values are replaced by a Newton step over the samples that
// reach the leaf, so PredictProba stays calibrated.
type GradientBoostingClassifier struct {
	NumTrees     int              `json:"num_trees"`
	MaxDepth     int              `json:"max_depth"`
	LearningRate float64          `json:"learning_rate"`
	Seed         uint64           `json:"seed"`
	BaseScore    float64          `json:"base_score"`
	Trees        []regressionTree `json:"trees"`
}

func NewGradientBoostingClassifier(numTrees, maxDepth int, learningRate float64, seed uint64) *GradientBoostingClassifier {
	return &GradientBoostingClassifier{
		NumTrees:     numTrees,
		MaxDepth:     maxDepth,
		LearningRate: learningRate,
		Seed:         seed,
	}
}

func (c *GradientBoostingClassifier) Fit(features [][]float64, labels []float64) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}

	rng := rand.New(rand.NewSource(c.Seed))

	positive := 0.0
	for _, y := range labels {
		positive += y
	}
	rate := clamp(positive/float64(len(labels)), 1e-6, 1-1e-6)
	c.BaseScore = math.Log(rate / (1 - rate))

	scores := make([]float64, len(labels))
	for i := range scores {
		scores[i] = c.BaseScore
	}

	c.Trees = make([]regressionTree, 0, c.NumTrees)
	residuals := make([]float64, len(labels))
	for stage := 0; stage < c.NumTrees; stage++ {
		for i := range labels {
			residuals[i] = labels[i] - sigmoid(scores[i])
		}

		tree := regressionTree{}
		opt := treeOptions{
			maxDepth: c.MaxDepth,
			minSplit: 2,
			rng:      rng,
		}
		if err := tree.fit(features, residuals, opt); err != nil {
			return err
		}
		if err := newtonLeafValues(&tree, features, labels, scores); err != nil {
			return err
		}

		for i, row := range features {
			value, err := tree.predict(row)
			if err != nil {
				return err
			}
			scores[i] += c.LearningRate * value
		}
		c.Trees = append(c.Trees, tree)
	}
	return nil
}

// PredictProba returns the positive-class probability.
func (c *GradientBoostingClassifier) PredictProba(features []float64) (float64, error) {
	if len(c.Trees) == 0 {
		return 0, errors.New("model not trained")
	}
	score := c.BaseScore
	for i := range c.Trees {
		value, err := c.Trees[i].predict(features)
		if err != nil {
			return 0, err
		}
		score += c.LearningRate * value
	}
	return sigmoid(score), nil
}

func (c *GradientBoostingClassifier) Predict(features []float64) (float64, error) {
	return c.PredictProba(features)
}

// newtonLeafValues rewrites each leaf with sum(residual)/sum(p*(1-p)) over
// the samples routed to it.
func newtonLeafValues(tree *regressionTree, features [][]float64, labels, scores []float64) error {
	numerator := make(map[int]float64)
	denominator := make(map[int]float64)
	for i, row := range features {
		leaf, err := tree.leafIndex(row)
		if err != nil {
			return err
		}
		p := sigmoid(scores[i])
		numerator[leaf] += labels[i] - p
		denominator[leaf] += p * (1 - p)
	}
	for leaf, num := range numerator {
		den := denominator[leaf]
		if den < 1e-9 {
			den = 1e-9
		}
		tree.Nodes[leaf].Value = num / den
	}
	return nil
}

func subsampleRows(n int, fraction float64, rng *rand.Rand) []int {
	if fraction <= 0 || fraction >= 1 {
		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		return rows
	}
	count := int(float64(n) * fraction)
	if count < 1 {
		count = 1
	}
	return rng.Perm(n)[:count]
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
