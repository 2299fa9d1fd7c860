package ml

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

func RMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	total := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		total += diff * diff
	}
	return math.Sqrt(total / float64(len(actual)))
}

func RSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}

// MAPE floors the denominator at 1 so near-zero actuals do not blow up the
// mean.
func MAPE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	total := 0.0
	for i := range actual {
		total += math.Abs(actual[i]-predicted[i]) / math.Max(math.Abs(actual[i]), 1)
	}
	return total / float64(len(actual))
}

func Accuracy(actual, predicted []int) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	correct := 0
	for i := range actual {
		if actual[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(actual))
}

// PrecisionRecallF1 scores the positive class (label 1). Empty counts yield
// zeros instead of dividing by zero.
func PrecisionRecallF1(actual, predicted []int) (precision, recall, f1 float64) {
	cm := ConfusionMatrix(actual, predicted)
	tp := float64(cm[1][1])
	fp := float64(cm[0][1])
	fn := float64(cm[1][0])

	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// ConfusionMatrix is indexed [actual][predicted] over binary labels.
func ConfusionMatrix(actual, predicted []int) [2][2]int {
	var cm [2][2]int
	for i := range actual {
		a := actual[i]
		p := 0
		if i < len(predicted) {
			p = predicted[i]
		}
		if a < 0 || a > 1 || p < 0 || p > 1 {
			continue
		}
		cm[a][p]++
	}
	return cm
}
