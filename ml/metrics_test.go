package ml

import (
	"math"
	"testing"
)

func TestRMSE(t *testing.T) {
	actual := []float64{1, 2, 3}
	predicted := []float64{1, 2, 5}
	want := math.Sqrt(4.0 / 3.0)
	if got := RMSE(actual, predicted); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := RMSE(nil, nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
}

func TestRSquared(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	if got := RSquared(actual, actual); math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected perfect fit r2 of 1, got %v", got)
	}
	mean := []float64{2.5, 2.5, 2.5, 2.5}
	if got := RSquared(actual, mean); math.Abs(got) > 1e-12 {
		t.Fatalf("expected r2 of 0 for mean predictor, got %v", got)
	}
}

func TestMAPE(t *testing.T) {
	actual := []float64{100, 0.5}
	predicted := []float64{90, 1.5}
	// second term divides by max(|0.5|, 1) = 1
	want := (0.1 + 1.0) / 2
	if got := MAPE(actual, predicted); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestClassificationMetrics(t *testing.T) {
	actual := []int{1, 1, 0, 0, 1}
	predicted := []int{1, 0, 0, 1, 1}

	if got := Accuracy(actual, predicted); math.Abs(got-0.6) > 1e-12 {
		t.Fatalf("expected accuracy 0.6, got %v", got)
	}

	precision, recall, f1 := PrecisionRecallF1(actual, predicted)
	if math.Abs(precision-2.0/3.0) > 1e-12 {
		t.Fatalf("expected precision 2/3, got %v", precision)
	}
	if math.Abs(recall-2.0/3.0) > 1e-12 {
		t.Fatalf("expected recall 2/3, got %v", recall)
	}
	if math.Abs(f1-2.0/3.0) > 1e-12 {
		t.Fatalf("expected f1 2/3, got %v", f1)
	}

	cm := ConfusionMatrix(actual, predicted)
	if cm[0][0] != 1 || cm[0][1] != 1 || cm[1][0] != 1 || cm[1][1] != 2 {
		t.Fatalf("unexpected confusion matrix: %v", cm)
	}
}

func TestClassificationMetricsZeroDivision(t *testing.T) {
	actual := []int{0, 0}
	predicted := []int{0, 0}
	precision, recall, f1 := PrecisionRecallF1(actual, predicted)
	if precision != 0 || recall != 0 || f1 != 0 {
		t.Fatalf("expected zeros, got %v %v %v", precision, recall, f1)
	}
}
