package ml

import (
	"math"
	"testing"
)

func riskTrainingData(n int) ([][]float64, []float64) {
	features := make([][]float64, n)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		income := 30000 + float64(i)*1500
		expenses := income * (0.4 + 0.4*float64(i%5)/5)
		savings := income * 0.1 * float64(i%4)
		debt := income * 0.3 * float64(i%3)
		denom := math.Max(income, 1)
		features[i] = []float64{
			income, expenses, savings, debt,
			debt / denom, savings / denom, expenses / denom,
		}
		targets[i] = clamp((expenses/denom*0.5+(1-savings/denom)*0.3+debt/denom*0.2)*100, 0, 100)
	}
	return features, targets
}

func TestRiskRuleBasedFormula(t *testing.T) {
	model := NewFinancialRiskModel(t.TempDir(), StrategyGradientBoosting, nil)
	rec := FeatureRecord{
		"income":   50000.0,
		"expenses": 40000.0,
		"savings":  5000.0,
		"debt":     10000.0,
	}
	// 0.8*0.5 + 0.9*0.3 + 0.2*0.2 = 0.71
	if got := model.Predict(rec); math.Abs(got-71) > 1e-9 {
		t.Fatalf("expected 71, got %v", got)
	}
}

func TestRiskRuleBasedRange(t *testing.T) {
	model := NewFinancialRiskModel(t.TempDir(), StrategyGradientBoosting, nil)
	records := []FeatureRecord{
		{},
		{"income": 0.0, "expenses": 100000.0, "debt": 100000.0},
		{"income": 1000000.0, "savings": 10000000.0},
		{"income": 50000.0, "expenses": 500000.0, "debt": 500000.0},
	}
	for _, rec := range records {
		got := model.Predict(rec)
		if got < 0 || got > 100 {
			t.Fatalf("prediction out of range for %v: %v", rec, got)
		}
	}
}

func TestRiskPrepareFeatures(t *testing.T) {
	model := NewFinancialRiskModel(t.TempDir(), StrategyGradientBoosting, nil)
	rec := FeatureRecord{"income": 0.0, "expenses": 10.0, "savings": 20.0, "debt": 30.0}
	row := model.PrepareFeatures(rec)
	if len(row) != 7 {
		t.Fatalf("expected 7 features, got %d", len(row))
	}
	// income floored at 1 in the ratio denominators
	if row[4] != 30 || row[5] != 20 || row[6] != 10 {
		t.Fatalf("unexpected ratios: %v", row[4:])
	}
}

func TestRiskTrainPredictClamped(t *testing.T) {
	features, targets := riskTrainingData(80)
	model := NewFinancialRiskModel(t.TempDir(), StrategyGradientBoosting, nil)
	if err := model.Train(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !model.Trained() {
		t.Fatal("expected trained flag")
	}
	if score := model.Metadata().AccuracyScore; score == nil || *score <= 0 {
		t.Fatalf("expected positive training score, got %v", score)
	}

	rec := FeatureRecord{"income": 60000.0, "expenses": 30000.0, "savings": 12000.0, "debt": 9000.0}
	got := model.Predict(rec)
	if got < 0 || got > 100 {
		t.Fatalf("trained prediction out of range: %v", got)
	}
}

func TestRiskSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	features, targets := riskTrainingData(80)

	model := NewFinancialRiskModel(dir, StrategyGradientBoosting, nil)
	if err := model.Train(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := model.Save(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored := NewFinancialRiskModel(dir, StrategyGradientBoosting, nil)
	if err := restored.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !restored.Trained() {
		t.Fatal("expected restored model to be trained")
	}

	records := []FeatureRecord{
		{"income": 60000.0, "expenses": 30000.0, "savings": 12000.0, "debt": 9000.0},
		{"income": 25000.0, "expenses": 24000.0, "savings": 500.0, "debt": 40000.0},
	}
	for _, rec := range records {
		if want, got := model.Predict(rec), restored.Predict(rec); want != got {
			t.Fatalf("round trip mismatch: %v != %v", want, got)
		}
	}
}

func TestRiskLoadMissingArtifacts(t *testing.T) {
	model := NewFinancialRiskModel(t.TempDir(), StrategyRandomForest, nil)
	if err := model.Load(); err != nil {
		t.Fatalf("expected nil error for missing artifacts, got %v", err)
	}
	if model.Trained() {
		t.Fatal("expected model to stay in fallback mode")
	}
	// fallback formula still answers
	rec := FeatureRecord{"income": 50000.0, "expenses": 40000.0, "savings": 5000.0, "debt": 10000.0}
	if got := model.Predict(rec); math.Abs(got-71) > 1e-9 {
		t.Fatalf("expected 71, got %v", got)
	}
}

func TestRiskRandomForestStrategy(t *testing.T) {
	model := NewFinancialRiskModel(t.TempDir(), StrategyRandomForest, nil)
	if model.Metadata().ModelType != "RandomForest" {
		t.Fatalf("unexpected model type: %s", model.Metadata().ModelType)
	}
	features, targets := riskTrainingData(60)
	if err := model.Train(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := FeatureRecord{"income": 45000.0, "expenses": 20000.0}
	if got := model.Predict(rec); got < 0 || got > 100 {
		t.Fatalf("prediction out of range: %v", got)
	}
}
