package ml

import (
	"math"
	"testing"
)

func TestSavingsProjectionZeroMonths(t *testing.T) {
	model := NewSavingsProjectionModel(t.TempDir(), nil)
	rec := FeatureRecord{
		"current_savings":   12345.0,
		"monthly_savings":   1000.0,
		"months_to_project": 0,
	}
	if got := model.Predict(rec); got != 12345 {
		t.Fatalf("expected current savings unchanged, got %v", got)
	}
}

func TestSavingsProjectionZeroRate(t *testing.T) {
	model := NewSavingsProjectionModel(t.TempDir(), nil)
	rec := FeatureRecord{
		"current_savings":   1000.0,
		"monthly_savings":   100.0,
		"expected_return":   0.0,
		"months_to_project": 12,
	}
	if got := model.Predict(rec); got != 1000+100*12 {
		t.Fatalf("expected 2200, got %v", got)
	}
}

func TestSavingsProjectionGrowthOnly(t *testing.T) {
	model := NewSavingsProjectionModel(t.TempDir(), nil)
	rec := FeatureRecord{
		"current_savings":   10000.0,
		"monthly_savings":   0.0,
		"expected_return":   6.0,
		"months_to_project": 24,
	}
	want := 10000 * math.Pow(1+0.06/12, 24)
	if got := model.Predict(rec); math.Abs(got-want) > 1e-6 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCompoundMonthly(t *testing.T) {
	// deposit at the start of each month, then growth
	want := ((1000.0+100)*1.01 + 100) * 1.01
	if got := CompoundMonthly(1000, 100, 0.01, 2); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := CompoundMonthly(500, 100, 0.01, 0); got != 500 {
		t.Fatalf("expected 500 for zero months, got %v", got)
	}
}

func TestSavingsTrainPredictFloored(t *testing.T) {
	features, targets := GenerateSavingsDataset(150, 42)
	model := NewSavingsProjectionModel(t.TempDir(), nil)
	if err := model.Train(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score := model.Metadata().R2Score; score == nil || *score <= 0 {
		t.Fatalf("expected positive r2, got %v", score)
	}

	records := []FeatureRecord{
		{"current_savings": 0.0, "monthly_savings": 0.0, "months_to_project": 1},
		{"current_savings": 400000.0, "monthly_savings": 30000.0, "expected_return": 12.0, "months_to_project": 30},
	}
	for _, rec := range records {
		if got := model.Predict(rec); got < 0 {
			t.Fatalf("expected non-negative projection, got %v", got)
		}
	}
}

func TestSavingsSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	features, targets := GenerateSavingsDataset(120, 42)

	model := NewSavingsProjectionModel(dir, nil)
	if err := model.Train(features, targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := model.Save(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored := NewSavingsProjectionModel(dir, nil)
	if err := restored.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !restored.Trained() {
		t.Fatal("expected restored model to be trained")
	}

	rec := FeatureRecord{
		"current_savings":   50000.0,
		"monthly_savings":   2000.0,
		"expected_return":   8.0,
		"months_to_project": 18,
	}
	if want, got := model.Predict(rec), restored.Predict(rec); want != got {
		t.Fatalf("round trip mismatch: %v != %v", want, got)
	}
}

func TestSavingsLoadMissingArtifacts(t *testing.T) {
	model := NewSavingsProjectionModel(t.TempDir(), nil)
	if err := model.Load(); err != nil {
		t.Fatalf("expected nil error for missing artifacts, got %v", err)
	}
	if model.Trained() {
		t.Fatal("expected model to stay in fallback mode")
	}
}
