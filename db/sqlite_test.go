package db

import (
	"path/filepath"
	"testing"
	"time"
)

func TestTrainingRunRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	if err := InitDB(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer CloseDB()

	first := TrainingRun{
		ModelName:    "financial_risk",
		Version:      "2.0.0",
		Metrics:      map[string]float64{"rmse": 4.2, "r2": 0.91},
		TrainSamples: 800,
		TestSamples:  200,
		TrainedAt:    time.Now().UTC().Add(-time.Hour),
	}
	second := first
	second.Metrics = map[string]float64{"rmse": 3.9, "r2": 0.93}
	second.TrainedAt = time.Now().UTC()

	if err := SaveTrainingRun(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SaveTrainingRun(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runs, err := RecentTrainingRuns("financial_risk", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Metrics["rmse"] != 3.9 {
		t.Fatalf("expected newest run first, got %v", runs[0].Metrics)
	}
	if runs[0].TrainSamples != 800 || runs[0].TestSamples != 200 {
		t.Fatalf("unexpected sample counts: %+v", runs[0])
	}

	none, err := RecentTrainingRuns("unknown_model", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no runs, got %d", len(none))
	}
}

func TestRegistryRequiresInit(t *testing.T) {
	if database != nil {
		t.Skip("database already initialized")
	}
	if err := SaveTrainingRun(TrainingRun{ModelName: "x"}); err == nil {
		t.Fatal("expected error before InitDB")
	}
}
