package ml

import (
	"encoding/json"
	"math"
	"testing"
)

func TestStandardScalerFitTransform(t *testing.T) {
	features := [][]float64{
		{1, 10},
		{2, 10},
		{3, 10},
	}
	scaler := NewStandardScaler()
	if err := scaler.Fit(features); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scaled, err := scaler.Transform(features)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(scaled[1][0]) > 1e-9 {
		t.Fatalf("expected centered middle value, got %v", scaled[1][0])
	}
	// zero-spread column keeps its centered values via std=1
	if scaled[0][1] != 0 || scaled[2][1] != 0 {
		t.Fatalf("expected constant column to scale to zero, got %v and %v", scaled[0][1], scaled[2][1])
	}
}

func TestStandardScalerErrors(t *testing.T) {
	scaler := NewStandardScaler()
	if err := scaler.Fit(nil); err == nil {
		t.Fatal("expected error for empty matrix")
	}
	if _, err := scaler.TransformRow([]float64{1}); err == nil {
		t.Fatal("expected error before fit")
	}

	if err := scaler.Fit([][]float64{{1, 2}, {3, 4}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := scaler.TransformRow([]float64{1}); err == nil {
		t.Fatal("expected error for mismatched row length")
	}
}

func TestStandardScalerRoundTrip(t *testing.T) {
	scaler := NewStandardScaler()
	if err := scaler.Fit([][]float64{{1, 5}, {2, 7}, {4, 9}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload, err := json.Marshal(scaler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	restored := NewStandardScaler()
	if err := json.Unmarshal(payload, restored); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := []float64{3, 6}
	want, err := scaler.TransformRow(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := restored.TransformRow(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("round trip mismatch at %d: %v != %v", i, want[i], got[i])
		}
	}
}
