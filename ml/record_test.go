package ml

import (
	"encoding/json"
	"testing"
)

func TestFeatureRecordDefaults(t *testing.T) {
	rec := FeatureRecord{
		"income":   50000.0,
		"team":     7,
		"industry": "Retail",
		"bogus":    struct{}{},
	}

	if got := rec.Float("income", 0); got != 50000 {
		t.Fatalf("expected 50000, got %v", got)
	}
	if got := rec.Float("missing", 3.5); got != 3.5 {
		t.Fatalf("expected default 3.5, got %v", got)
	}
	if got := rec.Float("bogus", 1); got != 1 {
		t.Fatalf("expected default for wrong type, got %v", got)
	}
	if got := rec.Int("team", 0); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := rec.String("industry", "IT"); got != "Retail" {
		t.Fatalf("expected Retail, got %s", got)
	}
	if got := rec.String("missing", "IT"); got != "IT" {
		t.Fatalf("expected default IT, got %s", got)
	}
}

func TestFeatureRecordFromJSON(t *testing.T) {
	var rec FeatureRecord
	payload := []byte(`{"income": 42000, "months_to_project": 12}`)
	if err := json.Unmarshal(payload, &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Float("income", 0); got != 42000 {
		t.Fatalf("expected 42000, got %v", got)
	}
	if got := rec.Int("months_to_project", 0); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
}
