package ml

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeLoadable struct {
	loaded chan struct{}
}

func (f *fakeLoadable) Load() error {
	select {
	case f.loaded <- struct{}{}:
	default:
	}
	return nil
}

func TestArtifactReloader(t *testing.T) {
	dir := t.TempDir()
	reloader, err := NewArtifactReloader(dir, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reloader.Close()

	model := &fakeLoadable{loaded: make(chan struct{}, 1)}
	reloader.Register("risk", model)
	reloader.Start()

	// unrelated files are ignored
	if err := os.WriteFile(filepath.Join(dir, "risk_scaler.json"), []byte("{}"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-model.loaded:
		t.Fatal("expected no reload for non-metadata file")
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(filepath.Join(dir, "risk_metadata.json"), []byte("{}"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-model.loaded:
	case <-time.After(3 * time.Second):
		t.Fatal("expected reload after metadata write")
	}
}
