package ml

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Loadable is anything with artifact-backed state that can be refreshed.
type Loadable interface {
	Load() error
}

// ArtifactReloader watches a models directory and reloads registered
// models after retraining. The metadata file is written last by Save, so a
// write to <prefix>_metadata.json marks a complete artifact set.
type ArtifactReloader struct {
	watcher *fsnotify.Watcher
	models  map[string]Loadable
	logger  *zap.Logger
}

func NewArtifactReloader(dir string, logger *zap.Logger) (*ArtifactReloader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	return &ArtifactReloader{
		watcher: watcher,
		models:  make(map[string]Loadable),
		logger:  logger,
	}, nil
}

// Register maps an artifact prefix ("risk", "layoff", "savings") to a
// model. Call before Start.
func (r *ArtifactReloader) Register(prefix string, model Loadable) {
	r.models[prefix] = model
}

func (r *ArtifactReloader) Start() {
	go r.loop()
}

func (r *ArtifactReloader) loop() {
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			for prefix, model := range r.models {
				if name != prefix+"_metadata.json" {
					continue
				}
				if err := model.Load(); err != nil {
					r.logger.Warn("model reload failed",
						zap.String("model", prefix), zap.Error(err))
					continue
				}
				r.logger.Info("model reloaded", zap.String("model", prefix))
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("artifact watcher error", zap.Error(err))
		}
	}
}

func (r *ArtifactReloader) Close() error {
	return r.watcher.Close()
}
