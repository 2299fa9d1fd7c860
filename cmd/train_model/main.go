package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"capstack/config"
	"capstack/db"
	"capstack/logging"
	"capstack/ml"
	"capstack/pipeline"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	samples := flag.Int("samples", 0, "synthetic samples per model (overrides config)")
	seed := flag.Uint64("seed", 0, "random seed (overrides config)")
	modelsDir := flag.String("models_dir", "", "model artifact directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}
	if *samples > 0 {
		cfg.Training.Samples = *samples
	}
	if *seed > 0 {
		cfg.Training.Seed = *seed
	}
	if *modelsDir != "" {
		cfg.Models.Dir = *modelsDir
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := db.InitDB(cfg.Database.Path); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.CloseDB()

	trainer := pipeline.NewTrainer(pipeline.Config{
		Samples:      cfg.Training.Samples,
		Seed:         cfg.Training.Seed,
		TestRatio:    cfg.Training.TestRatio,
		ModelsDir:    cfg.Models.Dir,
		RiskStrategy: ml.EstimatorStrategy(cfg.Models.RiskEstimator),
	}, logger)

	if err := trainer.Run(); err != nil {
		logger.Fatal("training pipeline failed", zap.Error(err))
	}
}
