package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"capstack/config"
	"capstack/db"
	qhttp "capstack/http"
	"capstack/logging"
	"capstack/ml"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Initialize database
	if err := db.InitDB(cfg.Database.Path); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.CloseDB()
	logger.Info("database initialized", zap.String("path", cfg.Database.Path))

	// 3. Construct models and load artifacts (fallback mode when absent)
	risk := ml.NewFinancialRiskModel(cfg.Models.Dir, ml.EstimatorStrategy(cfg.Models.RiskEstimator), logger)
	layoff := ml.NewLayoffRiskModel(cfg.Models.Dir, logger)
	savings := ml.NewSavingsProjectionModel(cfg.Models.Dir, logger)
	if err := risk.Load(); err != nil {
		logger.Fatal("failed to load risk model", zap.Error(err))
	}
	if err := layoff.Load(); err != nil {
		logger.Fatal("failed to load layoff model", zap.Error(err))
	}
	if err := savings.Load(); err != nil {
		logger.Fatal("failed to load savings model", zap.Error(err))
	}

	// 4. Reload models when retrained artifacts land on disk
	reloader, err := ml.NewArtifactReloader(cfg.Models.Dir, logger)
	if err != nil {
		logger.Fatal("failed to start artifact reloader", zap.Error(err))
	}
	defer reloader.Close()
	reloader.Register("risk", risk)
	reloader.Register("layoff", layoff)
	reloader.Register("savings", savings)
	reloader.Start()

	// 5. Start HTTP server
	serverCfg := qhttp.DefaultServerConfig()
	serverCfg.Port = cfg.Http.Port
	if cfg.Http.TimeoutSeconds > 0 {
		serverCfg.Timeout = time.Duration(cfg.Http.TimeoutSeconds) * time.Second
	}
	server, err := qhttp.NewServer(serverCfg, qhttp.Predictors{
		Risk:    risk,
		Layoff:  layoff,
		Savings: savings,
	}, logger)
	if err != nil {
		logger.Fatal("failed to build HTTP server", zap.Error(err))
	}
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 6. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}
