package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the top-level service configuration.
type Config struct {
	Models struct {
		Dir           string `yaml:"dir"`
		RiskEstimator string `yaml:"risk_estimator"`
	} `yaml:"models"`
	Training struct {
		Samples   int     `yaml:"samples"`
		Seed      uint64  `yaml:"seed"`
		TestRatio float64 `yaml:"test_ratio"`
	} `yaml:"training"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port           int `yaml:"port"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

func Default() *Config {
	var cfg Config
	cfg.Models.Dir = "models"
	cfg.Models.RiskEstimator = "gradient_boosting"
	cfg.Training.Samples = 1000
	cfg.Training.Seed = 42
	cfg.Training.TestRatio = 0.2
	cfg.Database.Path = "capstack.db"
	cfg.Http.Port = 8080
	cfg.Http.TimeoutSeconds = 30
	cfg.Log.Level = "info"
	return &cfg
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := Default()
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
