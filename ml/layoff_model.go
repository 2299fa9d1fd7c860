package ml

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const layoffModelVersion = "1.0.0"

var industryCodes = map[string]float64{
	"IT":            1,
	"Manufacturing": 2,
	"Retail":        3,
	"Finance":       4,
	"Healthcare":    5,
}

var industryBaseRisk = map[string]float64{
	"IT":            0.15,
	"Manufacturing": 0.25,
	"Retail":        0.35,
	"Finance":       0.20,
	"Healthcare":    0.10,
}

// LayoffRiskModel predicts the probability of a layoff. Trained instances
// return the classifier's positive-class probability; untrained ones use
// the industry/experience rule capped at 0.9.
type LayoffRiskModel struct {
	mu        sync.RWMutex
	estimator *GradientBoostingClassifier
	scaler    *StandardScaler
	trained   bool
	meta      Metadata
	dir       string
	logger    *zap.Logger
}

func NewLayoffRiskModel(dir string, logger *zap.Logger) *LayoffRiskModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LayoffRiskModel{
		estimator: NewGradientBoostingClassifier(100, 5, 0.1, 42),
		scaler:    NewStandardScaler(),
		meta: Metadata{
			Version:       layoffModelVersion,
			Created:       time.Now().UTC().Format(time.RFC3339),
			AccuracyScore: new(float64),
		},
		dir:    dir,
		logger: logger,
	}
}

func (m *LayoffRiskModel) PrepareFeatures(rec FeatureRecord) []float64 {
	industry, ok := industryCodes[rec.String("industry", "IT")]
	if !ok {
		industry = 1
	}
	permanent := 0.0
	if rec.String("contract_type", "") == "permanent" {
		permanent = 1
	}
	return []float64{
		industry,
		rec.Float("experience_years", 5),
		rec.Float("company_age", 10),
		rec.Float("team_size", 10),
		permanent,
		rec.Float("performance_rating", 3),
	}
}

func (m *LayoffRiskModel) Predict(rec FeatureRecord) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.trained {
		return ruleBasedLayoffRisk(rec)
	}
	scaled, err := m.scaler.TransformRow(m.PrepareFeatures(rec))
	if err != nil {
		m.logger.Warn("layoff feature scaling failed, using rule-based risk", zap.Error(err))
		return ruleBasedLayoffRisk(rec)
	}
	prob, err := m.estimator.PredictProba(scaled)
	if err != nil {
		m.logger.Warn("layoff prediction failed, using rule-based risk", zap.Error(err))
		return ruleBasedLayoffRisk(rec)
	}
	return prob
}

func ruleBasedLayoffRisk(rec FeatureRecord) float64 {
	base, ok := industryBaseRisk[rec.String("industry", "IT")]
	if !ok {
		base = 0.2
	}
	experience := math.Max(1, rec.Float("experience_years", 1))
	factor := math.Max(0.5, experience/10)
	return math.Min(base/factor, 0.9)
}

func (m *LayoffRiskModel) Train(features [][]float64, labels []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.scaler.Fit(features); err != nil {
		return fmt.Errorf("fit scaler: %w", err)
	}
	scaled, err := m.scaler.Transform(features)
	if err != nil {
		return fmt.Errorf("scale features: %w", err)
	}
	if err := m.estimator.Fit(scaled, labels); err != nil {
		return fmt.Errorf("fit estimator: %w", err)
	}
	m.trained = true

	correct := 0
	for i, row := range scaled {
		prob, err := m.estimator.PredictProba(row)
		if err != nil {
			return fmt.Errorf("score training set: %w", err)
		}
		predicted := 0.0
		if prob > 0.5 {
			predicted = 1
		}
		if predicted == labels[i] {
			correct++
		}
	}
	score := float64(correct) / float64(len(labels))
	m.meta.AccuracyScore = &score
	m.logger.Info("layoff model trained",
		zap.Float64("accuracy", score),
		zap.Int("samples", len(features)))
	return nil
}

// PredictBatch returns positive-class probabilities for unscaled rows.
func (m *LayoffRiskModel) PredictBatch(features [][]float64) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scaled, err := m.scaler.Transform(features)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(scaled))
	for i, row := range scaled {
		prob, err := m.estimator.PredictProba(row)
		if err != nil {
			return nil, err
		}
		out[i] = prob
	}
	return out, nil
}

func (m *LayoffRiskModel) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(m.modelPath(), m.estimator); err != nil {
		return fmt.Errorf("save estimator: %w", err)
	}
	if err := writeJSON(m.scalerPath(), m.scaler); err != nil {
		return fmt.Errorf("save scaler: %w", err)
	}
	if err := writeJSON(m.metadataPath(), m.meta); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	m.logger.Info("layoff model saved", zap.String("path", m.modelPath()))
	return nil
}

func (m *LayoffRiskModel) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !artifactsExist(m.modelPath(), m.scalerPath()) {
		m.logger.Warn("layoff model not found, using rule-based predictions",
			zap.String("dir", m.dir))
		return nil
	}

	estimator := &GradientBoostingClassifier{}
	if err := readJSON(m.modelPath(), estimator); err != nil {
		return fmt.Errorf("load estimator: %w", err)
	}
	scaler := NewStandardScaler()
	if err := readJSON(m.scalerPath(), scaler); err != nil {
		return fmt.Errorf("load scaler: %w", err)
	}
	meta := m.meta
	if artifactsExist(m.metadataPath()) {
		if err := readJSON(m.metadataPath(), &meta); err != nil {
			return fmt.Errorf("load metadata: %w", err)
		}
	}

	m.estimator = estimator
	m.scaler = scaler
	m.meta = meta
	m.trained = true
	m.logger.Info("layoff model loaded")
	return nil
}

func (m *LayoffRiskModel) Trained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}

func (m *LayoffRiskModel) Metadata() Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta
}

func (m *LayoffRiskModel) modelPath() string  { return filepath.Join(m.dir, "layoff_model.json") }
func (m *LayoffRiskModel) scalerPath() string { return filepath.Join(m.dir, "layoff_scaler.json") }
func (m *LayoffRiskModel) metadataPath() string {
	return filepath.Join(m.dir, "layoff_metadata.json")
}
