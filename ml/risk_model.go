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

const riskModelVersion = "2.0.0"

var riskFeatureNames = []string{
	"income",
	"expenses",
	"savings",
	"debt",
	"debt_to_income",
	"savings_to_income",
	"expense_to_income",
}

// FinancialRiskModel scores financial risk in [0,100]. Untrained instances
// answer with the rule-based formula; trained ones run the configured
// ensemble over scaled features.
type FinancialRiskModel struct {
	mu        sync.RWMutex
	estimator Regressor
	scaler    *StandardScaler
	trained   bool
	meta      Metadata
	dir       string
	strategy  EstimatorStrategy
	logger    *zap.Logger
}

func NewFinancialRiskModel(dir string, strategy EstimatorStrategy, logger *zap.Logger) *FinancialRiskModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strategy != StrategyRandomForest {
		strategy = StrategyGradientBoosting
	}
	m := &FinancialRiskModel{
		scaler:   NewStandardScaler(),
		dir:      dir,
		strategy: strategy,
		logger:   logger,
	}
	m.estimator = newRiskEstimator(strategy)
	m.meta = Metadata{
		Version:       riskModelVersion,
		Created:       time.Now().UTC().Format(time.RFC3339),
		AccuracyScore: new(float64),
		ModelType:     riskModelType(strategy),
		Features:      riskFeatureNames,
	}
	return m
}

func newRiskEstimator(strategy EstimatorStrategy) Regressor {
	if strategy == StrategyRandomForest {
		return NewRandomForestRegressor(200, 12, 5, 42)
	}
	return NewGradientBoostingRegressor(200, 8, 0.05, 0.8, 0.1, 0.1, 42)
}

func riskModelType(strategy EstimatorStrategy) string {
	if strategy == StrategyRandomForest {
		return "RandomForest"
	}
	return "GradientBoosting"
}

// PrepareFeatures builds the fixed-order serving vector. Income is floored
// at 1 in the ratio denominators.
func (m *FinancialRiskModel) PrepareFeatures(rec FeatureRecord) []float64 {
	income := rec.Float("income", 0)
	expenses := rec.Float("expenses", 0)
	savings := rec.Float("savings", 0)
	debt := rec.Float("debt", 0)
	denom := math.Max(income, 1)
	return []float64{
		income,
		expenses,
		savings,
		debt,
		debt / denom,
		savings / denom,
		expenses / denom,
	}
}

func (m *FinancialRiskModel) Predict(rec FeatureRecord) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.trained {
		return ruleBasedRisk(rec)
	}
	scaled, err := m.scaler.TransformRow(m.PrepareFeatures(rec))
	if err != nil {
		m.logger.Warn("risk feature scaling failed, using rule-based score", zap.Error(err))
		return ruleBasedRisk(rec)
	}
	score, err := m.estimator.Predict(scaled)
	if err != nil {
		m.logger.Warn("risk prediction failed, using rule-based score", zap.Error(err))
		return ruleBasedRisk(rec)
	}
	return clamp(score, 0, 100)
}

func ruleBasedRisk(rec FeatureRecord) float64 {
	income := rec.Float("income", 1)
	expenseRatio, savingsRatio, debtRatio := 1.0, 0.0, 1.0
	if income > 0 {
		expenseRatio = rec.Float("expenses", 0) / income
		savingsRatio = rec.Float("savings", 0) / income
		debtRatio = rec.Float("debt", 0) / income
	}
	risk := (expenseRatio*0.5 + (1-savingsRatio)*0.3 + debtRatio*0.2) * 100
	return clamp(risk, 0, 100)
}

func (m *FinancialRiskModel) Train(features [][]float64, targets []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.scaler.Fit(features); err != nil {
		return fmt.Errorf("fit scaler: %w", err)
	}
	scaled, err := m.scaler.Transform(features)
	if err != nil {
		return fmt.Errorf("scale features: %w", err)
	}
	if err := m.estimator.Fit(scaled, targets); err != nil {
		return fmt.Errorf("fit estimator: %w", err)
	}
	m.trained = true

	predictions, err := predictBatch(m.estimator, scaled)
	if err != nil {
		return fmt.Errorf("score training set: %w", err)
	}
	score := RSquared(targets, predictions)
	m.meta.AccuracyScore = &score
	m.logger.Info("risk model trained",
		zap.Float64("accuracy", score),
		zap.Int("samples", len(features)))
	return nil
}

// PredictBatch runs the raw estimator over unscaled rows, scaling each one
// first. Used for held-out evaluation; output is not clamped.
func (m *FinancialRiskModel) PredictBatch(features [][]float64) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scaled, err := m.scaler.Transform(features)
	if err != nil {
		return nil, err
	}
	return predictBatch(m.estimator, scaled)
}

func (m *FinancialRiskModel) Save() error {
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
	m.logger.Info("risk model saved", zap.String("path", m.modelPath()))
	return nil
}

// Load replaces the estimator and scaler from disk. Missing artifacts leave
// the model in rule-based mode; only corrupt artifacts return an error.
func (m *FinancialRiskModel) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !artifactsExist(m.modelPath(), m.scalerPath()) {
		m.logger.Warn("risk model not found, using rule-based predictions",
			zap.String("dir", m.dir))
		return nil
	}

	meta := m.meta
	if artifactsExist(m.metadataPath()) {
		if err := readJSON(m.metadataPath(), &meta); err != nil {
			return fmt.Errorf("load metadata: %w", err)
		}
	}
	estimator := newRiskEstimatorForType(meta.ModelType)
	if err := readJSON(m.modelPath(), estimator); err != nil {
		return fmt.Errorf("load estimator: %w", err)
	}
	scaler := NewStandardScaler()
	if err := readJSON(m.scalerPath(), scaler); err != nil {
		return fmt.Errorf("load scaler: %w", err)
	}

	m.estimator = estimator
	m.scaler = scaler
	m.meta = meta
	m.trained = true
	m.logger.Info("risk model loaded", zap.String("model_type", meta.ModelType))
	return nil
}

func newRiskEstimatorForType(modelType string) Regressor {
	if modelType == "RandomForest" {
		return &RandomForestRegressor{}
	}
	return &GradientBoostingRegressor{}
}

func (m *FinancialRiskModel) Trained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}

func (m *FinancialRiskModel) Metadata() Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta
}

func (m *FinancialRiskModel) modelPath() string    { return filepath.Join(m.dir, "risk_model.json") }
func (m *FinancialRiskModel) scalerPath() string   { return filepath.Join(m.dir, "risk_scaler.json") }
func (m *FinancialRiskModel) metadataPath() string { return filepath.Join(m.dir, "risk_metadata.json") }
