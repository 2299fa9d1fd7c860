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

const savingsModelVersion = "1.0.0"

// SavingsProjectionModel predicts a future savings balance. Untrained
// instances answer with the closed-form compound-growth projection; trained
// predictions are floored at 0.
type SavingsProjectionModel struct {
	mu        sync.RWMutex
	estimator *RandomForestRegressor
	scaler    *StandardScaler
	trained   bool
	meta      Metadata
	dir       string
	logger    *zap.Logger
}

func NewSavingsProjectionModel(dir string, logger *zap.Logger) *SavingsProjectionModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SavingsProjectionModel{
		estimator: NewRandomForestRegressor(100, 12, 2, 42),
		scaler:    NewStandardScaler(),
		meta: Metadata{
			Version: savingsModelVersion,
			Created: time.Now().UTC().Format(time.RFC3339),
			R2Score: new(float64),
		},
		dir:    dir,
		logger: logger,
	}
}

func (m *SavingsProjectionModel) PrepareFeatures(rec FeatureRecord) []float64 {
	return []float64{
		rec.Float("current_savings", 0),
		rec.Float("monthly_savings", 0),
		rec.Float("expected_return", 7),
		rec.Float("inflation_rate", 3.5),
		rec.Float("months_to_project", 12),
		rec.Float("investment_type", 0),
	}
}

func (m *SavingsProjectionModel) Predict(rec FeatureRecord) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.trained {
		return calculateProjection(rec)
	}
	scaled, err := m.scaler.TransformRow(m.PrepareFeatures(rec))
	if err != nil {
		m.logger.Warn("savings feature scaling failed, using projection formula", zap.Error(err))
		return calculateProjection(rec)
	}
	value, err := m.estimator.Predict(scaled)
	if err != nil {
		m.logger.Warn("savings prediction failed, using projection formula", zap.Error(err))
		return calculateProjection(rec)
	}
	return math.Max(0, value)
}

// calculateProjection is the closed-form annuity formula:
// current*(1+r)^n + monthly*((1+r)^n - 1)/r with end-of-month deposits.
func calculateProjection(rec FeatureRecord) float64 {
	current := rec.Float("current_savings", 0)
	monthly := rec.Float("monthly_savings", 0)
	rate := rec.Float("expected_return", 7) / 100 / 12
	months := rec.Int("months_to_project", 12)

	if months <= 0 {
		return current
	}
	if rate == 0 {
		return current + monthly*float64(months)
	}
	growth := math.Pow(1+rate, float64(months))
	return current*growth + monthly*(growth-1)/rate
}

// CompoundMonthly compounds a balance month by month with a deposit at the
// start of each month. O(months) per call; deliberately iterative so the
// result reflects exact deposit timing rather than the closed-form annuity
// approximation used by the fallback.
func CompoundMonthly(current, monthly, monthlyRate float64, months int) float64 {
	future := current
	for i := 0; i < months; i++ {
		future = (future + monthly) * (1 + monthlyRate)
	}
	return future
}

func (m *SavingsProjectionModel) Train(features [][]float64, targets []float64) error {
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
	m.meta.R2Score = &score
	m.logger.Info("savings model trained",
		zap.Float64("r2", score),
		zap.Int("samples", len(features)))
	return nil
}

// PredictBatch runs the raw estimator over unscaled rows without flooring.
func (m *SavingsProjectionModel) PredictBatch(features [][]float64) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scaled, err := m.scaler.Transform(features)
	if err != nil {
		return nil, err
	}
	return predictBatch(m.estimator, scaled)
}

func (m *SavingsProjectionModel) Save() error {
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
	m.logger.Info("savings model saved", zap.String("path", m.modelPath()))
	return nil
}

func (m *SavingsProjectionModel) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !artifactsExist(m.modelPath(), m.scalerPath()) {
		m.logger.Warn("savings model not found, using projection calculations",
			zap.String("dir", m.dir))
		return nil
	}

	estimator := &RandomForestRegressor{}
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
	m.logger.Info("savings model loaded")
	return nil
}

func (m *SavingsProjectionModel) Trained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}

func (m *SavingsProjectionModel) Metadata() Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta
}

func (m *SavingsProjectionModel) modelPath() string {
	return filepath.Join(m.dir, "savings_model.json")
}

func (m *SavingsProjectionModel) scalerPath() string {
	return filepath.Join(m.dir, "savings_scaler.json")
}

func (m *SavingsProjectionModel) metadataPath() string {
	return filepath.Join(m.dir, "savings_metadata.json")
}
