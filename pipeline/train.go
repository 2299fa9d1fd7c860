package pipeline

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"capstack/db"
	"capstack/ml"
)

// Config controls one full training run.
type Config struct {
	Samples      int
	Seed         uint64
	TestRatio    float64
	ModelsDir    string
	RiskStrategy ml.EstimatorStrategy
}

// Trainer runs the synthetic-data training pipeline for all three models.
// The first failure aborts the remaining models; there is no partial
// recovery.
type Trainer struct {
	cfg    Config
	logger *zap.Logger
}

func NewTrainer(cfg Config, logger *zap.Logger) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Samples <= 0 {
		cfg.Samples = 1000
	}
	if cfg.TestRatio <= 0 || cfg.TestRatio >= 1 {
		cfg.TestRatio = 0.2
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = "models"
	}
	return &Trainer{cfg: cfg, logger: logger}
}

func (t *Trainer) Run() error {
	if err := os.MkdirAll(t.cfg.ModelsDir, 0o755); err != nil {
		return fmt.Errorf("create models dir: %w", err)
	}

	if err := t.trainRiskModel(); err != nil {
		t.logger.Error("risk model training failed", zap.Error(err))
		return fmt.Errorf("train risk model: %w", err)
	}
	if err := t.trainLayoffModel(); err != nil {
		t.logger.Error("layoff model training failed", zap.Error(err))
		return fmt.Errorf("train layoff model: %w", err)
	}
	if err := t.trainSavingsModel(); err != nil {
		t.logger.Error("savings model training failed", zap.Error(err))
		return fmt.Errorf("train savings model: %w", err)
	}

	t.logger.Info("all models trained", zap.String("models_dir", t.cfg.ModelsDir))
	return nil
}

func (t *Trainer) trainRiskModel() error {
	features, labels := ml.GenerateRiskDataset(t.cfg.Samples, t.cfg.Seed)
	trainX, trainY, testX, testY := splitDataset(features, labels, t.cfg.TestRatio, t.cfg.Seed)

	model := ml.NewFinancialRiskModel(t.cfg.ModelsDir, t.cfg.RiskStrategy, t.logger)
	if err := model.Train(trainX, trainY); err != nil {
		return err
	}

	predictions, err := model.PredictBatch(testX)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	rmse := ml.RMSE(testY, predictions)
	r2 := ml.RSquared(testY, predictions)
	t.logger.Info("risk model evaluated",
		zap.Float64("rmse", rmse),
		zap.Float64("r2", r2),
		zap.Int("test_samples", len(testY)))

	if err := model.Save(); err != nil {
		return err
	}
	t.recordRun("financial_risk", model.Metadata().Version, map[string]float64{
		"rmse": rmse,
		"r2":   r2,
	}, len(trainY), len(testY))
	return nil
}

func (t *Trainer) trainLayoffModel() error {
	features, labels := ml.GenerateLayoffDataset(t.cfg.Samples, t.cfg.Seed)
	trainX, trainY, testX, testY := splitDataset(features, labels, t.cfg.TestRatio, t.cfg.Seed)

	model := ml.NewLayoffRiskModel(t.cfg.ModelsDir, t.logger)
	if err := model.Train(trainX, trainY); err != nil {
		return err
	}

	probabilities, err := model.PredictBatch(testX)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	actual := make([]int, len(testY))
	predicted := make([]int, len(testY))
	for i := range testY {
		actual[i] = int(testY[i])
		if probabilities[i] > 0.5 {
			predicted[i] = 1
		}
	}
	accuracy := ml.Accuracy(actual, predicted)
	precision, recall, f1 := ml.PrecisionRecallF1(actual, predicted)
	cm := ml.ConfusionMatrix(actual, predicted)
	t.logger.Info("layoff model evaluated",
		zap.Float64("accuracy", accuracy),
		zap.Float64("precision", precision),
		zap.Float64("recall", recall),
		zap.Float64("f1", f1),
		zap.Ints("confusion_tn_fp", []int{cm[0][0], cm[0][1]}),
		zap.Ints("confusion_fn_tp", []int{cm[1][0], cm[1][1]}),
		zap.Int("test_samples", len(testY)))

	if err := model.Save(); err != nil {
		return err
	}
	t.recordRun("layoff_risk", model.Metadata().Version, map[string]float64{
		"accuracy":  accuracy,
		"precision": precision,
		"recall":    recall,
		"f1":        f1,
		"tn":        float64(cm[0][0]),
		"fp":        float64(cm[0][1]),
		"fn":        float64(cm[1][0]),
		"tp":        float64(cm[1][1]),
	}, len(trainY), len(testY))
	return nil
}

func (t *Trainer) trainSavingsModel() error {
	features, labels := ml.GenerateSavingsDataset(t.cfg.Samples, t.cfg.Seed)
	trainX, trainY, testX, testY := splitDataset(features, labels, t.cfg.TestRatio, t.cfg.Seed)

	model := ml.NewSavingsProjectionModel(t.cfg.ModelsDir, t.logger)
	if err := model.Train(trainX, trainY); err != nil {
		return err
	}

	predictions, err := model.PredictBatch(testX)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	rmse := ml.RMSE(testY, predictions)
	r2 := ml.RSquared(testY, predictions)
	mape := ml.MAPE(testY, predictions)
	t.logger.Info("savings model evaluated",
		zap.Float64("rmse", rmse),
		zap.Float64("r2", r2),
		zap.Float64("mape", mape),
		zap.Int("test_samples", len(testY)))

	if err := model.Save(); err != nil {
		return err
	}
	t.recordRun("savings_projection", model.Metadata().Version, map[string]float64{
		"rmse": rmse,
		"r2":   r2,
		"mape": mape,
	}, len(trainY), len(testY))
	return nil
}

// recordRun writes a row to the training registry. Registry failures are
// logged but never fail the pipeline.
func (t *Trainer) recordRun(modelName, version string, metrics map[string]float64, trainSamples, testSamples int) {
	run := db.TrainingRun{
		ModelName:    modelName,
		Version:      version,
		Metrics:      metrics,
		TrainSamples: trainSamples,
		TestSamples:  testSamples,
		TrainedAt:    time.Now().UTC(),
	}
	if err := db.SaveTrainingRun(run); err != nil {
		t.logger.Warn("failed to record training run",
			zap.String("model", modelName), zap.Error(err))
	}
}

func splitDataset(features [][]float64, labels []float64, testRatio float64, seed uint64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(features))

	split := int(float64(len(features)) * (1 - testRatio))
	for i, idx := range perm {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}
