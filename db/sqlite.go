package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// TrainingRun is one recorded training of a model.
type TrainingRun struct {
	ID           int64
	ModelName    string
	Version      string
	Metrics      map[string]float64
	TrainSamples int
	TestSamples  int
	TrainedAt    time.Time
}

// InitDB initializes the SQLite database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS training_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50) NOT NULL,
        version VARCHAR(20),
        metrics TEXT,
        train_samples INTEGER,
        test_samples INTEGER,
        trained_at DATETIME NOT NULL
    );
    `

	_, err = database.Exec(query)
	return err
}

func CloseDB() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveTrainingRun records a completed training run.
func SaveTrainingRun(run TrainingRun) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return err
	}
	trainedAt := run.TrainedAt
	if trainedAt.IsZero() {
		trainedAt = time.Now().UTC()
	}
	_, err = database.Exec(`
        INSERT INTO training_runs (model_name, version, metrics, train_samples, test_samples, trained_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		run.ModelName, run.Version, string(metrics), run.TrainSamples, run.TestSamples, trainedAt)
	return err
}

// RecentTrainingRuns returns the latest runs for a model, newest first.
func RecentTrainingRuns(modelName string, limit int) ([]TrainingRun, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := database.Query(`
        SELECT id, model_name, version, metrics, train_samples, test_samples, trained_at
        FROM training_runs
        WHERE model_name = ?
        ORDER BY trained_at DESC, id DESC
        LIMIT ?`,
		modelName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]TrainingRun, 0)
	for rows.Next() {
		var run TrainingRun
		var metrics string
		if err := rows.Scan(&run.ID, &run.ModelName, &run.Version, &metrics,
			&run.TrainSamples, &run.TestSamples, &run.TrainedAt); err != nil {
			return nil, err
		}
		if metrics != "" {
			if err := json.Unmarshal([]byte(metrics), &run.Metrics); err != nil {
				return nil, err
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
