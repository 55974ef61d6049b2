// Package registry persists metadata about trained model artifacts in a
// SQLite catalog: which agent trained what, on which dataset, where the
// artifact bytes live, and the training metrics.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	loomerrors "github.com/loomhr/loom/internal/errors"
)

// ErrModelNotFound is returned when no matching model record exists.
var ErrModelNotFound = errors.New("registry: model not found")

// ModelRecord describes one trained model artifact.
type ModelRecord struct {
	ModelID            string
	Agent              string
	DatasetFingerprint string
	RowCount           int64
	FeatureCount       int64
	ArtifactPath       string
	TrainedAt          time.Time
	Metrics            map[string]float64
}

// Registry manages model metadata.
type Registry interface {
	// Record stores a new trained-model record.
	Record(ctx context.Context, rec *ModelRecord) error

	// Latest returns the most recently trained model for the agent.
	Latest(ctx context.Context, agent string) (*ModelRecord, error)

	// Get retrieves a model record by ID.
	Get(ctx context.Context, modelID string) (*ModelRecord, error)

	// List returns all records for the agent, newest first.
	List(ctx context.Context, agent string) ([]*ModelRecord, error)

	// Close closes the registry database connection.
	Close() error
}

// SQLiteRegistry implements Registry using SQLite.
type SQLiteRegistry struct {
	db *sql.DB
	mu sync.Mutex // serializes writes
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS models (
	model_id            TEXT PRIMARY KEY,
	agent               TEXT NOT NULL,
	dataset_fingerprint TEXT NOT NULL,
	row_count           INTEGER NOT NULL,
	feature_count       INTEGER NOT NULL,
	artifact_path       TEXT NOT NULL,
	trained_at          INTEGER NOT NULL,
	metrics             TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_models_agent_trained
	ON models(agent, trained_at DESC);
`

// NewSQLiteRegistry opens (or creates) the registry database at dbPath.
func NewSQLiteRegistry(dbPath string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("registry: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // Single writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: failed to initialize schema: %w", err)
	}

	return &SQLiteRegistry{db: db}, nil
}

// Record stores a new trained-model record.
func (r *SQLiteRegistry) Record(ctx context.Context, rec *ModelRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	metrics := rec.Metrics
	if metrics == nil {
		metrics = map[string]float64{}
	}
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return loomerrors.NewInternalError("failed to encode model metrics", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO models (
			model_id, agent, dataset_fingerprint,
			row_count, feature_count, artifact_path, trained_at, metrics
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ModelID, rec.Agent, rec.DatasetFingerprint,
		rec.RowCount, rec.FeatureCount, rec.ArtifactPath,
		rec.TrainedAt.Unix(), string(metricsJSON),
	)
	if err != nil {
		return fmt.Errorf("registry: failed to insert model record: %w", err)
	}
	return nil
}

// Latest returns the most recently trained model for the agent.
func (r *SQLiteRegistry) Latest(ctx context.Context, agent string) (*ModelRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT model_id, agent, dataset_fingerprint,
		       row_count, feature_count, artifact_path, trained_at, metrics
		FROM models
		WHERE agent = ?
		ORDER BY trained_at DESC, model_id DESC
		LIMIT 1`, agent)
	return scanRecord(row)
}

// Get retrieves a model record by ID.
func (r *SQLiteRegistry) Get(ctx context.Context, modelID string) (*ModelRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT model_id, agent, dataset_fingerprint,
		       row_count, feature_count, artifact_path, trained_at, metrics
		FROM models
		WHERE model_id = ?`, modelID)
	return scanRecord(row)
}

// List returns all records for the agent, newest first.
func (r *SQLiteRegistry) List(ctx context.Context, agent string) ([]*ModelRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT model_id, agent, dataset_fingerprint,
		       row_count, feature_count, artifact_path, trained_at, metrics
		FROM models
		WHERE agent = ?
		ORDER BY trained_at DESC, model_id DESC`, agent)
	if err != nil {
		return nil, fmt.Errorf("registry: failed to list models: %w", err)
	}
	defer rows.Close()

	var records []*ModelRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("registry: failed to scan model records: %w", err)
	}
	return records, nil
}

// Close closes the registry database connection.
func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*ModelRecord, error) {
	var rec ModelRecord
	var trainedAt int64
	var metricsJSON string

	err := s.Scan(&rec.ModelID, &rec.Agent, &rec.DatasetFingerprint,
		&rec.RowCount, &rec.FeatureCount, &rec.ArtifactPath,
		&trainedAt, &metricsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrModelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("registry: failed to scan model record: %w", err)
	}

	rec.TrainedAt = time.Unix(trainedAt, 0).UTC()
	rec.Metrics = map[string]float64{}
	if err := json.Unmarshal([]byte(metricsJSON), &rec.Metrics); err != nil {
		return nil, fmt.Errorf("registry: corrupt metrics for model %s: %w", rec.ModelID, err)
	}
	return &rec, nil
}
