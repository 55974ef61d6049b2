// Package integration provides end-to-end integration tests for Loom.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/loomhr/loom/internal/agents"
	apihttp "github.com/loomhr/loom/internal/api/http"
	"github.com/loomhr/loom/internal/dataset"
	"github.com/loomhr/loom/internal/model"
	"github.com/loomhr/loom/internal/registry"
	"github.com/loomhr/loom/internal/storage"
	"github.com/loomhr/loom/internal/synth"
)

// testEnv bundles the wired service components backed by a temp directory.
type testEnv struct {
	router   http.Handler
	registry registry.Registry
	dir      string
}

func newTestEnv(t *testing.T, dir string) *testEnv {
	t.Helper()

	store, err := storage.NewLocalStorage(filepath.Join(dir, "artifacts"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	reg, err := registry.NewSQLiteRegistry(filepath.Join(dir, "registry.db"))
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	t.Cleanup(func() { reg.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	attrition, err := agents.NewAttrition(model.NewArtifactStore(store), reg,
		agents.WithForestConfig(model.ForestConfig{NumTrees: 10, MaxDepth: 6, MinLeafSize: 2, Seed: 42}),
		agents.WithAttritionLogger(logger),
	)
	if err != nil {
		t.Fatalf("failed to create attrition agent: %v", err)
	}

	diversity, err := agents.NewDiversity()
	if err != nil {
		t.Fatalf("failed to create diversity agent: %v", err)
	}

	simulation, err := agents.NewSimulation()
	if err != nil {
		t.Fatalf("failed to create simulation agent: %v", err)
	}

	handlers, err := apihttp.NewHandlers(
		attrition,
		diversity,
		agents.NewPlanning(),
		agents.NewProductivity(),
		simulation,
		agents.NewSkillGap(nil),
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create handlers: %v", err)
	}

	return &testEnv{router: handlers.Router(), registry: reg, dir: dir}
}

func (e *testEnv) postCSV(t *testing.T, path string, table *dataset.Table) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, table); err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// TestAnalysisFlow tests the end-to-end analysis flow:
// synthetic CSV → validate → attrition analysis (lazy training) →
// registry record → feature importance.
func TestAnalysisFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, t.TempDir())
	table := synth.New(42).Generate(150)

	// Validate the dataset first.
	rec := env.postCSV(t, "/api/datasets/validate", table)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// First analysis trains a model.
	rec = env.postCSV(t, "/api/attrition/analyze", table)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	predictions, ok := result["predictions"].([]any)
	if !ok || len(predictions) != 150 {
		t.Fatalf("expected 150 predictions, got %v", result["predictions"])
	}

	// The training run must be recorded in the registry.
	latest, err := env.registry.Latest(ctx, agents.AgentAttrition)
	if err != nil {
		t.Fatalf("expected a model record: %v", err)
	}
	if latest.RowCount != 150 {
		t.Errorf("expected row count 150, got %d", latest.RowCount)
	}
	if latest.DatasetFingerprint != dataset.Fingerprint(table) {
		t.Errorf("registry fingerprint does not match the training dataset")
	}

	// Feature importance is served from the trained model.
	rec = env.get(t, "/api/attrition/feature-importance")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// A second analysis reuses the stored model.
	rec = env.postCSV(t, "/api/attrition/analyze", table)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	records, err := env.registry.List(ctx, agents.AgentAttrition)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 model record after reuse, got %d", len(records))
	}
}

// TestModelSurvivesRestart tests that a trained model is picked up by a
// fresh process wired against the same data directory.
func TestModelSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	table := synth.New(42).Generate(150)

	env := newTestEnv(t, dir)
	rec := env.postCSV(t, "/api/attrition/analyze", table)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Simulate a restart: same directory, new components.
	restarted := newTestEnv(t, dir)

	// Feature importance works without retraining.
	rec = restarted.get(t, "/api/attrition/feature-importance")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 after restart, got %d: %s", rec.Code, rec.Body.String())
	}

	records, err := restarted.registry.List(context.Background(), agents.AgentAttrition)
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 model record after restart, got %d", len(records))
	}
}

// TestValidationRejectedBeforeTraining tests that invalid datasets never
// reach the training pipeline.
func TestValidationRejectedBeforeTraining(t *testing.T) {
	env := newTestEnv(t, t.TempDir())
	table := synth.New(42).Generate(20)

	// Corrupt a required column.
	col, _ := table.Column("Age")
	col.Ints[0] = 15

	rec := env.postCSV(t, "/api/attrition/analyze", table)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := env.registry.Latest(context.Background(), agents.AgentAttrition); err == nil {
		t.Errorf("expected no model record after rejected dataset")
	}
}

// TestStatsTracksTraffic tests that the stats endpoint reflects served
// requests.
func TestStatsTracksTraffic(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	for i := 0; i < 3; i++ {
		env.get(t, "/health")
	}

	rec := env.get(t, "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Endpoints []struct {
			Endpoint string `json:"endpoint"`
			Count    int64  `json:"count"`
			AvgMs    int64  `json:"avg_ms"`
		} `json:"endpoints"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if len(body.Endpoints) == 0 {
		t.Fatal("expected at least one tracked endpoint")
	}
	if body.Endpoints[0].Endpoint != "GET /health" || body.Endpoints[0].Count != 3 {
		t.Errorf("expected GET /health with count 3, got %+v", body.Endpoints[0])
	}
}
