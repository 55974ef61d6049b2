package registry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestRegistry(t *testing.T) *SQLiteRegistry {
	t.Helper()
	reg, err := NewSQLiteRegistry(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRegistry: %v", err)
	}
	t.Cleanup(func() { reg.Close() })
	return reg
}

func sampleRecord(agent string, trainedAt time.Time) *ModelRecord {
	return &ModelRecord{
		ModelID:            uuid.NewString(),
		Agent:              agent,
		DatasetFingerprint: "deadbeefdeadbeefdeadbeefdeadbeef",
		RowCount:           500,
		FeatureCount:       27,
		ArtifactPath:       "models/" + agent + "/forest.bin",
		TrainedAt:          trainedAt,
		Metrics:            map[string]float64{"train_accuracy": 0.94},
	}
}

func TestRegistryRecordAndGet(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	rec := sampleRecord("attrition", time.Now().UTC().Truncate(time.Second))
	if err := reg.Record(ctx, rec); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := reg.Get(ctx, rec.ModelID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Agent != rec.Agent {
		t.Errorf("Agent = %q, want %q", got.Agent, rec.Agent)
	}
	if got.DatasetFingerprint != rec.DatasetFingerprint {
		t.Errorf("DatasetFingerprint = %q, want %q", got.DatasetFingerprint, rec.DatasetFingerprint)
	}
	if got.RowCount != rec.RowCount || got.FeatureCount != rec.FeatureCount {
		t.Errorf("counts = (%d, %d), want (%d, %d)",
			got.RowCount, got.FeatureCount, rec.RowCount, rec.FeatureCount)
	}
	if !got.TrainedAt.Equal(rec.TrainedAt) {
		t.Errorf("TrainedAt = %v, want %v", got.TrainedAt, rec.TrainedAt)
	}
	if got.Metrics["train_accuracy"] != 0.94 {
		t.Errorf("Metrics = %v, want train_accuracy 0.94", got.Metrics)
	}
}

func TestRegistryGetMissing(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Get(context.Background(), uuid.NewString())
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Get missing model: got %v, want ErrModelNotFound", err)
	}
}

func TestRegistryLatest(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := sampleRecord("attrition", base)
	newer := sampleRecord("attrition", base.Add(time.Hour))
	other := sampleRecord("simulation", base.Add(2*time.Hour))

	for _, rec := range []*ModelRecord{old, newer, other} {
		if err := reg.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := reg.Latest(ctx, "attrition")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.ModelID != newer.ModelID {
		t.Errorf("Latest returned %s, want %s", got.ModelID, newer.ModelID)
	}
}

func TestRegistryLatestMissingAgent(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Latest(context.Background(), "planning")
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Latest for untrained agent: got %v, want ErrModelNotFound", err)
	}
}

func TestRegistryList(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var want []string
	for i := 0; i < 3; i++ {
		rec := sampleRecord("attrition", base.Add(time.Duration(i)*time.Hour))
		if err := reg.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
		want = append([]string{rec.ModelID}, want...) // newest first
	}

	records, err := reg.List(ctx, "attrition")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != len(want) {
		t.Fatalf("List returned %d records, want %d", len(records), len(want))
	}
	for i, rec := range records {
		if rec.ModelID != want[i] {
			t.Errorf("List[%d] = %s, want %s", i, rec.ModelID, want[i])
		}
	}
}

func TestRegistryNilMetrics(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	rec := sampleRecord("diversity", time.Now().UTC())
	rec.Metrics = nil
	if err := reg.Record(ctx, rec); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := reg.Get(ctx, rec.ModelID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Metrics == nil || len(got.Metrics) != 0 {
		t.Errorf("Metrics = %v, want empty map", got.Metrics)
	}
}
