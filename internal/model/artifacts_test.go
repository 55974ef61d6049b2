package model

import (
	"context"
	"testing"

	loomerrors "github.com/loomhr/loom/internal/errors"
	"github.com/loomhr/loom/internal/storage"
)

func trainedBundle(t *testing.T) *Bundle {
	t.Helper()
	samples, labels := separableData(100, 23)

	var scaler StandardScaler
	scaled, err := scaler.FitTransform(samples)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	cfg := DefaultForestConfig()
	cfg.NumTrees = 10
	forest := NewRandomForest(cfg)
	if err := forest.Fit(scaled, labels); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	return &Bundle{
		Forest:   forest,
		Scaler:   &scaler,
		Features: []string{"Age", "MonthlyIncome", "YearsAtCompany"},
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	artifacts := NewArtifactStore(store)
	ctx := context.Background()

	bundle := trainedBundle(t)
	if err := artifacts.Save(ctx, "models/attrition/abc", bundle); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := artifacts.Load(ctx, "models/attrition/abc")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(loaded.Features) != 3 || loaded.Features[0] != "Age" {
		t.Errorf("Features = %v, want %v", loaded.Features, bundle.Features)
	}

	// The restored forest must predict identically to the original.
	probe := [][]float64{{2.1, 0.3, 0.7}}
	scaledProbe, err := bundle.Scaler.Transform(probe)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want, err := bundle.Forest.Proba(scaledProbe[0])
	if err != nil {
		t.Fatalf("Proba original: %v", err)
	}

	loadedProbe, err := loaded.Scaler.Transform(probe)
	if err != nil {
		t.Fatalf("Transform loaded: %v", err)
	}
	got, err := loaded.Forest.Proba(loadedProbe[0])
	if err != nil {
		t.Fatalf("Proba loaded: %v", err)
	}
	if got != want {
		t.Errorf("restored forest predicts %g, original %g", got, want)
	}
}

func TestArtifactLoadMissing(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	artifacts := NewArtifactStore(store)

	_, err = artifacts.Load(context.Background(), "models/attrition/missing")
	if loomerrors.GetCode(err) != loomerrors.CodeArtifactMissing {
		t.Errorf("Load missing bundle: got %v, want ARTIFACT_MISSING", err)
	}
}

func TestArtifactPartialBundleIsMissing(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	artifacts := NewArtifactStore(store)
	ctx := context.Background()

	bundle := trainedBundle(t)
	if err := artifacts.Save(ctx, "models/attrition/p", bundle); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, "models/attrition/p/scaler.bin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	ok, err := artifacts.Exists(ctx, "models/attrition/p")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("Exists reported a partial bundle as complete")
	}

	if _, err := artifacts.Load(ctx, "models/attrition/p"); loomerrors.GetCode(err) != loomerrors.CodeArtifactMissing {
		t.Errorf("Load partial bundle: got %v, want ARTIFACT_MISSING", err)
	}
}

func TestArtifactSaveIncomplete(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	artifacts := NewArtifactStore(store)

	err = artifacts.Save(context.Background(), "models/x", &Bundle{})
	if loomerrors.GetCode(err) != loomerrors.CodeArtifactCorrupt {
		t.Errorf("Save incomplete bundle: got %v, want ARTIFACT_CORRUPT", err)
	}
}

func TestArtifactDelete(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	artifacts := NewArtifactStore(store)
	ctx := context.Background()

	bundle := trainedBundle(t)
	if err := artifacts.Save(ctx, "models/d", bundle); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := artifacts.Delete(ctx, "models/d"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, err := artifacts.Exists(ctx, "models/d")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("bundle still exists after Delete")
	}
}
