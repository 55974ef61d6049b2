package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loomhr/loom/internal/dataset"
	loomerrors "github.com/loomhr/loom/internal/errors"
	"github.com/loomhr/loom/internal/model"
	"github.com/loomhr/loom/internal/preprocess"
	"github.com/loomhr/loom/internal/registry"
	"github.com/loomhr/loom/pkg/types"
)

// AgentAttrition is the agent name used in the model registry.
const AgentAttrition = "attrition"

// highRiskThreshold marks employees counted as high risk.
const highRiskThreshold = 0.7

// Attrition predicts per-employee attrition risk with a random forest. The
// model is trained lazily on the first analysis request and persisted; later
// requests and process restarts reuse the stored artifacts.
type Attrition struct {
	schema    *types.Schema
	validator *dataset.SchemaValidator
	pre       *preprocess.Preprocessor
	artifacts *model.ArtifactStore
	reg       registry.Registry
	cfg       model.ForestConfig
	logger    *slog.Logger

	mu     sync.Mutex
	bundle *model.Bundle
}

// AttritionOption configures the attrition agent.
type AttritionOption func(*Attrition)

// WithForestConfig overrides the training configuration.
func WithForestConfig(cfg model.ForestConfig) AttritionOption {
	return func(a *Attrition) { a.cfg = cfg }
}

// WithAttritionLogger sets the agent logger.
func WithAttritionLogger(logger *slog.Logger) AttritionOption {
	return func(a *Attrition) { a.logger = logger }
}

// NewAttrition creates the attrition agent over the canonical HR schema.
func NewAttrition(artifacts *model.ArtifactStore, reg registry.Registry, opts ...AttritionOption) (*Attrition, error) {
	schema := dataset.HRSchema()
	validator, err := dataset.NewSchemaValidator(schema)
	if err != nil {
		return nil, err
	}

	a := &Attrition{
		schema:    schema,
		validator: validator,
		pre:       preprocess.New(schema),
		artifacts: artifacts,
		reg:       reg,
		cfg:       model.DefaultForestConfig(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Analyze validates the table, trains or loads the model, and returns
// per-employee risk scores with summary metrics.
func (a *Attrition) Analyze(ctx context.Context, t *dataset.Table) (Result, error) {
	if err := a.validator.Validate(t); err != nil {
		return nil, err
	}

	bundle, err := a.ensureModel(ctx, t)
	if err != nil {
		return nil, err
	}

	processed, err := a.pre.Transform(t)
	if err != nil {
		return nil, err
	}

	matrix := featurize(processed, bundle.Features)
	scaled, err := bundle.Scaler.Transform(matrix)
	if err != nil {
		return nil, loomerrors.NewModelError(loomerrors.CodeFeatureMismatch,
			"failed to scale features", err)
	}
	risks, err := bundle.Forest.ProbaBatch(scaled)
	if err != nil {
		return nil, loomerrors.NewModelError(loomerrors.CodeFeatureMismatch,
			"failed to score employees", err)
	}

	ids, _ := t.Column(dataset.ColEmployeeNumber)
	predictions := make([]map[string]any, len(risks))
	highRisk := 0
	var sum float64
	for i, risk := range risks {
		predictions[i] = map[string]any{
			"employee_number": ids.Ints[i],
			"attrition_risk":  round3(risk),
		}
		if risk > highRiskThreshold {
			highRisk++
		}
		sum += risk
	}

	return Result{
		"predictions":       predictions,
		"high_risk_count":   highRisk,
		"avg_risk":          round3(sum / float64(len(risks))),
		"risk_distribution": riskDistribution(risks),
	}, nil
}

// FeatureImportance returns the trained model's normalized feature
// importances, highest first. The model must already be trained.
func (a *Attrition) FeatureImportance(ctx context.Context) ([]map[string]any, error) {
	a.mu.Lock()
	bundle := a.bundle
	a.mu.Unlock()

	if bundle == nil {
		loaded, err := a.loadLatest(ctx)
		if err != nil {
			return nil, err
		}
		bundle = loaded
	}

	type pair struct {
		name  string
		value float64
	}
	pairs := make([]pair, len(bundle.Features))
	for i, name := range bundle.Features {
		pairs[i] = pair{name, bundle.Forest.Importances[i]}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].value != pairs[j].value {
			return pairs[i].value > pairs[j].value
		}
		return pairs[i].name < pairs[j].name
	})

	out := make([]map[string]any, len(pairs))
	for i, p := range pairs {
		out[i] = map[string]any{"feature": p.name, "importance": p.value}
	}
	return out, nil
}

// Train validates the table and fits a fresh model unconditionally,
// replacing any previously loaded bundle.
func (a *Attrition) Train(ctx context.Context, t *dataset.Table) (*registry.ModelRecord, error) {
	if err := a.validator.Validate(t); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	bundle, err := a.train(ctx, t)
	if err != nil {
		return nil, err
	}
	a.bundle = bundle

	return a.reg.Latest(ctx, AgentAttrition)
}

// ensureModel returns the in-memory bundle, loading it from storage or
// training a fresh one from the request data when absent.
func (a *Attrition) ensureModel(ctx context.Context, t *dataset.Table) (*model.Bundle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.bundle != nil {
		return a.bundle, nil
	}

	bundle, err := a.loadLatestLocked(ctx)
	if err == nil {
		a.bundle = bundle
		return bundle, nil
	}
	if !isModelAbsent(err) {
		return nil, err
	}

	a.logger.Info("no stored attrition model, training from request data",
		"rows", t.NumRows())

	bundle, err = a.train(ctx, t)
	if err != nil {
		return nil, err
	}
	a.bundle = bundle
	return bundle, nil
}

func (a *Attrition) loadLatest(ctx context.Context) (*model.Bundle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bundle != nil {
		return a.bundle, nil
	}
	bundle, err := a.loadLatestLocked(ctx)
	if err != nil {
		return nil, err
	}
	a.bundle = bundle
	return bundle, nil
}

func (a *Attrition) loadLatestLocked(ctx context.Context) (*model.Bundle, error) {
	rec, err := a.reg.Latest(ctx, AgentAttrition)
	if err != nil {
		return nil, err
	}
	return a.artifacts.Load(ctx, rec.ArtifactPath)
}

// train fits the scaler and forest on the table and persists the bundle.
func (a *Attrition) train(ctx context.Context, t *dataset.Table) (*model.Bundle, error) {
	processed, err := a.pre.Transform(t)
	if err != nil {
		return nil, err
	}

	features := featureColumns(processed, a.schema.PrimaryKey, dataset.ColAttrition)
	if len(features) == 0 {
		return nil, loomerrors.NewModelError(loomerrors.CodeTrainingFailed,
			"no feature columns after preprocessing", nil)
	}

	matrix := featurize(processed, features)
	labels, err := attritionLabels(t)
	if err != nil {
		return nil, err
	}

	scaler := &model.StandardScaler{}
	scaled, err := scaler.FitTransform(matrix)
	if err != nil {
		return nil, loomerrors.NewModelError(loomerrors.CodeTrainingFailed,
			"failed to fit scaler", err)
	}

	forest := model.NewRandomForest(a.cfg)
	if err := forest.Fit(scaled, labels); err != nil {
		return nil, loomerrors.NewModelError(loomerrors.CodeTrainingFailed,
			"failed to fit forest", err)
	}

	acc, err := forest.Accuracy(scaled, labels)
	if err != nil {
		return nil, loomerrors.NewModelError(loomerrors.CodeTrainingFailed,
			"failed to score trained forest", err)
	}

	bundle := &model.Bundle{Forest: forest, Scaler: scaler, Features: features}

	modelID := uuid.NewString()
	artifactPath := path.Join("models", AgentAttrition, modelID)
	if err := a.artifacts.Save(ctx, artifactPath, bundle); err != nil {
		return nil, err
	}

	rec := &registry.ModelRecord{
		ModelID:            modelID,
		Agent:              AgentAttrition,
		DatasetFingerprint: dataset.Fingerprint(t),
		RowCount:           int64(t.NumRows()),
		FeatureCount:       int64(len(features)),
		ArtifactPath:       artifactPath,
		TrainedAt:          time.Now().UTC(),
		Metrics:            map[string]float64{"train_accuracy": acc},
	}
	if err := a.reg.Record(ctx, rec); err != nil {
		return nil, err
	}

	a.logger.Info("trained attrition model",
		"model_id", modelID,
		"rows", t.NumRows(),
		"features", len(features),
		"train_accuracy", fmt.Sprintf("%.3f", acc))

	return bundle, nil
}

// featureColumns lists the numeric columns of a preprocessed table in table
// order, skipping the primary key, the target, and date columns.
func featureColumns(t *dataset.Table, primaryKey, target string) []string {
	var out []string
	for _, name := range t.ColumnNames() {
		if name == primaryKey || name == target {
			continue
		}
		col, _ := t.Column(name)
		switch col.Kind {
		case types.KindInteger, types.KindFloat, types.KindBoolean:
			out = append(out, name)
		}
	}
	return out
}

// featurize builds a sample matrix in the given feature order. Columns the
// table lacks are zero-filled so inference never fails on a narrower input.
func featurize(t *dataset.Table, features []string) [][]float64 {
	rows := t.NumRows()
	matrix := make([][]float64, rows)
	for i := range matrix {
		matrix[i] = make([]float64, len(features))
	}
	for j, name := range features {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		for i := 0; i < rows; i++ {
			if v, ok := col.Float64(i); ok {
				matrix[i][j] = v
			}
		}
	}
	return matrix
}

func attritionLabels(t *dataset.Table) ([]int, error) {
	col, ok := t.Column(dataset.ColAttrition)
	if !ok {
		return nil, loomerrors.NewModelError(loomerrors.CodeTrainingFailed,
			"target column missing", nil)
	}
	labels := make([]int, col.Len())
	for i := range labels {
		if !col.IsNull(i) && col.Strs[i] == "Yes" {
			labels[i] = 1
		}
	}
	return labels, nil
}

func riskDistribution(risks []float64) map[string]float64 {
	sorted := append([]float64(nil), risks...)
	sort.Float64s(sorted)

	var sum float64
	for _, r := range sorted {
		sum += r
	}
	mean := sum / float64(len(sorted))

	var sqDiff float64
	for _, r := range sorted {
		d := r - mean
		sqDiff += d * d
	}

	return map[string]float64{
		"min":    round3(sorted[0]),
		"p25":    round3(percentile(sorted, 0.25)),
		"p50":    round3(percentile(sorted, 0.50)),
		"p75":    round3(percentile(sorted, 0.75)),
		"max":    round3(sorted[len(sorted)-1]),
		"mean":   round3(mean),
		"stddev": round3(math.Sqrt(sqDiff / float64(len(sorted)))),
	}
}

// percentile interpolates linearly between the closest ranks of a sorted
// sample.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func isModelAbsent(err error) bool {
	return errors.Is(err, registry.ErrModelNotFound) ||
		loomerrors.GetCode(err) == loomerrors.CodeArtifactMissing
}
