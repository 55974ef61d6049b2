// Package preprocess turns a validated table into an analysis-ready one:
// missing values imputed, date columns coerced, and categorical columns
// expanded into indicator columns.
package preprocess

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/loomhr/loom/internal/dataset"
	loomerrors "github.com/loomhr/loom/internal/errors"
	"github.com/loomhr/loom/pkg/types"
)

// Preprocessor applies the fixed transformation pipeline. It holds only
// immutable configuration and is safe for concurrent use.
type Preprocessor struct {
	schema  *types.Schema
	target  string
	exclude map[string]bool
	logger  *slog.Logger
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithTarget sets the label column exempt from categorical expansion.
func WithTarget(name string) Option {
	return func(p *Preprocessor) {
		p.target = name
	}
}

// WithExclusions exempts additional columns from categorical expansion.
func WithExclusions(names ...string) Option {
	return func(p *Preprocessor) {
		for _, name := range names {
			p.exclude[name] = true
		}
	}
}

// WithLogger sets the logger for parse warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Preprocessor) {
		p.logger = logger
	}
}

// New creates a Preprocessor for the given schema.
func New(schema *types.Schema, opts ...Option) *Preprocessor {
	p := &Preprocessor{
		schema:  schema,
		target:  dataset.ColAttrition,
		exclude: make(map[string]bool),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Transform produces a new analysis-ready table. The input is cloned first
// and never mutated; the transform either fully succeeds or returns an error
// before any result is visible to the caller.
//
// Steps run in a fixed order: missing-value imputation, date coercion,
// categorical expansion, and a final consistency check against the schema's
// required columns.
func (p *Preprocessor) Transform(t *dataset.Table) (*dataset.Table, error) {
	out := t.Clone()

	if err := p.impute(out); err != nil {
		return nil, err
	}
	p.coerceDates(out)
	expanded := p.expandCategoricals(out)
	if err := p.checkConsistency(out, expanded); err != nil {
		return nil, err
	}

	return out, nil
}

// impute fills missing numeric entries with the column mean and missing text
// entries with the column mode, both computed over the current table only.
// Integer columns that need a fractional mean are widened to float.
func (p *Preprocessor) impute(t *dataset.Table) error {
	for _, spec := range p.schema.Columns {
		col, ok := t.Column(spec.Name)
		if !ok {
			continue
		}

		switch {
		case spec.Kind.Numeric() && col.Kind.Numeric():
			if col.NullCount() == 0 {
				continue
			}
			mean, err := t.Mean(spec.Name)
			if err != nil {
				p.logger.Warn("cannot impute numeric column with no observed values",
					"column", spec.Name)
				continue
			}
			fillNumeric(t, col, mean)

		case spec.Kind == types.KindText && col.Kind == types.KindText:
			if col.NullCount() == 0 {
				continue
			}
			mode, err := t.Mode(spec.Name)
			if err != nil {
				p.logger.Warn("cannot impute text column with no observed values",
					"column", spec.Name)
				continue
			}
			for i := 0; i < col.Len(); i++ {
				if col.IsNull(i) {
					col.Strs[i] = mode
					col.ClearNull(i)
				}
			}
		}
	}
	return nil
}

// fillNumeric replaces missing entries with the mean, converting integer
// columns to float so fractional means are representable.
func fillNumeric(t *dataset.Table, col *dataset.Column, mean float64) {
	if col.Kind == types.KindFloat {
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				col.Floats[i] = mean
				col.ClearNull(i)
			}
		}
		return
	}

	values := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			values[i] = mean
		} else {
			values[i] = float64(col.Ints[i])
		}
	}
	_ = t.ReplaceColumn(col.Name, dataset.NewFloatColumn(col.Name, values, nil))
}

// coerceDates parses schema datetime columns still held as raw text. Entries
// that fail to parse are logged and left missing; parse failure never aborts
// the pipeline.
func (p *Preprocessor) coerceDates(t *dataset.Table) {
	for _, spec := range p.schema.Columns {
		if spec.Kind != types.KindDateTime {
			continue
		}
		col, ok := t.Column(spec.Name)
		if !ok || col.Kind == types.KindDateTime {
			continue
		}
		if col.Kind != types.KindText {
			p.logger.Warn("cannot coerce column to datetime",
				"column", spec.Name, "kind", col.Kind.String())
			continue
		}

		values := make([]time.Time, col.Len())
		nulls := make([]bool, col.Len())
		failures := 0
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				nulls[i] = true
				continue
			}
			ts, ok := dataset.ParseTime(col.Strs[i])
			if !ok {
				nulls[i] = true
				failures++
				continue
			}
			values[i] = ts
		}
		if failures > 0 {
			p.logger.Warn("some entries could not be parsed as dates and were left missing",
				"column", spec.Name, "failures", failures)
		}
		_ = t.ReplaceColumn(spec.Name, dataset.NewTimeColumn(spec.Name, values, nulls))
	}
}

// expandCategoricals applies n-1 dummy encoding to every text column except
// the primary key, the target column, and the exclusion set. The first value
// in sorted order is dropped to avoid perfect collinearity. Returns the set
// of expanded source column names.
func (p *Preprocessor) expandCategoricals(t *dataset.Table) map[string]bool {
	expanded := make(map[string]bool)

	for _, name := range t.ColumnNames() {
		col, _ := t.Column(name)
		if col.Kind != types.KindText {
			continue
		}
		if name == p.schema.PrimaryKey || name == p.target || p.exclude[name] {
			continue
		}

		values := t.DistinctStrings(name)
		sort.Strings(values)

		for _, v := range values[min(1, len(values)):] {
			indicator := make([]int64, col.Len())
			for i := 0; i < col.Len(); i++ {
				if !col.IsNull(i) && col.Strs[i] == v {
					indicator[i] = 1
				}
			}
			dummyName := fmt.Sprintf("%s_%s", name, v)
			if t.HasColumn(dummyName) {
				continue
			}
			_ = t.AddColumn(dataset.NewIntColumn(dummyName, indicator, nil))
		}

		t.RemoveColumn(name)
		expanded[name] = true
	}

	return expanded
}

// checkConsistency verifies every required schema column survived the
// pipeline, either directly or as derived indicator columns.
func (p *Preprocessor) checkConsistency(t *dataset.Table, expanded map[string]bool) error {
	var missing []string
	for _, name := range p.schema.RequiredColumns() {
		if t.HasColumn(name) || expanded[name] {
			continue
		}
		if hasDerived(t, name) {
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return loomerrors.NewPreprocessError(
			loomerrors.CodeMissingColumns,
			fmt.Sprintf("columns missing after preprocessing: %s", strings.Join(missing, ", ")),
		)
	}
	return nil
}

// hasDerived reports whether any indicator column derived from name exists,
// so a table that was already expanded passes the consistency check.
func hasDerived(t *dataset.Table, name string) bool {
	prefix := name + "_"
	for _, col := range t.ColumnNames() {
		if strings.HasPrefix(col, prefix) {
			return true
		}
	}
	return false
}
