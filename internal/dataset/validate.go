package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"

	loomerrors "github.com/loomhr/loom/internal/errors"
	"github.com/loomhr/loom/pkg/types"
)

// Violation describes a single schema violation found during validation.
type Violation struct {
	Column  string
	Rule    string
	Message string
}

// Violation rules.
const (
	RuleMissingColumn = "missing_column"
	RuleTypeMismatch  = "type_mismatch"
	RuleDomain        = "domain"
	RuleRange         = "range"
)

// ValidationError aggregates every violation found in one validation pass.
// Callers depend on getting the complete report rather than the first
// failure.
type ValidationError struct {
	Violations []Violation
}

// Error returns the violation messages newline-joined, in check order.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "\n")
}

// Columns returns the distinct violated column names in report order.
func (e *ValidationError) Columns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range e.Violations {
		if !seen[v.Column] {
			seen[v.Column] = true
			out = append(out, v.Column)
		}
	}
	return out
}

// SchemaValidator checks tables against a schema. It is immutable and safe
// for concurrent use.
type SchemaValidator struct {
	schema *types.Schema
}

// NewSchemaValidator creates a validator for the given schema. The schema's
// own invariants are checked once here.
func NewSchemaValidator(schema *types.Schema) (*SchemaValidator, error) {
	if err := schema.Check(); err != nil {
		return nil, loomerrors.Wrap(loomerrors.ErrCategorySchema, loomerrors.CodeInvalidSchema, "invalid schema", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Schema returns the schema this validator checks against.
func (v *SchemaValidator) Schema() *types.Schema {
	return v.schema
}

// Validate scans the table against every column spec and aggregates all
// violations: presence of required columns, type conformance, domain
// membership, and numeric range bounds. Columns are visited in schema order.
// The table is never modified.
func (v *SchemaValidator) Validate(t *Table) error {
	if t == nil || t.NumRows() == 0 {
		return loomerrors.NewSchemaError(loomerrors.CodeEmptyDataset, "dataset has no rows")
	}

	var violations []Violation

	// Check 1: presence. One entry per missing required column.
	for _, spec := range v.schema.Columns {
		if spec.Required && !t.HasColumn(spec.Name) {
			violations = append(violations, Violation{
				Column:  spec.Name,
				Rule:    RuleMissingColumn,
				Message: fmt.Sprintf("missing required column %q", spec.Name),
			})
		}
	}

	// Checks 2-4 per present column, in schema order.
	for _, spec := range v.schema.Columns {
		col, ok := t.Column(spec.Name)
		if !ok {
			continue
		}

		if col.Kind != spec.Kind {
			violations = append(violations, Violation{
				Column:  spec.Name,
				Rule:    RuleTypeMismatch,
				Message: fmt.Sprintf("column %q has incorrect type: expected %s, got %s", spec.Name, spec.Kind, col.Kind),
			})
		}

		if spec.AllowedValues != nil {
			if offending := domainOffenders(col, spec.AllowedValues); len(offending) > 0 {
				violations = append(violations, Violation{
					Column:  spec.Name,
					Rule:    RuleDomain,
					Message: fmt.Sprintf("column %q contains invalid values: %s", spec.Name, strings.Join(offending, ", ")),
				})
			}
		}

		if spec.Kind.Numeric() && col.Kind.Numeric() {
			violations = append(violations, boundViolations(col, spec)...)
		}
	}

	if len(violations) > 0 {
		return loomerrors.Wrap(
			loomerrors.ErrCategorySchema,
			loomerrors.CodeSchemaViolation,
			fmt.Sprintf("%d schema violation(s)", len(violations)),
			&ValidationError{Violations: violations},
		)
	}
	return nil
}

// domainOffenders returns the distinct out-of-domain values in
// first-encountered order. Missing entries are not domain violations.
func domainOffenders(col *Column, allowed []any) []string {
	seen := make(map[string]bool)
	var offending []string
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		if valueAllowed(col, i, allowed) {
			continue
		}
		repr := fmt.Sprintf("%v", col.Value(i))
		if !seen[repr] {
			seen[repr] = true
			offending = append(offending, repr)
		}
	}
	return offending
}

func valueAllowed(col *Column, i int, allowed []any) bool {
	switch col.Kind {
	case types.KindText:
		for _, a := range allowed {
			if s, ok := a.(string); ok && s == col.Strs[i] {
				return true
			}
		}
	case types.KindInteger, types.KindFloat, types.KindBoolean:
		v, _ := col.Float64(i)
		for _, a := range allowed {
			if f, ok := asFloat(a); ok && f == v {
				return true
			}
		}
	}
	return false
}

// boundViolations reports at most one violation per bound direction.
func boundViolations(col *Column, spec types.ColumnSpec) []Violation {
	below, above := false, false
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Float64(i)
		if !ok {
			continue
		}
		if spec.MinValue != nil && v < *spec.MinValue {
			below = true
		}
		if spec.MaxValue != nil && v > *spec.MaxValue {
			above = true
		}
	}

	var out []Violation
	if below {
		out = append(out, Violation{
			Column:  spec.Name,
			Rule:    RuleRange,
			Message: fmt.Sprintf("column %q contains values below minimum %s", spec.Name, formatBound(*spec.MinValue)),
		})
	}
	if above {
		out = append(out, Violation{
			Column:  spec.Name,
			Rule:    RuleRange,
			Message: fmt.Sprintf("column %q contains values above maximum %s", spec.Name, formatBound(*spec.MaxValue)),
		})
	}
	return out
}

func formatBound(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// AsValidationError extracts the aggregated violation report from an error
// chain, if present.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
