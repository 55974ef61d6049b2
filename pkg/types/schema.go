// Package types provides core data types for the Loom workforce analytics
// system.
package types

import (
	"fmt"
	"math"
)

// Schema defines the expected structure of an employee dataset.
type Schema struct {
	// Version tracks schema evolution for forward compatibility of
	// persisted results
	Version string `json:"version" yaml:"version"`

	// Columns defines the expected columns, in registry iteration order
	Columns []ColumnSpec `json:"columns" yaml:"columns"`

	// PrimaryKey names the column serving as row identity
	PrimaryKey string `json:"primary_key" yaml:"primary_key"`
}

// ColumnSpec describes one column's expected semantic type, nullability,
// allowed-value set, and numeric bounds.
type ColumnSpec struct {
	// Name is the column name, unique within a schema
	Name string `json:"name" yaml:"name"`

	// Kind is the semantic type of the column
	Kind Kind `json:"kind" yaml:"kind"`

	// Required indicates the column must be present in every validated table
	Required bool `json:"required" yaml:"required"`

	// Description documents the column for operators
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// AllowedValues is the enumerated domain, if any. Only meaningful for
	// integer, float, and text kinds.
	AllowedValues []any `json:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`

	// MinValue is the inclusive lower bound for numeric kinds
	MinValue *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`

	// MaxValue is the inclusive upper bound for numeric kinds
	MaxValue *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
}

// Column returns the spec for the named column.
func (s *Schema) Column(name string) (ColumnSpec, error) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, nil
		}
	}
	return ColumnSpec{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// ColumnNames returns the declared column names in registry order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// RequiredColumns returns the names of all required columns in registry order.
func (s *Schema) RequiredColumns() []string {
	var names []string
	for _, col := range s.Columns {
		if col.Required {
			names = append(names, col.Name)
		}
	}
	return names
}

// Check verifies the schema's internal invariants: every kind is a defined
// member, the primary key names a declared column, names are unique, and
// allowed values for integer columns are themselves integral.
func (s *Schema) Check() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema has no columns")
	}

	seen := make(map[string]bool, len(s.Columns))
	for _, col := range s.Columns {
		if col.Name == "" {
			return fmt.Errorf("schema has a column with an empty name")
		}
		if seen[col.Name] {
			return fmt.Errorf("duplicate column %q", col.Name)
		}
		seen[col.Name] = true

		if !col.Kind.Valid() {
			return fmt.Errorf("column %q: %w: %d", col.Name, ErrUnknownKind, int(col.Kind))
		}

		if col.AllowedValues != nil && col.Kind == KindDateTime {
			return fmt.Errorf("column %q: allowed values are not meaningful for datetime columns", col.Name)
		}
		if (col.MinValue != nil || col.MaxValue != nil) && !col.Kind.Numeric() {
			return fmt.Errorf("column %q: numeric bounds require an integer or float kind", col.Name)
		}
		if col.MinValue != nil && col.MaxValue != nil && *col.MinValue > *col.MaxValue {
			return fmt.Errorf("column %q: min_value %v exceeds max_value %v", col.Name, *col.MinValue, *col.MaxValue)
		}

		// Type-homogeneity invariant: integer domains hold only integers.
		if col.Kind == KindInteger {
			for _, v := range col.AllowedValues {
				if !isIntegral(v) {
					return fmt.Errorf("column %q: allowed value %v is not an integer", col.Name, v)
				}
			}
		}
	}

	if s.PrimaryKey == "" {
		return fmt.Errorf("schema has no primary key")
	}
	if !seen[s.PrimaryKey] {
		return fmt.Errorf("primary key %q: %w", s.PrimaryKey, ErrColumnNotFound)
	}

	return nil
}

// isIntegral reports whether v is an integer value, including float values
// that carry no fractional part (YAML and JSON decode numbers loosely).
func isIntegral(v any) bool {
	switch n := v.(type) {
	case int:
		return true
	case int64:
		return true
	case float64:
		return n == math.Trunc(n)
	default:
		return false
	}
}

// Float64 is a convenience for building *float64 bounds in schema literals.
func Float64(v float64) *float64 {
	return &v
}
