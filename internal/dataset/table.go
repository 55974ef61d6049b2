// Package dataset provides the in-memory table the analytics pipeline runs
// on, schema validation against it, and CSV decoding/encoding.
package dataset

import (
	"fmt"
	"sort"
	"time"

	"github.com/loomhr/loom/pkg/types"
)

// Column holds one named, typed column with a null mask. Only the value
// slice matching Kind is populated.
type Column struct {
	Name string
	Kind types.Kind

	Ints   []int64
	Floats []float64
	Strs   []string
	Times  []time.Time
	Bools  []bool

	// Null marks missing entries. A nil mask means no entry is missing.
	Null []bool
}

// NewIntColumn creates an integer column. nulls may be nil.
func NewIntColumn(name string, values []int64, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.KindInteger, Ints: values, Null: nulls}
}

// NewFloatColumn creates a float column. nulls may be nil.
func NewFloatColumn(name string, values []float64, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.KindFloat, Floats: values, Null: nulls}
}

// NewTextColumn creates a text column. nulls may be nil.
func NewTextColumn(name string, values []string, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.KindText, Strs: values, Null: nulls}
}

// NewTimeColumn creates a datetime column. nulls may be nil.
func NewTimeColumn(name string, values []time.Time, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.KindDateTime, Times: values, Null: nulls}
}

// NewBoolColumn creates a boolean column. nulls may be nil.
func NewBoolColumn(name string, values []bool, nulls []bool) *Column {
	return &Column{Name: name, Kind: types.KindBoolean, Bools: values, Null: nulls}
}

// Len returns the number of entries in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case types.KindInteger:
		return len(c.Ints)
	case types.KindFloat:
		return len(c.Floats)
	case types.KindText:
		return len(c.Strs)
	case types.KindDateTime:
		return len(c.Times)
	case types.KindBoolean:
		return len(c.Bools)
	default:
		return 0
	}
}

// IsNull reports whether entry i is missing.
func (c *Column) IsNull(i int) bool {
	return c.Null != nil && c.Null[i]
}

// SetNull marks entry i as missing, allocating the mask on first use.
func (c *Column) SetNull(i int) {
	if c.Null == nil {
		c.Null = make([]bool, c.Len())
	}
	c.Null[i] = true
}

// ClearNull marks entry i as present.
func (c *Column) ClearNull(i int) {
	if c.Null != nil {
		c.Null[i] = false
	}
}

// NullCount returns the number of missing entries.
func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.Null {
		if isNull {
			n++
		}
	}
	return n
}

// Value returns entry i as an untyped value, or nil when missing.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.Kind {
	case types.KindInteger:
		return c.Ints[i]
	case types.KindFloat:
		return c.Floats[i]
	case types.KindText:
		return c.Strs[i]
	case types.KindDateTime:
		return c.Times[i]
	case types.KindBoolean:
		return c.Bools[i]
	default:
		return nil
	}
}

// Float64 returns entry i as a float64. ok is false for missing entries and
// non-numeric kinds.
func (c *Column) Float64(i int) (float64, bool) {
	if c.IsNull(i) {
		return 0, false
	}
	switch c.Kind {
	case types.KindInteger:
		return float64(c.Ints[i]), true
	case types.KindFloat:
		return c.Floats[i], true
	case types.KindBoolean:
		if c.Bools[i] {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// clone returns a deep copy of the column.
func (c *Column) clone() *Column {
	cp := &Column{Name: c.Name, Kind: c.Kind}
	if c.Ints != nil {
		cp.Ints = append([]int64(nil), c.Ints...)
	}
	if c.Floats != nil {
		cp.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Strs != nil {
		cp.Strs = append([]string(nil), c.Strs...)
	}
	if c.Times != nil {
		cp.Times = append([]time.Time(nil), c.Times...)
	}
	if c.Bools != nil {
		cp.Bools = append([]bool(nil), c.Bools...)
	}
	if c.Null != nil {
		cp.Null = append([]bool(nil), c.Null...)
	}
	return cp
}

// Table is an ordered sequence of rows sharing a common set of named, typed
// columns, stored column-wise.
type Table struct {
	cols   []*Column
	byName map[string]int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{byName: make(map[string]int)}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.cols[idx], true
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// AddColumn appends a column. Every column in a table must have the same
// length and a unique name.
func (t *Table) AddColumn(c *Column) error {
	if _, exists := t.byName[c.Name]; exists {
		return fmt.Errorf("duplicate column %q", c.Name)
	}
	if len(t.cols) > 0 && c.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.NumRows())
	}
	t.byName[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// ReplaceColumn swaps the named column for a new one of the same length,
// keeping its position.
func (t *Table) ReplaceColumn(name string, c *Column) error {
	idx, ok := t.byName[name]
	if !ok {
		return fmt.Errorf("no column %q", name)
	}
	if c.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.NumRows())
	}
	if c.Name != name {
		if _, exists := t.byName[c.Name]; exists {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		delete(t.byName, name)
		t.byName[c.Name] = idx
	}
	t.cols[idx] = c
	return nil
}

// RemoveColumn drops the named column. Removing an absent column is a no-op.
func (t *Table) RemoveColumn(name string) {
	idx, ok := t.byName[name]
	if !ok {
		return
	}
	t.cols = append(t.cols[:idx], t.cols[idx+1:]...)
	delete(t.byName, name)
	for i := idx; i < len(t.cols); i++ {
		t.byName[t.cols[i].Name] = i
	}
}

// Clone returns a deep copy. Transformations operate on clones so the
// caller's table is never mutated.
func (t *Table) Clone() *Table {
	cp := NewTable()
	for _, c := range t.cols {
		// Lengths already agree, AddColumn cannot fail here.
		_ = cp.AddColumn(c.clone())
	}
	return cp
}

// Mean returns the arithmetic mean of the named numeric column over its
// non-missing entries.
func (t *Table) Mean(name string) (float64, error) {
	c, ok := t.Column(name)
	if !ok {
		return 0, fmt.Errorf("no column %q", name)
	}
	if !c.Kind.Numeric() {
		return 0, fmt.Errorf("column %q is %s, not numeric", name, c.Kind)
	}
	sum, n := 0.0, 0
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Float64(i); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("column %q has no non-missing values", name)
	}
	return sum / float64(n), nil
}

// Median returns the median of the named numeric column over its non-missing
// entries.
func (t *Table) Median(name string) (float64, error) {
	c, ok := t.Column(name)
	if !ok {
		return 0, fmt.Errorf("no column %q", name)
	}
	if !c.Kind.Numeric() {
		return 0, fmt.Errorf("column %q is %s, not numeric", name, c.Kind)
	}
	var vals []float64
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Float64(i); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("column %q has no non-missing values", name)
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], nil
	}
	return (vals[mid-1] + vals[mid]) / 2, nil
}

// Mode returns the most frequent non-missing value of the named text column.
// Ties are broken by first occurrence in row order.
func (t *Table) Mode(name string) (string, error) {
	c, ok := t.Column(name)
	if !ok {
		return "", fmt.Errorf("no column %q", name)
	}
	if c.Kind != types.KindText {
		return "", fmt.Errorf("column %q is %s, not text", name, c.Kind)
	}
	counts := make(map[string]int)
	var order []string
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.Strs[i]
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return "", fmt.Errorf("column %q has no non-missing values", name)
	}
	best, bestCount := "", -1
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, nil
}

// DistinctStrings returns the distinct non-missing values of the named text
// column in first-encountered order.
func (t *Table) DistinctStrings(name string) []string {
	c, ok := t.Column(name)
	if !ok || c.Kind != types.KindText {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.Strs[i]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// MissingCells returns the total count of missing entries across all columns.
func (t *Table) MissingCells() int {
	n := 0
	for _, c := range t.cols {
		n += c.NullCount()
	}
	return n
}
