package dataset

import (
	"testing"

	"github.com/loomhr/loom/pkg/types"
)

func TestFromRows_TypeInference(t *testing.T) {
	rows := []map[string]any{
		{"EmployeeNumber": float64(1), "Age": float64(30), "Department": "IT", "Rating": 4.5, "HireDate": "2015-03-01"},
		{"EmployeeNumber": float64(2), "Age": float64(35), "Department": "HR", "Rating": 3.0, "HireDate": "2016-07-15"},
	}

	table, err := FromRows(rows, []string{"HireDate"})
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}

	if table.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", table.NumRows())
	}

	kinds := map[string]types.Kind{
		"EmployeeNumber": types.KindInteger,
		"Age":            types.KindInteger,
		"Department":     types.KindText,
		"Rating":         types.KindFloat,
		"HireDate":       types.KindDateTime,
	}
	for name, want := range kinds {
		col, ok := table.Column(name)
		if !ok {
			t.Fatalf("missing column %q", name)
		}
		if col.Kind != want {
			t.Errorf("column %q kind = %s, want %s", name, col.Kind, want)
		}
	}

	// JSON numbers arrive as float64 but integral values come back as ints.
	col, _ := table.Column("Age")
	if col.Ints[1] != 35 {
		t.Errorf("Age[1] = %d, want 35", col.Ints[1])
	}
}

func TestFromRows_MissingAndNullValues(t *testing.T) {
	rows := []map[string]any{
		{"EmployeeNumber": float64(1), "TerminationDate": "2020-01-31"},
		{"EmployeeNumber": float64(2), "TerminationDate": nil},
		{"EmployeeNumber": float64(3)},
	}

	table, err := FromRows(rows, []string{"TerminationDate"})
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}

	col, ok := table.Column("TerminationDate")
	if !ok {
		t.Fatal("missing column TerminationDate")
	}
	if col.IsNull(0) {
		t.Errorf("row 0 should not be null")
	}
	for _, i := range []int{1, 2} {
		if !col.IsNull(i) {
			t.Errorf("row %d should be null", i)
		}
	}
}

func TestFromRows_ColumnOrderSorted(t *testing.T) {
	rows := []map[string]any{
		{"Zeta": "z", "Alpha": "a", "Mid": "m"},
	}

	table, err := FromRows(rows, nil)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}

	got := table.ColumnNames()
	want := []string{"Alpha", "Mid", "Zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column order = %v, want %v", got, want)
		}
	}
}

func TestFromRows_UnsupportedValue(t *testing.T) {
	rows := []map[string]any{
		{"Payload": map[string]any{"nested": true}},
	}

	if _, err := FromRows(rows, nil); err == nil {
		t.Fatal("expected error for nested value")
	}
}

func TestFromRows_Empty(t *testing.T) {
	table, err := FromRows(nil, nil)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	if table.NumRows() != 0 || table.NumCols() != 0 {
		t.Errorf("expected empty table, got %dx%d", table.NumRows(), table.NumCols())
	}
}
