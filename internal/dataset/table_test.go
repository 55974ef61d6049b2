package dataset

import (
	"testing"
	"time"

	"github.com/loomhr/loom/pkg/types"
)

func TestTable_AddColumn(t *testing.T) {
	table := NewTable()

	if err := table.AddColumn(NewIntColumn("EmployeeNumber", []int64{1, 2, 3}, nil)); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if err := table.AddColumn(NewTextColumn("Department", []string{"IT", "HR", "IT"}, nil)); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}

	if table.NumRows() != 3 || table.NumCols() != 2 {
		t.Errorf("got %dx%d, want 3x2", table.NumRows(), table.NumCols())
	}

	if err := table.AddColumn(NewIntColumn("EmployeeNumber", []int64{4}, nil)); err == nil {
		t.Error("duplicate column name should be rejected")
	}
	if err := table.AddColumn(NewIntColumn("Age", []int64{30, 35}, nil)); err == nil {
		t.Error("mismatched column length should be rejected")
	}
}

func TestTable_Clone_IsDeep(t *testing.T) {
	table := NewTable()
	_ = table.AddColumn(NewIntColumn("Age", []int64{30, 35, 40}, []bool{false, true, false}))

	cp := table.Clone()
	col, _ := cp.Column("Age")
	col.Ints[0] = 99
	col.ClearNull(1)

	orig, _ := table.Column("Age")
	if orig.Ints[0] != 30 {
		t.Error("clone shares value storage with original")
	}
	if !orig.IsNull(1) {
		t.Error("clone shares null mask with original")
	}
}

func TestTable_Mean(t *testing.T) {
	table := NewTable()
	_ = table.AddColumn(NewIntColumn("Age", []int64{30, 0, 40}, []bool{false, true, false}))
	_ = table.AddColumn(NewTextColumn("Gender", []string{"Male", "Female", "Male"}, nil))

	mean, err := table.Mean("Age")
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	if mean != 35 {
		t.Errorf("mean over non-missing values = %v, want 35", mean)
	}

	if _, err := table.Mean("Gender"); err == nil {
		t.Error("Mean on a text column should fail")
	}
	if _, err := table.Mean("Missing"); err == nil {
		t.Error("Mean on an absent column should fail")
	}
}

func TestTable_Median(t *testing.T) {
	table := NewTable()
	_ = table.AddColumn(NewIntColumn("Salary", []int64{50, 90, 70, 100}, nil))

	median, err := table.Median("Salary")
	if err != nil {
		t.Fatalf("Median: %v", err)
	}
	if median != 80 {
		t.Errorf("median = %v, want 80", median)
	}
}

func TestTable_Mode_TieBreaksByFirstEncountered(t *testing.T) {
	table := NewTable()
	_ = table.AddColumn(NewTextColumn("Department",
		[]string{"HR", "IT", "IT", "HR", "Finance"},
		[]bool{false, false, false, false, false}))

	mode, err := table.Mode("Department")
	if err != nil {
		t.Fatalf("Mode: %v", err)
	}
	// HR and IT both appear twice; HR was seen first.
	if mode != "HR" {
		t.Errorf("mode = %q, want \"HR\"", mode)
	}
}

func TestTable_Mode_IgnoresMissing(t *testing.T) {
	table := NewTable()
	_ = table.AddColumn(NewTextColumn("Department",
		[]string{"", "IT", "IT", "HR", ""},
		[]bool{true, false, false, false, true}))

	mode, err := table.Mode("Department")
	if err != nil {
		t.Fatalf("Mode: %v", err)
	}
	if mode != "IT" {
		t.Errorf("mode = %q, want \"IT\"", mode)
	}
}

func TestTable_DistinctStrings(t *testing.T) {
	table := NewTable()
	_ = table.AddColumn(NewTextColumn("Department",
		[]string{"IT", "HR", "IT", "Finance", "HR"}, nil))

	got := table.DistinctStrings("Department")
	want := []string{"IT", "HR", "Finance"}
	if len(got) != len(want) {
		t.Fatalf("distinct = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("distinct[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTable_RemoveColumn(t *testing.T) {
	table := NewTable()
	_ = table.AddColumn(NewIntColumn("A", []int64{1}, nil))
	_ = table.AddColumn(NewIntColumn("B", []int64{2}, nil))
	_ = table.AddColumn(NewIntColumn("C", []int64{3}, nil))

	table.RemoveColumn("B")

	if table.HasColumn("B") {
		t.Error("column B should be gone")
	}
	c, ok := table.Column("C")
	if !ok || c.Ints[0] != 3 {
		t.Error("column C should survive removal of B with its data intact")
	}
}

func TestColumn_Float64(t *testing.T) {
	boolCol := NewBoolColumn("flag", []bool{true, false}, nil)
	if v, ok := boolCol.Float64(0); !ok || v != 1 {
		t.Errorf("bool true = %v, want 1", v)
	}

	timeCol := NewTimeColumn("ts", []time.Time{time.Now()}, nil)
	if _, ok := timeCol.Float64(0); ok {
		t.Error("datetime column should not convert to float")
	}

	if timeCol.Kind != types.KindDateTime {
		t.Errorf("kind = %v, want datetime", timeCol.Kind)
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	build := func() *Table {
		table := NewTable()
		_ = table.AddColumn(NewIntColumn("EmployeeNumber", []int64{1, 2, 3}, nil))
		_ = table.AddColumn(NewTextColumn("Department", []string{"IT", "HR", "IT"}, nil))
		return table
	}

	if Fingerprint(build()) != Fingerprint(build()) {
		t.Error("identical tables must share a fingerprint")
	}

	other := build()
	col, _ := other.Column("Department")
	col.Strs[2] = "Finance"
	if Fingerprint(build()) == Fingerprint(other) {
		t.Error("differing cell values must change the fingerprint")
	}
}
