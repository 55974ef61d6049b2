package dataset

import (
	"strings"
	"testing"

	loomerrors "github.com/loomhr/loom/internal/errors"
	"github.com/loomhr/loom/pkg/types"
)

func testSchema(t *testing.T) *SchemaValidator {
	t.Helper()
	schema := &types.Schema{
		Version:    "test",
		PrimaryKey: "EmployeeNumber",
		Columns: []types.ColumnSpec{
			{Name: "EmployeeNumber", Kind: types.KindInteger, Required: true, MinValue: types.Float64(1)},
			{Name: "Age", Kind: types.KindInteger, Required: true, MinValue: types.Float64(18), MaxValue: types.Float64(100)},
			{Name: "Department", Kind: types.KindText, Required: true, AllowedValues: []any{"IT", "HR", "Finance"}},
			{Name: "Attrition", Kind: types.KindText, Required: true, AllowedValues: []any{"Yes", "No"}},
		},
	}
	v, err := NewSchemaValidator(schema)
	if err != nil {
		t.Fatalf("NewSchemaValidator: %v", err)
	}
	return v
}

func validTable(t *testing.T) *Table {
	t.Helper()
	table := NewTable()
	for _, err := range []error{
		table.AddColumn(NewIntColumn("EmployeeNumber", []int64{1, 2, 3, 4, 5}, nil)),
		table.AddColumn(NewIntColumn("Age", []int64{30, 35, 40, 45, 50}, nil)),
		table.AddColumn(NewTextColumn("Department", []string{"IT", "HR", "IT", "Finance", "HR"}, nil)),
		table.AddColumn(NewTextColumn("Attrition", []string{"Yes", "No", "Yes", "No", "No"}, nil)),
	} {
		if err != nil {
			t.Fatalf("building table: %v", err)
		}
	}
	return table
}

func TestValidate_Passes(t *testing.T) {
	if err := testSchema(t).Validate(validTable(t)); err != nil {
		t.Fatalf("valid table should pass, got: %v", err)
	}
}

func TestValidate_AggregatesAllMissingColumns(t *testing.T) {
	table := NewTable()
	_ = table.AddColumn(NewIntColumn("EmployeeNumber", []int64{1, 2}, nil))

	err := testSchema(t).Validate(table)
	if err == nil {
		t.Fatal("expected validation failure")
	}

	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected aggregated validation error, got %v", err)
	}
	// All three missing required columns in one pass, not fail-fast.
	for _, col := range []string{"Age", "Department", "Attrition"} {
		if !strings.Contains(ve.Error(), col) {
			t.Errorf("report should mention missing column %q:\n%s", col, ve.Error())
		}
	}
	if len(ve.Violations) != 3 {
		t.Errorf("violations = %d, want 3", len(ve.Violations))
	}
}

func TestValidate_AgeBelowMinimumMentionsAge(t *testing.T) {
	table := validTable(t)
	age, _ := table.Column("Age")
	age.Ints[0] = 15

	err := testSchema(t).Validate(table)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(err.Error(), "Age") {
		t.Errorf("message should mention Age: %v", err)
	}
	ve, _ := AsValidationError(err)
	if len(ve.Violations) != 1 || ve.Violations[0].Rule != RuleRange {
		t.Errorf("want a single range violation, got %+v", ve.Violations)
	}
	if !strings.Contains(ve.Violations[0].Message, "below minimum 18") {
		t.Errorf("message should name the violated bound: %s", ve.Violations[0].Message)
	}
}

func TestValidate_InclusiveBounds(t *testing.T) {
	table := validTable(t)
	age, _ := table.Column("Age")
	age.Ints[0] = 18
	age.Ints[4] = 100

	if err := testSchema(t).Validate(table); err != nil {
		t.Errorf("boundary values are inside the inclusive range: %v", err)
	}
}

func TestValidate_BothBoundDirectionsReportedOnce(t *testing.T) {
	table := validTable(t)
	age, _ := table.Column("Age")
	age.Ints[0] = 10
	age.Ints[1] = 12
	age.Ints[2] = 150

	err := testSchema(t).Validate(table)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	// Two rows below minimum collapse into one violation; one above is another.
	if len(ve.Violations) != 2 {
		t.Errorf("violations = %d, want 2 (one per bound direction)", len(ve.Violations))
	}
}

func TestValidate_DomainListsDistinctOffenders(t *testing.T) {
	table := validTable(t)
	dept, _ := table.Column("Department")
	dept.Strs[0] = "Legal"
	dept.Strs[2] = "Legal"
	dept.Strs[3] = "Warehouse"

	err := testSchema(t).Validate(table)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Violations) != 1 {
		t.Fatalf("violations = %d, want 1 (distinct values, not one per row)", len(ve.Violations))
	}
	msg := ve.Violations[0].Message
	if !strings.Contains(msg, "Legal") || !strings.Contains(msg, "Warehouse") {
		t.Errorf("message should list distinct offenders: %s", msg)
	}
	if strings.Count(msg, "Legal") != 1 {
		t.Errorf("offending values must be deduplicated: %s", msg)
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	table := validTable(t)
	_ = table.ReplaceColumn("Age", NewTextColumn("Age", []string{"a", "b", "c", "d", "e"}, nil))

	err := testSchema(t).Validate(table)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	found := false
	for _, v := range ve.Violations {
		if v.Rule == RuleTypeMismatch && strings.Contains(v.Message, "expected integer, got text") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a type mismatch naming both types, got %+v", ve.Violations)
	}
}

func TestValidate_ViolationOrderFollowsSchema(t *testing.T) {
	table := validTable(t)
	table.RemoveColumn("Attrition")
	age, _ := table.Column("Age")
	age.Ints[0] = 15
	dept, _ := table.Column("Department")
	dept.Strs[0] = "Legal"

	err := testSchema(t).Validate(table)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Presence violations come first, then per-column checks in schema order.
	if len(ve.Violations) != 3 {
		t.Fatalf("violations = %d, want 3", len(ve.Violations))
	}
	if ve.Violations[0].Column != "Attrition" || ve.Violations[0].Rule != RuleMissingColumn {
		t.Errorf("first violation should be the missing column, got %+v", ve.Violations[0])
	}
	if ve.Violations[1].Column != "Age" {
		t.Errorf("second violation should be Age (schema order), got %+v", ve.Violations[1])
	}
	if ve.Violations[2].Column != "Department" {
		t.Errorf("third violation should be Department, got %+v", ve.Violations[2])
	}
}

func TestValidate_EmptyDataset(t *testing.T) {
	err := testSchema(t).Validate(NewTable())
	if err == nil {
		t.Fatal("empty dataset should fail validation")
	}
	if loomerrors.GetCode(err) != loomerrors.CodeEmptyDataset {
		t.Errorf("code = %q, want %q", loomerrors.GetCode(err), loomerrors.CodeEmptyDataset)
	}
}

func TestValidate_DoesNotMutateTable(t *testing.T) {
	table := validTable(t)
	before := Fingerprint(table)
	_ = testSchema(t).Validate(table)
	if Fingerprint(table) != before {
		t.Error("validation must be a read-only inspection")
	}
}

func TestNewSchemaValidator_RejectsNonIntegerDomain(t *testing.T) {
	schema := &types.Schema{
		Version:    "test",
		PrimaryKey: "Level",
		Columns: []types.ColumnSpec{
			{Name: "Level", Kind: types.KindInteger, Required: true, AllowedValues: []any{1, 2, "three"}},
		},
	}
	if _, err := NewSchemaValidator(schema); err == nil {
		t.Error("integer columns with non-integer allowed values must be rejected")
	}
}
