package synth

import (
	"testing"
	"time"

	"github.com/loomhr/loom/internal/dataset"
)

func TestGenerateValidatesAgainstSchema(t *testing.T) {
	validator, err := dataset.NewSchemaValidator(dataset.HRSchema())
	if err != nil {
		t.Fatalf("NewSchemaValidator: %v", err)
	}

	table := New(42).Generate(200)
	if table.NumRows() != 200 {
		t.Fatalf("NumRows = %d, want 200", table.NumRows())
	}
	if err := validator.Validate(table); err != nil {
		t.Fatalf("generated data fails validation: %v", err)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	a := NewAt(7, now).Generate(100)
	b := NewAt(7, now).Generate(100)

	if dataset.Fingerprint(a) != dataset.Fingerprint(b) {
		t.Error("same seed produced different tables")
	}

	c := NewAt(8, now).Generate(100)
	if dataset.Fingerprint(a) == dataset.Fingerprint(c) {
		t.Error("different seeds produced identical tables")
	}
}

func TestGenerateRolesMatchDepartments(t *testing.T) {
	table := New(3).Generate(150)

	depts, _ := table.Column("Department")
	roles, _ := table.Column("JobRole")
	for i := 0; i < table.NumRows(); i++ {
		valid := false
		for _, r := range departmentRoles[depts.Strs[i]] {
			if r == roles.Strs[i] {
				valid = true
				break
			}
		}
		if !valid {
			t.Fatalf("row %d: role %q not staffed by department %q",
				i, roles.Strs[i], depts.Strs[i])
		}
	}
}

func TestGenerateSalariesWithinRoleRange(t *testing.T) {
	table := New(5).Generate(150)

	roles, _ := table.Column("JobRole")
	salaries, _ := table.Column("Salary")
	for i := 0; i < table.NumRows(); i++ {
		r := salaryRanges[roles.Strs[i]]
		s := salaries.Ints[i]
		if s < int64(r[0]) || s >= int64(r[1]) {
			t.Fatalf("row %d: salary %d outside range %v for role %q",
				i, s, r, roles.Strs[i])
		}
	}
}

func TestGenerateAttritionConsistentWithTermination(t *testing.T) {
	table := New(11).Generate(200)

	attrition, _ := table.Column(dataset.ColAttrition)
	term, _ := table.Column(dataset.ColTerminationDate)
	hire, _ := table.Column(dataset.ColHireDate)
	for i := 0; i < table.NumRows(); i++ {
		left := attrition.Strs[i] == "Yes"
		if left == term.IsNull(i) {
			t.Fatalf("row %d: attrition %q but termination null=%v",
				i, attrition.Strs[i], term.IsNull(i))
		}
		if left && !term.Times[i].After(hire.Times[i]) {
			t.Fatalf("row %d: termination %v not after hire %v",
				i, term.Times[i], hire.Times[i])
		}
	}
}

func TestGenerateBothAttritionClasses(t *testing.T) {
	table := New(42).Generate(300)

	attrition, _ := table.Column(dataset.ColAttrition)
	yes, no := 0, 0
	for i := 0; i < table.NumRows(); i++ {
		if attrition.Strs[i] == "Yes" {
			yes++
		} else {
			no++
		}
	}
	if yes == 0 || no == 0 {
		t.Errorf("degenerate attrition distribution: yes=%d no=%d", yes, no)
	}
}
