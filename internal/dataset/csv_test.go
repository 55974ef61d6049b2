package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/loomhr/loom/pkg/types"
)

const sampleCSV = `EmployeeNumber,Age,Department,Salary,HireDate,TerminationDate
1,30,IT,60000,2015-03-01,
2,35,HR,55000,2016-07-15,2020-01-31
3,40,IT,70000,2017-11-20,
`

func TestReadCSV_TypeInference(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV), DateColumns)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	if table.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", table.NumRows())
	}

	kinds := map[string]types.Kind{
		"EmployeeNumber":  types.KindInteger,
		"Age":             types.KindInteger,
		"Department":      types.KindText,
		"Salary":          types.KindInteger,
		"HireDate":        types.KindDateTime,
		"TerminationDate": types.KindDateTime,
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
}

func TestReadCSV_EmptyTerminationDateIsMissing(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV), DateColumns)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	term, _ := table.Column("TerminationDate")
	if !term.IsNull(0) || !term.IsNull(2) {
		t.Error("empty termination dates should be missing")
	}
	if term.IsNull(1) {
		t.Error("populated termination date should not be missing")
	}
}

func TestReadCSV_UnparseableDateBecomesMissing(t *testing.T) {
	csv := "HireDate\n2015-03-01\nnot-a-date\n"
	table, err := ReadCSV(strings.NewReader(csv), []string{"HireDate"})
	if err != nil {
		t.Fatalf("ReadCSV should not fail on unparseable dates: %v", err)
	}

	col, _ := table.Column("HireDate")
	if col.IsNull(0) {
		t.Error("valid date should parse")
	}
	if !col.IsNull(1) {
		t.Error("unparseable date should be left missing")
	}
}

func TestReadCSV_FloatAndBool(t *testing.T) {
	csv := "Score,Active\n1.5,true\n2.25,false\n"
	table, err := ReadCSV(strings.NewReader(csv), nil)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	score, _ := table.Column("Score")
	if score.Kind != types.KindFloat {
		t.Errorf("Score kind = %s, want float", score.Kind)
	}
	active, _ := table.Column("Active")
	if active.Kind != types.KindBoolean {
		t.Errorf("Active kind = %s, want boolean", active.Kind)
	}
}

func TestReadCSV_EmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader(""), nil); err == nil {
		t.Error("empty input should fail")
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	orig, err := ReadCSV(strings.NewReader(sampleCSV), DateColumns)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, orig); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	again, err := ReadCSV(&buf, DateColumns)
	if err != nil {
		t.Fatalf("ReadCSV(round trip): %v", err)
	}

	if Fingerprint(orig) != Fingerprint(again) {
		t.Error("CSV round trip should preserve table content")
	}
}
