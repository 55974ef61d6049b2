package agents

import (
	"sort"
	"strings"

	"github.com/loomhr/loom/internal/dataset"
	loomerrors "github.com/loomhr/loom/internal/errors"
)

// Diversity computes workforce diversity KPIs from the HR table: gender
// balance, leadership representation, turnover, pay equity, and department
// distribution.
type Diversity struct {
	validator *dataset.SchemaValidator
}

// NewDiversity creates the diversity agent over the canonical HR schema.
func NewDiversity() (*Diversity, error) {
	validator, err := dataset.NewSchemaValidator(dataset.HRSchema())
	if err != nil {
		return nil, err
	}
	return &Diversity{validator: validator}, nil
}

// leadershipSuffixes mark job roles counted as leadership positions.
var leadershipSuffixes = []string{"Manager", "Director", "Controller"}

func isLeadershipRole(role string) bool {
	for _, s := range leadershipSuffixes {
		if strings.HasSuffix(role, s) {
			return true
		}
	}
	return false
}

// Analyze returns the diversity KPI set for the table.
func (d *Diversity) Analyze(t *dataset.Table) (Result, error) {
	if err := d.validator.Validate(t); err != nil {
		return nil, err
	}

	gender, _ := t.Column("Gender")
	role, _ := t.Column("JobRole")
	salary, _ := t.Column("Salary")
	attrition, _ := t.Column(dataset.ColAttrition)
	department, _ := t.Column("Department")

	total := t.NumRows()
	if total == 0 {
		return nil, loomerrors.NewSchemaError(loomerrors.CodeEmptyDataset, "dataset has no rows")
	}

	kpis := Result{}

	// Gender ratio: share of female employees.
	females := 0
	for i := 0; i < total; i++ {
		if gender.Strs[i] == "Female" {
			females++
		}
	}
	kpis["gender_ratio"] = round3(float64(females) / float64(total))

	// Leadership representation.
	leaders, femaleLeaders := 0, 0
	for i := 0; i < total; i++ {
		if !isLeadershipRole(role.Strs[i]) {
			continue
		}
		leaders++
		if gender.Strs[i] == "Female" {
			femaleLeaders++
		}
	}
	if leaders > 0 {
		kpis["female_leadership_ratio"] = round3(float64(femaleLeaders) / float64(leaders))
	} else {
		kpis["female_leadership_ratio"] = nil
	}

	// Turnover split by gender among employees who left.
	left := 0
	leftByGender := map[string]int{}
	for i := 0; i < total; i++ {
		if attrition.Strs[i] == "Yes" {
			left++
			leftByGender[gender.Strs[i]]++
		}
	}
	turnover := map[string]float64{}
	for g, n := range leftByGender {
		turnover[g] = round3(float64(n) / float64(left))
	}
	kpis["turnover_by_gender"] = turnover

	// Median salary by gender and the female/male pay equity ratio.
	salariesByGender := map[string][]float64{}
	for i := 0; i < total; i++ {
		if v, ok := salary.Float64(i); ok {
			g := gender.Strs[i]
			salariesByGender[g] = append(salariesByGender[g], v)
		}
	}
	medians := map[string]float64{}
	for g, vals := range salariesByGender {
		medians[g] = median(vals)
	}
	kpis["median_salary_by_gender"] = medians
	if m, okM := medians["Male"]; okM && m != 0 {
		if f, okF := medians["Female"]; okF {
			kpis["pay_equity_ratio"] = round3(f / m)
		}
	}
	if _, ok := kpis["pay_equity_ratio"]; !ok {
		kpis["pay_equity_ratio"] = nil
	}

	// Department headcount distribution.
	deptCounts := map[string]int{}
	for i := 0; i < total; i++ {
		deptCounts[department.Strs[i]]++
	}
	deptDist := map[string]float64{}
	for dep, n := range deptCounts {
		deptDist[dep] = round3(float64(n) / float64(total))
	}
	kpis["department_distribution"] = deptDist

	kpis["total_employees"] = total

	return kpis, nil
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
