package agents

import (
	"testing"
	"time"

	"github.com/loomhr/loom/internal/dataset"
)

// hrRow is one employee for table-building in tests. Fields not listed use
// fixed valid values.
type hrRow struct {
	num       int64
	age       int64
	dept      string
	role      string
	salary    int64
	gender    string
	attrition string
}

func buildHRTable(t *testing.T, rows []hrRow) *dataset.Table {
	t.Helper()
	n := len(rows)

	nums := make([]int64, n)
	ages := make([]int64, n)
	depts := make([]string, n)
	roles := make([]string, n)
	salaries := make([]int64, n)
	genders := make([]string, n)
	attritions := make([]string, n)
	hires := make([]time.Time, n)
	terms := make([]time.Time, n)
	termNulls := make([]bool, n)

	ones := make([]int64, n)
	threes := make([]int64, n)
	eduFields := make([]string, n)
	maritals := make([]string, n)

	for i, r := range rows {
		nums[i] = r.num
		ages[i] = r.age
		depts[i] = r.dept
		roles[i] = r.role
		salaries[i] = r.salary
		genders[i] = r.gender
		attritions[i] = r.attrition
		hires[i] = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		if r.attrition == "Yes" {
			terms[i] = hires[i].AddDate(2, 0, 0)
		} else {
			termNulls[i] = true
		}
		ones[i] = 1
		threes[i] = 3
		eduFields[i] = "Other"
		maritals[i] = "Single"
	}

	table := dataset.NewTable()
	add := func(c *dataset.Column) {
		if err := table.AddColumn(c); err != nil {
			t.Fatalf("AddColumn %s: %v", c.Name, err)
		}
	}
	add(dataset.NewIntColumn(dataset.ColEmployeeNumber, nums, nil))
	add(dataset.NewIntColumn("Age", ages, nil))
	add(dataset.NewTextColumn("Department", depts, nil))
	add(dataset.NewTextColumn("JobRole", roles, nil))
	add(dataset.NewIntColumn("Salary", salaries, nil))
	add(dataset.NewIntColumn("YearsAtCompany", threes, nil))
	add(dataset.NewIntColumn("JobSatisfaction", threes, nil))
	add(dataset.NewIntColumn("WorkLifeBalance", threes, nil))
	add(dataset.NewIntColumn("PerformanceRating", threes, nil))
	add(dataset.NewTextColumn(dataset.ColAttrition, attritions, nil))
	add(dataset.NewTimeColumn(dataset.ColHireDate, hires, nil))
	add(dataset.NewTimeColumn(dataset.ColTerminationDate, terms, termNulls))
	add(dataset.NewIntColumn("Education", threes, nil))
	add(dataset.NewTextColumn("EducationField", eduFields, nil))
	add(dataset.NewTextColumn("Gender", genders, nil))
	add(dataset.NewTextColumn("MaritalStatus", maritals, nil))
	add(dataset.NewIntColumn("NumCompaniesWorked", ones, nil))
	add(dataset.NewIntColumn("TotalWorkingYears", threes, nil))
	add(dataset.NewIntColumn("TrainingTimesLastYear", ones, nil))
	add(dataset.NewIntColumn("YearsInCurrentRole", threes, nil))
	add(dataset.NewIntColumn("YearsSinceLastPromotion", ones, nil))
	add(dataset.NewIntColumn("YearsWithCurrManager", threes, nil))
	return table
}
