// Package synth generates schema-valid synthetic HR data for tests, local
// development, and the datagen binary.
package synth

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/loomhr/loom/internal/dataset"
)

// Generator produces synthetic employee tables. All output is deterministic
// for a given seed.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// departmentRoles maps each department to the roles it staffs.
var departmentRoles = map[string][]string{
	"IT":          {"Developer", "Engineer", "System Administrator", "IT Manager", "Technical Specialist"},
	"HR":          {"HR Manager", "HR Specialist", "Recruiter", "HR Director"},
	"Finance":     {"Financial Analyst", "Accountant", "Finance Manager", "Controller"},
	"Marketing":   {"Marketing Specialist", "Marketing Manager", "Brand Manager", "Marketing Director"},
	"Operations":  {"Operations Manager", "Operations Specialist", "Supply Chain Manager"},
	"Sales":       {"Sales Representative", "Sales Manager", "Account Executive", "Sales Director"},
	"Research":    {"Research Scientist", "Research Analyst", "Research Director"},
	"Engineering": {"Engineer", "Senior Engineer", "Engineering Manager", "Technical Director"},
}

// salaryRanges holds the [min, max) annual salary per role.
var salaryRanges = map[string][2]int{
	"Developer":             {60000, 120000},
	"Engineer":              {65000, 130000},
	"System Administrator":  {55000, 110000},
	"IT Manager":            {80000, 150000},
	"Technical Specialist":  {70000, 130000},
	"HR Manager":            {70000, 130000},
	"HR Specialist":         {50000, 90000},
	"Recruiter":             {45000, 85000},
	"HR Director":           {90000, 160000},
	"Financial Analyst":     {55000, 100000},
	"Accountant":            {50000, 95000},
	"Finance Manager":       {75000, 140000},
	"Controller":            {80000, 150000},
	"Marketing Specialist":  {50000, 95000},
	"Marketing Manager":     {70000, 130000},
	"Brand Manager":         {65000, 120000},
	"Marketing Director":    {85000, 150000},
	"Operations Manager":    {65000, 120000},
	"Operations Specialist": {50000, 90000},
	"Supply Chain Manager":  {70000, 130000},
	"Sales Representative":  {45000, 85000},
	"Sales Manager":         {65000, 120000},
	"Account Executive":     {55000, 110000},
	"Sales Director":        {80000, 150000},
	"Research Scientist":    {70000, 130000},
	"Research Analyst":      {55000, 100000},
	"Research Director":     {85000, 150000},
	"Senior Engineer":       {75000, 140000},
	"Engineering Manager":   {80000, 150000},
	"Technical Director":    {90000, 160000},
}

// educationFieldWeights holds per-department education field distributions.
var educationFieldWeights = map[string]map[string]float64{
	"IT":          {"Technical Degree": 0.6, "Life Sciences": 0.2, "Other": 0.2},
	"HR":          {"Human Resources": 0.5, "Life Sciences": 0.2, "Other": 0.3},
	"Finance":     {"Life Sciences": 0.3, "Marketing": 0.2, "Other": 0.5},
	"Marketing":   {"Marketing": 0.6, "Life Sciences": 0.2, "Other": 0.2},
	"Operations":  {"Technical Degree": 0.4, "Life Sciences": 0.3, "Other": 0.3},
	"Sales":       {"Marketing": 0.4, "Life Sciences": 0.2, "Other": 0.4},
	"Research":    {"Life Sciences": 0.7, "Medical": 0.2, "Other": 0.1},
	"Engineering": {"Technical Degree": 0.7, "Life Sciences": 0.2, "Other": 0.1},
}

var departments = []string{"IT", "HR", "Finance", "Marketing", "Operations", "Sales", "Research", "Engineering"}
var departmentWeights = []float64{0.25, 0.15, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}

// New creates a generator seeded for reproducibility.
func New(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now().UTC(),
	}
}

// NewAt creates a generator with a fixed reference time for tenure math.
func NewAt(seed int64, now time.Time) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: now.UTC(),
	}
}

// Generate produces a table of n employees valid against HRSchema.
func (g *Generator) Generate(n int) *dataset.Table {
	empNums := make([]int64, n)
	ages := make([]int64, n)
	depts := make([]string, n)
	roles := make([]string, n)
	salaries := make([]int64, n)
	yearsAtCompany := make([]int64, n)
	jobSat := make([]int64, n)
	wlb := make([]int64, n)
	perf := make([]int64, n)
	attrition := make([]string, n)
	hireDates := make([]time.Time, n)
	termDates := make([]time.Time, n)
	termNulls := make([]bool, n)
	education := make([]int64, n)
	eduField := make([]string, n)
	gender := make([]string, n)
	marital := make([]string, n)
	numCompanies := make([]int64, n)
	totalYears := make([]int64, n)
	training := make([]int64, n)
	yearsInRole := make([]int64, n)
	yearsSincePromo := make([]int64, n)
	yearsWithMgr := make([]int64, n)

	start := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		hireDates[i] = start.AddDate(0, 0, g.rng.Intn(3650))
	}
	sort.Slice(hireDates, func(i, j int) bool { return hireDates[i].Before(hireDates[j]) })

	for i := 0; i < n; i++ {
		empNums[i] = int64(i + 1)
		ages[i] = g.age()

		dept := g.weighted(departments, departmentWeights)
		depts[i] = dept
		role := departmentRoles[dept][g.rng.Intn(len(departmentRoles[dept]))]
		roles[i] = role
		r := salaryRanges[role]
		salaries[i] = int64(r[0] + g.rng.Intn(r[1]-r[0]))
		eduField[i] = g.educationField(dept)

		jobSat[i] = int64(1 + g.rng.Intn(5))
		wlb[i] = int64(1 + g.rng.Intn(5))
		perf[i] = int64(1 + g.rng.Intn(5))
		education[i] = int64(1 + g.rng.Intn(5))
		if g.rng.Float64() < 0.4 {
			gender[i] = "Female"
		} else {
			gender[i] = "Male"
		}
		marital[i] = g.weighted([]string{"Single", "Married", "Divorced"}, []float64{0.3, 0.5, 0.2})
		numCompanies[i] = int64(g.rng.Intn(11))
		training[i] = int64(g.rng.Intn(7))

		tenure := int64(g.now.Sub(hireDates[i]).Hours() / 24 / 365.25)
		if tenure < 0 {
			tenure = 0
		}
		yearsAtCompany[i] = tenure
		totalYears[i] = tenure + int64(g.rng.Intn(10))
		yearsInRole[i] = clampYears(g.boundedYears(tenure, 2.0), tenure)
		yearsSincePromo[i] = clampYears(g.boundedYears(yearsInRole[i], 1.5), yearsInRole[i])
		yearsWithMgr[i] = clampYears(g.boundedYears(tenure, 1.5), tenure)

		// Attrition correlates with tenure extremes, dissatisfaction,
		// low performance, and promotion stagnation.
		prob := g.attritionProbability(tenure, jobSat[i], wlb[i], perf[i], yearsSincePromo[i])
		if g.rng.Float64() < prob {
			attrition[i] = "Yes"
			termDates[i] = hireDates[i].AddDate(0, 0, 365+g.rng.Intn(3285))
		} else {
			attrition[i] = "No"
			termNulls[i] = true
		}
	}

	t := dataset.NewTable()
	// AddColumn only fails on duplicate names or row count mismatch,
	// neither of which can happen here.
	_ = t.AddColumn(dataset.NewIntColumn(dataset.ColEmployeeNumber, empNums, nil))
	_ = t.AddColumn(dataset.NewIntColumn("Age", ages, nil))
	_ = t.AddColumn(dataset.NewTextColumn("Department", depts, nil))
	_ = t.AddColumn(dataset.NewTextColumn("JobRole", roles, nil))
	_ = t.AddColumn(dataset.NewIntColumn("Salary", salaries, nil))
	_ = t.AddColumn(dataset.NewIntColumn("YearsAtCompany", yearsAtCompany, nil))
	_ = t.AddColumn(dataset.NewIntColumn("JobSatisfaction", jobSat, nil))
	_ = t.AddColumn(dataset.NewIntColumn("WorkLifeBalance", wlb, nil))
	_ = t.AddColumn(dataset.NewIntColumn("PerformanceRating", perf, nil))
	_ = t.AddColumn(dataset.NewTextColumn(dataset.ColAttrition, attrition, nil))
	_ = t.AddColumn(dataset.NewTimeColumn(dataset.ColHireDate, hireDates, nil))
	_ = t.AddColumn(dataset.NewTimeColumn(dataset.ColTerminationDate, termDates, termNulls))
	_ = t.AddColumn(dataset.NewIntColumn("Education", education, nil))
	_ = t.AddColumn(dataset.NewTextColumn("EducationField", eduField, nil))
	_ = t.AddColumn(dataset.NewTextColumn("Gender", gender, nil))
	_ = t.AddColumn(dataset.NewTextColumn("MaritalStatus", marital, nil))
	_ = t.AddColumn(dataset.NewIntColumn("NumCompaniesWorked", numCompanies, nil))
	_ = t.AddColumn(dataset.NewIntColumn("TotalWorkingYears", totalYears, nil))
	_ = t.AddColumn(dataset.NewIntColumn("TrainingTimesLastYear", training, nil))
	_ = t.AddColumn(dataset.NewIntColumn("YearsInCurrentRole", yearsInRole, nil))
	_ = t.AddColumn(dataset.NewIntColumn("YearsSinceLastPromotion", yearsSincePromo, nil))
	_ = t.AddColumn(dataset.NewIntColumn("YearsWithCurrManager", yearsWithMgr, nil))
	return t
}

// age draws from a normal distribution centered on 35, clipped to 18..65.
func (g *Generator) age() int64 {
	a := g.rng.NormFloat64()*8 + 35
	return int64(math.Min(math.Max(a, 18), 65))
}

func (g *Generator) educationField(dept string) string {
	weights := educationFieldWeights[dept]
	fields := make([]string, 0, len(weights))
	for f := range weights {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	probs := make([]float64, len(fields))
	for i, f := range fields {
		probs[i] = weights[f]
	}
	return g.weighted(fields, probs)
}

func (g *Generator) weighted(values []string, weights []float64) string {
	r := g.rng.Float64()
	var acc float64
	for i, w := range weights {
		acc += w
		if r < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

// boundedYears draws a random year count up to factor times the base.
func (g *Generator) boundedYears(base int64, factor float64) int64 {
	max := int64(float64(base)*factor) + 1
	return int64(g.rng.Intn(int(max)))
}

func clampYears(v, max int64) int64 {
	if v > max {
		return max
	}
	return v
}

func (g *Generator) attritionProbability(tenure, jobSat, wlb, perf, yearsSincePromo int64) float64 {
	prob := 0.1
	if tenure < 1 {
		prob += 0.2
	} else if tenure > 5 {
		prob += 0.1
	}
	prob += float64(5-jobSat) * 0.05
	prob += float64(5-wlb) * 0.05
	if perf < 3 {
		prob += 0.1
	}
	if yearsSincePromo > 3 {
		prob += 0.1
	}
	return math.Min(math.Max(prob, 0), 1)
}
