package agents

import (
	loomerrors "github.com/loomhr/loom/internal/errors"
)

// hiringOverhead is the multiplier applied to average salary to estimate the
// fully loaded cost of one hire (recruiting, onboarding, equipment).
const hiringOverhead = 1.3

// HeadcountEntry is one role in the headcount plan.
type HeadcountEntry struct {
	Role         string  `json:"role"`
	PlannedHires int     `json:"planned_hires"`
	AvgSalary    float64 `json:"avg_salary"`
}

// PipelineEntry is one historical hiring-pipeline observation.
type PipelineEntry struct {
	Role           string  `json:"role"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Planning forecasts next-quarter hiring volume and budget from a headcount
// plan and the hiring pipeline history.
type Planning struct{}

// NewPlanning creates the workforce planning agent.
func NewPlanning() *Planning {
	return &Planning{}
}

// Forecast merges the headcount plan with per-role mean conversion rates and
// projects expected hires and cost. Roles with no pipeline history assume a
// conversion rate of 1.0.
func (p *Planning) Forecast(plan []HeadcountEntry, pipeline []PipelineEntry) (Result, error) {
	if len(plan) == 0 {
		return nil, loomerrors.NewSchemaError(loomerrors.CodeEmptyDataset,
			"headcount plan has no entries")
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, e := range pipeline {
		sums[e.Role] += e.ConversionRate
		counts[e.Role]++
	}

	var totalHires, totalCost float64
	byRole := make([]map[string]any, 0, len(plan))
	for _, e := range plan {
		rate := 1.0
		if n := counts[e.Role]; n > 0 {
			rate = sums[e.Role] / float64(n)
		}
		expected := float64(e.PlannedHires) * rate
		costPerHire := e.AvgSalary * hiringOverhead
		cost := expected * costPerHire

		totalHires += expected
		totalCost += cost
		byRole = append(byRole, map[string]any{
			"role":           e.Role,
			"expected_hires": round2(expected),
			"total_cost":     round2(cost),
		})
	}

	return Result{
		"next_quarter_hires": int(totalHires),
		"budget_impact":      round2(totalCost),
		"by_role":            byRole,
	}, nil
}

// Roles lists the roles available for planning, from the HR job role domain.
func (p *Planning) Roles() []string {
	return []string{
		"Developer", "Engineer", "Senior Engineer", "System Administrator",
		"Data Scientist", "Product Manager", "UX Designer",
		"DevOps Engineer", "QA Engineer",
	}
}

// SalaryRanges returns reference salary ranges per role.
func (p *Planning) SalaryRanges() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"Software Engineer": {"min": 80000, "max": 150000, "average": 115000},
		"Data Scientist":    {"min": 90000, "max": 160000, "average": 125000},
		"Product Manager":   {"min": 95000, "max": 170000, "average": 132500},
	}
}
