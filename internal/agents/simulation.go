package agents

import (
	"fmt"
	"math/rand"

	"github.com/loomhr/loom/internal/dataset"
	loomerrors "github.com/loomhr/loom/internal/errors"
)

// simulationSeed fixes participant sampling so repeated simulations of the
// same scenario agree.
const simulationSeed = 42

// Intervention describes a retention program to simulate.
type Intervention struct {
	Type            string  `json:"type"`
	EffectSizePct   float64 `json:"effect_size_pct"`
	CostPerEmployee float64 `json:"cost_per_employee"`
}

// Simulation runs retention what-if scenarios against the HR table.
type Simulation struct {
	validator *dataset.SchemaValidator
}

// NewSimulation creates the simulation agent over the canonical HR schema.
func NewSimulation() (*Simulation, error) {
	validator, err := dataset.NewSchemaValidator(dataset.HRSchema())
	if err != nil {
		return nil, err
	}
	return &Simulation{validator: validator}, nil
}

// Simulate projects attrition under the intervention. A deterministic sample
// of participationRate of the workforce takes part; among participants who
// would have left, EffectSizePct percent are rescued.
func (s *Simulation) Simulate(t *dataset.Table, iv Intervention, participationRate float64) (Result, error) {
	if err := s.validator.Validate(t); err != nil {
		return nil, err
	}
	if participationRate < 0 || participationRate > 1 {
		return nil, loomerrors.NewSchemaError(loomerrors.CodeSchemaViolation,
			fmt.Sprintf("participation_rate %g outside [0, 1]", participationRate))
	}

	attrition, _ := t.Column(dataset.ColAttrition)
	total := t.NumRows()

	attrited := make([]bool, total)
	baselineAttritions := 0
	for i := 0; i < total; i++ {
		if attrition.Strs[i] == "Yes" {
			attrited[i] = true
			baselineAttritions++
		}
	}
	baselineRate := float64(baselineAttritions) / float64(total)

	// Deterministic participant sample.
	nParticipants := int(float64(total) * participationRate)
	rng := rand.New(rand.NewSource(simulationSeed))
	perm := rng.Perm(total)
	participant := make([]bool, total)
	for _, i := range perm[:nParticipants] {
		participant[i] = true
	}

	participantAttritions := 0
	for i := 0; i < total; i++ {
		if participant[i] && attrited[i] {
			participantAttritions++
		}
	}

	effect := iv.EffectSizePct / 100.0
	rescued := int(float64(participantAttritions) * effect)

	projectedAttritions := baselineAttritions - rescued
	projectedRate := float64(projectedAttritions) / float64(total)

	return Result{
		"baseline_attrition_rate":  round3(baselineRate),
		"projected_attrition_rate": round3(projectedRate),
		"baseline_retention_rate":  round3(1 - baselineRate),
		"projected_retention_rate": round3(1 - projectedRate),
		"employees_participating":  nParticipants,
		"attritions_rescued":       rescued,
		"intervention_cost":        round2(float64(nParticipants) * iv.CostPerEmployee),
		"intervention_type":        iv.Type,
	}, nil
}

// Interventions lists the supported interventions with typical impact
// ranges.
func (s *Simulation) Interventions() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"Career Development Program": {
			"min_impact": 0.1, "max_impact": 0.3, "typical_impact": 0.2,
		},
		"Flexible Work Arrangements": {
			"min_impact": 0.05, "max_impact": 0.15, "typical_impact": 0.1,
		},
		"Compensation Adjustment": {
			"min_impact": 0.15, "max_impact": 0.25, "typical_impact": 0.2,
		},
		"Mentorship Program": {
			"min_impact": 0.08, "max_impact": 0.18, "typical_impact": 0.13,
		},
	}
}
