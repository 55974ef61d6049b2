package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomhr/loom/internal/synth"
)

func TestSimulationFullParticipation(t *testing.T) {
	table := buildHRTable(t, []hrRow{
		{1, 30, "IT", "Developer", 80000, "Male", "Yes"},
		{2, 35, "IT", "Developer", 85000, "Female", "Yes"},
		{3, 40, "IT", "Developer", 90000, "Male", "Yes"},
		{4, 45, "IT", "Developer", 95000, "Female", "Yes"},
		{5, 50, "IT", "Developer", 99000, "Male", "No"},
	})

	agent, err := NewSimulation()
	require.NoError(t, err)

	iv := Intervention{Type: "Mentorship Program", EffectSizePct: 50, CostPerEmployee: 1000}
	result, err := agent.Simulate(table, iv, 1.0)
	require.NoError(t, err)

	// 4 of 5 attrited; full participation rescues 50% of 4 = 2.
	assert.Equal(t, 0.8, result["baseline_attrition_rate"])
	assert.Equal(t, 2, result["attritions_rescued"])
	assert.Equal(t, 0.4, result["projected_attrition_rate"])
	assert.Equal(t, 0.6, result["projected_retention_rate"])
	assert.Equal(t, 5, result["employees_participating"])
	assert.Equal(t, 5000.0, result["intervention_cost"])
	assert.Equal(t, "Mentorship Program", result["intervention_type"])
}

func TestSimulationDeterministicSampling(t *testing.T) {
	table := synth.New(42).Generate(200)

	agent, err := NewSimulation()
	require.NoError(t, err)

	iv := Intervention{Type: "Career Development Program", EffectSizePct: 20, CostPerEmployee: 500}

	first, err := agent.Simulate(table, iv, 0.5)
	require.NoError(t, err)
	second, err := agent.Simulate(table, iv, 0.5)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same scenario must produce identical results")
	assert.Equal(t, 100, first["employees_participating"])
}

func TestSimulationZeroEffect(t *testing.T) {
	table := synth.New(7).Generate(100)

	agent, err := NewSimulation()
	require.NoError(t, err)

	result, err := agent.Simulate(table, Intervention{Type: "None"}, 1.0)
	require.NoError(t, err)

	assert.Equal(t, 0, result["attritions_rescued"])
	assert.Equal(t, result["baseline_attrition_rate"], result["projected_attrition_rate"])
}

func TestSimulationRejectsBadParticipationRate(t *testing.T) {
	table := synth.New(7).Generate(50)

	agent, err := NewSimulation()
	require.NoError(t, err)

	_, err = agent.Simulate(table, Intervention{}, 1.5)
	assert.Error(t, err)
	_, err = agent.Simulate(table, Intervention{}, -0.1)
	assert.Error(t, err)
}

func TestSimulationInterventionsCatalog(t *testing.T) {
	agent, err := NewSimulation()
	require.NoError(t, err)

	catalog := agent.Interventions()
	require.Contains(t, catalog, "Mentorship Program")
	for name, impact := range catalog {
		assert.LessOrEqual(t, impact["min_impact"], impact["typical_impact"], name)
		assert.LessOrEqual(t, impact["typical_impact"], impact["max_impact"], name)
	}
}
