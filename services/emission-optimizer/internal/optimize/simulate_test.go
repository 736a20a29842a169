package optimize

import (
	"testing"

	baselinepkg "github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/baseline"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate_ModeOverride(t *testing.T) {
	res := Simulate(roadShipment(), Overrides{Mode: models.StringPtr("rail")}, catalog(), nil, now)

	assert.Equal(t, 16.0, res.Scenario.EmissionKgCO2e)
	assert.Equal(t, 160.0, res.Scenario.CostUSD, "mode alone does not reprice")
	require.NotNil(t, res.Scenario.TransitDays)
	assert.Equal(t, 4, *res.Scenario.TransitDays)
	assert.Equal(t, -64.0, res.Comparison.EmissionDeltaKg)
	require.NotNil(t, res.Comparison.EmissionDeltaPct)
	assert.Equal(t, -80.0, *res.Comparison.EmissionDeltaPct)
	assert.Equal(t, 0.0, res.Comparison.CostDeltaUSD)
	assert.Nil(t, res.PolicyAlignment)
}

func TestSimulate_CarrierOverride(t *testing.T) {
	res := Simulate(roadShipment(), Overrides{Carrier: models.StringPtr("FastAir")}, catalog(), nil, now)

	assert.Equal(t, "FastAir", *res.Scenario.Carrier)
	assert.Equal(t, "air", *res.Scenario.Mode)
	assert.Equal(t, 400.0, res.Scenario.EmissionKgCO2e)
	assert.Equal(t, 600.0, res.Scenario.CostUSD)
	assert.Equal(t, 440.0, res.Comparison.CostDeltaUSD)
	assert.Equal(t, 2, *res.Scenario.TransitDays)
}

func TestSimulate_ExplicitValues(t *testing.T) {
	o := Overrides{
		DistanceKm:     models.FloatPtr(100),
		EmissionFactor: models.FloatPtr(0.2),
		CostPerKm:      models.FloatPtr(2),
		SurchargesUSD:  models.FloatPtr(15),
		TransitDays:    models.IntPtr(1),
	}
	res := Simulate(roadShipment(), o, catalog(), nil, now)

	assert.Equal(t, 40.0, res.Scenario.EmissionKgCO2e)
	assert.Equal(t, models.FactorSourceOverride, res.Scenario.EmissionCalculation.FactorSource)
	assert.Equal(t, 215.0, res.Scenario.CostUSD)
	assert.Equal(t, 1, *res.Scenario.TransitDays)
	assert.Equal(t, o, res.Scenario.Overrides)
}

func TestSimulate_PolicyAlignment(t *testing.T) {
	policy := &models.Policy{BudgetCapUSD: models.FloatPtr(100), SLADueDate: dueIn(3)}
	res := Simulate(roadShipment(), Overrides{Mode: models.StringPtr("rail")}, catalog(), policy, now)

	require.NotNil(t, res.PolicyAlignment)
	assert.True(t, res.PolicyAlignment.MeetsMinEmissionReduction)
	assert.False(t, *res.PolicyAlignment.WithinBudgetCap)
	assert.False(t, *res.PolicyAlignment.SLAMet)
}

func TestSimulate_DoesNotMutate(t *testing.T) {
	tables := catalog()
	ships, _ := baselinepkg.EnsureBaselines([]models.Shipment{roadShipment()}, tables)
	before := ships[0].Clone()

	Simulate(ships[0], Overrides{
		Carrier:    models.StringPtr("SeaCo"),
		Mode:       models.StringPtr("air"),
		DistanceKm: models.FloatPtr(5),
	}, tables, &models.Policy{SLAPriority: "low"}, now)

	assert.Equal(t, before, ships[0])
	assert.Equal(t, 80.0, *ships[0].CurrentEmissionKgCO2e)
}
