package estimate

import (
	"testing"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTables() *reference.Tables {
	return reference.NewTables(
		[]models.Carrier{
			{Name: "FastAir", Mode: "air", BaseCostPerKm: 1.5},
			{Name: "RoadCo", Mode: "road", BaseCostPerKm: 0.4, AvgTransitDays: models.IntPtr(3)},
		},
		map[string]float64{"NYC-BOS": 350},
		map[string]float64{"air": 0.5, "road": 0.1},
	)
}

func TestCost(t *testing.T) {
	assert.Equal(t, 100.0, Cost(500, 0.2, 0))
	assert.Equal(t, 110.0, Cost(500, 0.2, 10))
	assert.Equal(t, 0.0, Cost(0, 3, 0))
	assert.Equal(t, 33.33, Cost(100, 0.33333, 0))
}

func TestRound2_HalfEven(t *testing.T) {
	assert.Equal(t, 0.12, Round2(0.125))
	assert.Equal(t, 0.14, Round2(0.135))
	assert.Equal(t, 1.0, Round2(0.999))
	assert.Equal(t, -0.12, Round2(-0.125))
}

func TestRound2_UsesBinaryValue(t *testing.T) {
	// 2.675 is stored just below the tie and 2.345 just above it
	assert.Equal(t, 2.67, Round2(2.675))
	assert.Equal(t, 2.35, Round2(2.345))
	assert.Equal(t, 0.0, Round2(0.004999))

	kg, _ := Emission(2345, 1, nil, models.FloatPtr(1.0), testTables())
	assert.Equal(t, 2.35, kg)
	assert.Equal(t, 2.67, Cost(1, 2.675, 0))
}

func TestEmission_UnknownModeUsesDefault(t *testing.T) {
	kg, calc := Emission(1000, 100, models.StringPtr("unknown-mode"), nil, testTables())

	assert.Equal(t, 10.0, kg)
	assert.Equal(t, models.FactorSourceDefault, calc.FactorSource)
	assert.Equal(t, 0.1, calc.EmissionFactor)
	require.NotNil(t, calc.Mode)
	assert.Equal(t, "unknown-mode", *calc.Mode)
}

func TestEmission_TableFactor(t *testing.T) {
	kg, calc := Emission(2000, 500, models.StringPtr("air"), nil, testTables())

	assert.Equal(t, 500.0, kg)
	assert.Equal(t, models.EmissionCalculation{
		Method:         models.EmissionMethod,
		WeightTons:     2,
		DistanceKm:     500,
		Mode:           models.StringPtr("air"),
		EmissionFactor: 0.5,
		FactorSource:   models.FactorSourceTable,
	}, calc)
}

func TestEmission_Override(t *testing.T) {
	cases := []struct {
		weight, distance, factor float64
	}{
		{1, 1, 0},
		{1234.5, 987.6, 0.03},
		{10, 2500, 1.1},
		{999999, 0, 0.7},
	}
	for _, tc := range cases {
		kg, calc := Emission(tc.weight, tc.distance, models.StringPtr("air"), &tc.factor, testTables())
		assert.Equal(t, Round2(tc.weight/1000*tc.distance*tc.factor), kg)
		assert.Equal(t, models.FactorSourceOverride, calc.FactorSource)
		assert.Equal(t, tc.factor, calc.EmissionFactor)
	}
}

func TestEmission_NoModeAndTonsPrecision(t *testing.T) {
	_, calc := Emission(1234.5678912, 10, nil, nil, testTables())
	assert.Nil(t, calc.Mode)
	assert.Equal(t, models.FactorSourceDefault, calc.FactorSource)
	assert.Equal(t, 1.234568, calc.WeightTons)
}

func TestTransitDays(t *testing.T) {
	assert.Nil(t, TransitDays(nil))

	stated := TransitDays(&models.Carrier{Mode: "sea", AvgTransitDays: models.IntPtr(9)})
	require.NotNil(t, stated)
	assert.Equal(t, 9, *stated)

	for mode, want := range map[string]int{"air": 2, "road": 5, "rail": 4, "sea": 14} {
		got := TransitDays(&models.Carrier{Mode: mode})
		require.NotNil(t, got, mode)
		assert.Equal(t, want, *got, mode)
	}
	assert.Nil(t, TransitDays(&models.Carrier{Mode: "drone"}))
}

func TestShipmentCost(t *testing.T) {
	tables := testTables()

	booked := models.Shipment{Carrier: models.StringPtr("FastAir"), CostUSD: models.FloatPtr(42)}
	assert.Equal(t, 42.0, ShipmentCost(booked, 350, tables), "declared quote wins on the booked carrier")

	booked.SetOriginalBaseline(models.StringPtr("FastAir"), 42, 1, models.EmissionCalculation{})
	assert.Equal(t, 42.0, ShipmentCost(booked, 350, tables))

	booked.Carrier = models.StringPtr("RoadCo")
	assert.Equal(t, 140.0, ShipmentCost(booked, 350, tables), "switched carrier is priced from the catalog")

	unassigned := models.Shipment{}
	assert.Equal(t, 0.0, ShipmentCost(unassigned, 350, tables))

	unknown := models.Shipment{Carrier: models.StringPtr("Ghost")}
	assert.Equal(t, 0.0, ShipmentCost(unknown, 350, tables))
}

func TestShipmentDistance(t *testing.T) {
	tables := testTables()
	assert.Equal(t, 350.0, ShipmentDistance(models.Shipment{Origin: "NYC", Destination: "BOS"}, tables))
	assert.Equal(t, 1000.0, ShipmentDistance(models.Shipment{Origin: "BOS", Destination: "NYC"}, tables))
	assert.Equal(t, 12.5, ShipmentDistance(models.Shipment{Origin: "NYC", Destination: "BOS", DistanceKm: models.FloatPtr(12.5)}, tables))
}
