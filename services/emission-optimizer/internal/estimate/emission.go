package estimate

import (
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/reference"
)

// Emission computes kg CO2e for moving weightKg over distanceKm.
//
// The factor is the override when given, otherwise the table value for mode, otherwise
// reference.FallbackEmissionFactor. The returned calculation records which one was used.
func Emission(weightKg, distanceKm float64, mode *string, override *float64, tables *reference.Tables) (float64, models.EmissionCalculation) {
	tons := weightKg / 1000

	factor, source := reference.FallbackEmissionFactor, models.FactorSourceDefault
	if override != nil {
		factor, source = *override, models.FactorSourceOverride
	} else if f, found := tables.EmissionFactor(mode); found {
		factor, source = f, models.FactorSourceTable
	}

	calc := models.EmissionCalculation{
		Method:         models.EmissionMethod,
		WeightTons:     Round(tons, 6),
		DistanceKm:     distanceKm,
		Mode:           copyMode(mode),
		EmissionFactor: factor,
		FactorSource:   source,
	}
	return Round2(tons * distanceKm * factor), calc
}

// CarrierEmission is Emission with the mode of c (nil carrier means no mode).
func CarrierEmission(weightKg, distanceKm float64, c *models.Carrier, tables *reference.Tables) (float64, models.EmissionCalculation) {
	return Emission(weightKg, distanceKm, CarrierMode(c), nil, tables)
}

// CarrierMode returns the carrier's mode, nil for a nil carrier.
func CarrierMode(c *models.Carrier) *string {
	if c == nil {
		return nil
	}
	m := c.Mode
	return &m
}

func copyMode(mode *string) *string {
	if mode == nil {
		return nil
	}
	m := *mode
	return &m
}
