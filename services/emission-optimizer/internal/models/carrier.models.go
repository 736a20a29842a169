package models

// Carrier is one entry of the carrier catalog (carriers.json).
type Carrier struct {
	Name           string  `json:"name"`
	Mode           string  `json:"mode"`             // air, road, rail, sea ... open ended
	BaseCostPerKm  float64 `json:"base_cost_per_km"` // USD per km
	AvgTransitDays *int    `json:"avg_transit_days,omitempty"`
}

// FactorSource tells where an emission factor came from.
type FactorSource string

const (
	FactorSourceOverride FactorSource = "override"
	FactorSourceTable    FactorSource = "emission_factors"
	FactorSourceDefault  FactorSource = "default"
)

// EmissionMethod is the formula every emission number is derived with.
const EmissionMethod = "weight_tons * distance_km * emission_factor_kgco2e_per_ton_km"

// EmissionCalculation is the provenance returned next to every emission value so a
// caller can see how the number was produced.
type EmissionCalculation struct {
	Method         string       `json:"method"`
	WeightTons     float64      `json:"weight_tons"`
	DistanceKm     float64      `json:"distance_km"`
	Mode           *string      `json:"mode"`
	EmissionFactor float64      `json:"emission_factor_kgco2e_per_ton_km"`
	FactorSource   FactorSource `json:"factor_source"`
}
