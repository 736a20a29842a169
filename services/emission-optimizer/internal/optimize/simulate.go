package optimize

import (
	"time"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/estimate"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/reference"
)

// Overrides is a sparse what-if layered over the shipment's real values.
type Overrides struct {
	Mode           *string  `json:"mode,omitempty"`
	Carrier        *string  `json:"carrier,omitempty"`
	DistanceKm     *float64 `json:"distance_km,omitempty"`
	EmissionFactor *float64 `json:"emission_factor,omitempty"`
	TransitDays    *int     `json:"transit_days,omitempty"`
	CostPerKm      *float64 `json:"cost_per_km,omitempty"`
	SurchargesUSD  *float64 `json:"surcharges_usd,omitempty"`
}

// affectsCost reports whether the scenario needs repricing.
func (o Overrides) affectsCost() bool {
	return o.Carrier != nil || o.DistanceKm != nil || o.CostPerKm != nil || o.SurchargesUSD != nil
}

// Scenario is the shipment priced under the overrides.
type Scenario struct {
	Carrier             *string                    `json:"carrier"`
	Mode                *string                    `json:"mode"`
	DistanceKm          float64                    `json:"distance_km"`
	EmissionKgCO2e      float64                    `json:"emission_kg_co2e"`
	EmissionCalculation models.EmissionCalculation `json:"emission_calculation"`
	CostUSD             float64                    `json:"cost_usd"`
	TransitDays         *int                       `json:"transit_days"`
	Overrides           Overrides                  `json:"overrides"`
}

// Comparison is scenario minus current. A negative emission delta is a reduction.
type Comparison struct {
	EmissionDeltaKg  float64  `json:"emission_delta_kg"`
	EmissionDeltaPct *float64 `json:"emission_delta_pct"`
	CostDeltaUSD     float64  `json:"cost_delta_usd"`
}

// SimulationResult is the outcome of Simulate.
type SimulationResult struct {
	ShipmentID      string         `json:"shipment_id"`
	Scenario        Scenario       `json:"scenario"`
	Current         Current        `json:"current"`
	Comparison      Comparison     `json:"comparison"`
	PolicyAlignment *Alignment     `json:"policy_alignment"`
	Policy          *models.Policy `json:"policy,omitempty"`
}

// Simulate prices one what-if scenario against the shipment's current booking.
// The shipment is taken by value and nothing is persisted.
//
// Each value resolves as override, then the named carrier, then the assigned
// carrier. Transit time falls back to the mode default when the mode was
// overridden away from the carrier's own.
func Simulate(s models.Shipment, o Overrides, tables *reference.Tables, policy *models.Policy, now time.Time) SimulationResult {
	policy = constraining(policy)
	cur := CurrentOf(s, tables)

	carrierName := s.Carrier
	if o.Carrier != nil {
		carrierName = o.Carrier
	}
	var carrier *models.Carrier
	if carrierName != nil {
		carrier = tables.Carrier(*carrierName)
	}

	mode := estimate.CarrierMode(carrier)
	if o.Mode != nil {
		mode = o.Mode
	}

	distance := cur.DistanceKm
	if o.DistanceKm != nil {
		distance = *o.DistanceKm
	}

	kg, calc := estimate.Emission(s.WeightKg, distance, mode, o.EmissionFactor, tables)

	cost := cur.CostUSD
	if o.affectsCost() {
		rate := 0.0
		if carrier != nil {
			rate = carrier.BaseCostPerKm
		}
		if o.CostPerKm != nil {
			rate = *o.CostPerKm
		}
		surcharges := 0.0
		if o.SurchargesUSD != nil {
			surcharges = *o.SurchargesUSD
		}
		cost = estimate.Cost(distance, rate, surcharges)
	}

	sc := Scenario{
		Carrier:             carrierName,
		Mode:                mode,
		DistanceKm:          distance,
		EmissionKgCO2e:      kg,
		EmissionCalculation: calc,
		CostUSD:             cost,
		TransitDays:         scenarioTransitDays(o, carrier, mode),
		Overrides:           o,
	}

	res := SimulationResult{
		ShipmentID: s.ID,
		Scenario:   sc,
		Current:    cur,
		Comparison: compare(cur, sc),
		Policy:     policy,
	}
	if policy != nil {
		a := evaluate(baseline{cur.EmissionKgCO2e, cur.CostUSD}, sc.EmissionKgCO2e, sc.CostUSD, sc.TransitDays, *policy, now)
		res.PolicyAlignment = &a
	}
	return res
}

func scenarioTransitDays(o Overrides, carrier *models.Carrier, mode *string) *int {
	if o.TransitDays != nil {
		d := *o.TransitDays
		return &d
	}
	if carrier != nil && (mode == nil || *mode == carrier.Mode) {
		return estimate.TransitDays(carrier)
	}
	if mode != nil {
		if d, ok := estimate.ModeTransitDays(*mode); ok {
			return &d
		}
	}
	return nil
}

func compare(cur Current, sc Scenario) Comparison {
	c := Comparison{
		EmissionDeltaKg: estimate.Round2(sc.EmissionKgCO2e - cur.EmissionKgCO2e),
		CostDeltaUSD:    estimate.Round2(sc.CostUSD - cur.CostUSD),
	}
	if cur.EmissionKgCO2e != 0 {
		pct := estimate.Round2(c.EmissionDeltaKg / cur.EmissionKgCO2e * 100)
		c.EmissionDeltaPct = &pct
	}
	return c
}
