// Package optimize compares a shipment's current carrier against the rest of the
// catalog and picks a recommendation, optionally constrained by a policy.
package optimize

import (
	"time"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/estimate"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/reference"
)

// Current is the shipment as it is booked today.
type Current struct {
	Carrier             *string                    `json:"carrier"`
	Mode                *string                    `json:"mode"`
	DistanceKm          float64                    `json:"distance_km"`
	EmissionKgCO2e      float64                    `json:"emission_kg_co2e"`
	EmissionCalculation models.EmissionCalculation `json:"emission_calculation"`
	CostUSD             float64                    `json:"cost_usd"`
	TransitDays         *int                       `json:"transit_days"`
}

// Alternative is one other carrier priced for the same shipment.
type Alternative struct {
	Carrier             string                     `json:"carrier"`
	Mode                string                     `json:"mode"`
	DistanceKm          float64                    `json:"distance_km"`
	EmissionKgCO2e      float64                    `json:"emission_kg_co2e"`
	EmissionCalculation models.EmissionCalculation `json:"emission_calculation"`
	EstimatedCostUSD    float64                    `json:"estimated_cost_usd"`
	TransitDays         *int                       `json:"transit_days"`
	PolicyAlignment     *Alignment                 `json:"policy_alignment,omitempty"`
}

// Result is the outcome of Optimize.
type Result struct {
	ShipmentID   string         `json:"shipment_id"`
	Current      Current        `json:"current"`
	Alternatives []Alternative  `json:"alternatives"`
	Recommended  *Alternative   `json:"recommended"`
	Policy       *models.Policy `json:"policy,omitempty"`
	// PolicySatisfied is false when no alternative met the policy and the
	// recommendation was taken from the unfiltered set. Nil when no filter ran.
	PolicySatisfied *bool `json:"policy_satisfied,omitempty"`
}

// CurrentOf prices the shipment with its assigned carrier. Without a carrier the
// fallback emission factor applies and the cost is the declared one, or 0.
func CurrentOf(s models.Shipment, tables *reference.Tables) Current {
	distance := estimate.ShipmentDistance(s, tables)
	carrier := tables.Carrier(s.CarrierName())
	kg, calc := estimate.CarrierEmission(s.WeightKg, distance, carrier, tables)
	return Current{
		Carrier:             s.Carrier,
		Mode:                estimate.CarrierMode(carrier),
		DistanceKm:          distance,
		EmissionKgCO2e:      kg,
		EmissionCalculation: calc,
		CostUSD:             estimate.ShipmentCost(s, distance, tables),
		TransitDays:         estimate.TransitDays(carrier),
	}
}

// Optimize evaluates every carrier other than the assigned one. With a policy and a
// nonzero current emission, the recommendation is drawn from the alternatives that
// satisfy the policy; when none do it falls back to the best of all alternatives.
func Optimize(s models.Shipment, tables *reference.Tables, policy *models.Policy, now time.Time) Result {
	policy = constraining(policy)
	cur := CurrentOf(s, tables)
	res := Result{
		ShipmentID:   s.ID,
		Current:      cur,
		Alternatives: []Alternative{},
		Policy:       policy,
	}

	for _, c := range tables.Alternatives(s.CarrierName()) {
		kg, calc := estimate.Emission(s.WeightKg, cur.DistanceKm, &c.Mode, nil, tables)
		alt := Alternative{
			Carrier:             c.Name,
			Mode:                c.Mode,
			DistanceKm:          cur.DistanceKm,
			EmissionKgCO2e:      kg,
			EmissionCalculation: calc,
			EstimatedCostUSD:    estimate.Cost(cur.DistanceKm, c.BaseCostPerKm, 0),
			TransitDays:         estimate.TransitDays(&c),
		}
		if policy != nil {
			a := evaluate(baseline{cur.EmissionKgCO2e, cur.CostUSD}, alt.EmissionKgCO2e, alt.EstimatedCostUSD, alt.TransitDays, *policy, now)
			alt.PolicyAlignment = &a
		}
		res.Alternatives = append(res.Alternatives, alt)
	}
	if len(res.Alternatives) == 0 {
		return res
	}

	candidates := res.Alternatives
	if policy != nil && cur.EmissionKgCO2e != 0 {
		compliant := make([]Alternative, 0, len(candidates))
		for _, alt := range candidates {
			if alt.PolicyAlignment.compliant(*policy) {
				compliant = append(compliant, alt)
			}
		}
		satisfied := len(compliant) > 0
		res.PolicySatisfied = &satisfied
		if satisfied {
			candidates = compliant
		}
	}

	best := pickBest(candidates)
	res.Recommended = &best
	return res
}

// pickBest returns the lowest emission alternative. Ties go to the lower cost, then
// to the carrier name so catalog order never decides.
func pickBest(alts []Alternative) Alternative {
	best := alts[0]
	for _, candidate := range alts[1:] {
		if candidate.EmissionKgCO2e != best.EmissionKgCO2e {
			if candidate.EmissionKgCO2e < best.EmissionKgCO2e {
				best = candidate
			}
			continue
		}
		if candidate.EstimatedCostUSD != best.EstimatedCostUSD {
			if candidate.EstimatedCostUSD < best.EstimatedCostUSD {
				best = candidate
			}
			continue
		}
		if candidate.Carrier < best.Carrier {
			best = candidate
		}
	}
	return best
}
