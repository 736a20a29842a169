// Package dashboard aggregates the original vs current snapshots into KPIs.
package dashboard

import (
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/estimate"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
)

type Summary struct {
	TotalShipments            int     `json:"total_shipments"`
	Approved                  int     `json:"approved"`
	Rejected                  int     `json:"rejected"`
	Pending                   int     `json:"pending"`
	TotalEmissionOriginal     float64 `json:"total_emission_original"`
	TotalEmissionCurrent      float64 `json:"total_emission_current"`
	TotalEmissionReduction    float64 `json:"total_emission_reduction"`
	TotalEmissionReductionPct float64 `json:"total_emission_reduction_pct"`
	TotalCostOriginal         float64 `json:"total_cost_original"`
	TotalCostCurrent          float64 `json:"total_cost_current"`
	TotalCostDelta            float64 `json:"total_cost_delta"`
}

type Detail struct {
	ShipmentID             string        `json:"shipment_id"`
	Origin                 string        `json:"origin"`
	Destination            string        `json:"destination"`
	Status                 models.Status `json:"status"`
	OriginalCarrier        *string       `json:"original_carrier"`
	CurrentCarrier         *string       `json:"current_carrier"`
	OriginalEmissionKgCO2e *float64      `json:"original_emission_kg_co2e"`
	CurrentEmissionKgCO2e  *float64      `json:"current_emission_kg_co2e"`
	OriginalCostUSD        *float64      `json:"original_cost_usd"`
	CurrentCostUSD         *float64      `json:"current_cost_usd"`
	EmissionDelta          float64       `json:"emission_delta"`
	CostDelta              float64       `json:"cost_delta"`
}

type Dashboard struct {
	Summary   Summary  `json:"summary"`
	Shipments []Detail `json:"shipments"`
}

// Summarize expects baselines to be in place; missing snapshot values count as 0.
func Summarize(shipments []models.Shipment) Dashboard {
	var (
		sum                        Summary
		emOrig, emCur, cOrig, cCur float64
	)
	details := make([]Detail, 0, len(shipments))

	for _, s := range shipments {
		switch s.EffectiveStatus() {
		case models.StatusApproved:
			sum.Approved++
		case models.StatusRejected:
			sum.Rejected++
		}

		eo, ec := value(s.OriginalEmissionKgCO2e), value(s.CurrentEmissionKgCO2e)
		co, cc := value(s.OriginalCostUSD), value(s.CurrentCostUSD)
		emOrig += eo
		emCur += ec
		cOrig += co
		cCur += cc

		details = append(details, Detail{
			ShipmentID:             s.ID,
			Origin:                 s.Origin,
			Destination:            s.Destination,
			Status:                 s.EffectiveStatus(),
			OriginalCarrier:        s.OriginalCarrier,
			CurrentCarrier:         s.Carrier,
			OriginalEmissionKgCO2e: s.OriginalEmissionKgCO2e,
			CurrentEmissionKgCO2e:  s.CurrentEmissionKgCO2e,
			OriginalCostUSD:        s.OriginalCostUSD,
			CurrentCostUSD:         s.CurrentCostUSD,
			EmissionDelta:          estimate.Round2(ec - eo),
			CostDelta:              estimate.Round2(cc - co),
		})
	}

	sum.TotalShipments = len(shipments)
	sum.Pending = sum.TotalShipments - sum.Approved - sum.Rejected
	sum.TotalEmissionOriginal = estimate.Round2(emOrig)
	sum.TotalEmissionCurrent = estimate.Round2(emCur)
	sum.TotalEmissionReduction = estimate.Round2(emOrig - emCur)
	if emOrig != 0 {
		sum.TotalEmissionReductionPct = estimate.Round2(sum.TotalEmissionReduction / emOrig * 100)
	}
	sum.TotalCostOriginal = estimate.Round2(cOrig)
	sum.TotalCostCurrent = estimate.Round2(cCur)
	sum.TotalCostDelta = estimate.Round2(cCur - cOrig)

	return Dashboard{Summary: sum, Shipments: details}
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
