package service

import (
	"encoding/json"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
)

// ShipmentView is a stored shipment plus the mode of its assigned carrier.
type ShipmentView struct {
	models.Shipment
	Mode *string
}

func (v ShipmentView) MarshalJSON() ([]byte, error) {
	doc, err := json.Marshal(v.Shipment)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, err
	}
	mode, err := json.Marshal(v.Mode)
	if err != nil {
		return nil, err
	}
	fields["mode"] = mode
	return json.Marshal(fields)
}

// ModeInfo answers "which mode does this shipment travel by".
type ModeInfo struct {
	ShipmentID string  `json:"shipment_id"`
	Carrier    *string `json:"carrier"`
	Mode       *string `json:"mode"`
}

// EmissionRequest prices a stored shipment (ShipmentID set) or an ad-hoc one.
// Mode, DistanceKm and EmissionFactor override what would otherwise be derived.
type EmissionRequest struct {
	ShipmentID     string   `json:"shipment_id,omitempty"`
	Origin         string   `json:"origin,omitempty"`
	Destination    string   `json:"destination,omitempty"`
	WeightKg       *float64 `json:"weight_kg,omitempty"`
	Carrier        *string  `json:"carrier,omitempty"`
	Mode           *string  `json:"mode,omitempty"`
	DistanceKm     *float64 `json:"distance_km,omitempty"`
	EmissionFactor *float64 `json:"emission_factor,omitempty"`
}

type EmissionResult struct {
	ShipmentID          string                     `json:"shipment_id,omitempty"`
	Origin              string                     `json:"origin"`
	Destination         string                     `json:"destination"`
	WeightKg            float64                    `json:"weight_kg"`
	Carrier             *string                    `json:"carrier"`
	Mode                *string                    `json:"mode"`
	DistanceKm          float64                    `json:"distance_km"`
	EmissionKgCO2e      float64                    `json:"emission_kg_co2e"`
	EmissionCalculation models.EmissionCalculation `json:"emission_calculation"`
}

// CostRequest prices a leg. The rate is CostPerKm when given, else the carrier's.
type CostRequest struct {
	ShipmentID    string   `json:"shipment_id,omitempty"`
	Origin        string   `json:"origin,omitempty"`
	Destination   string   `json:"destination,omitempty"`
	Carrier       *string  `json:"carrier,omitempty"`
	DistanceKm    *float64 `json:"distance_km,omitempty"`
	CostPerKm     *float64 `json:"cost_per_km,omitempty"`
	SurchargesUSD *float64 `json:"surcharges_usd,omitempty"`
}

type CostResult struct {
	ShipmentID    string  `json:"shipment_id,omitempty"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	Carrier       *string `json:"carrier"`
	DistanceKm    float64 `json:"distance_km"`
	CostPerKm     float64 `json:"cost_per_km"`
	SurchargesUSD float64 `json:"surcharges_usd"`
	CostUSD       float64 `json:"cost_usd"`
}

// DecisionInput is an approve or reject request.
type DecisionInput struct {
	ShipmentID    string
	Status        models.Status
	ChosenCarrier *string
	Comments      string
}

type DecisionResult struct {
	Message       string          `json:"message"`
	ShipmentID    string          `json:"shipment_id"`
	Status        models.Status   `json:"status"`
	ChosenCarrier *string         `json:"chosen_carrier"`
	Comments      string          `json:"comments"`
	Shipment      models.Shipment `json:"shipment"`
}

// MarshalJSON always writes chosen_carrier on an approval, null when none was
// chosen, and leaves it out of a rejection.
func (r DecisionResult) MarshalJSON() ([]byte, error) {
	type plain DecisionResult
	if r.Status != models.StatusRejected {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		plain
		ChosenCarrier *string `json:"chosen_carrier,omitempty"`
	}{plain: plain(r)})
}
