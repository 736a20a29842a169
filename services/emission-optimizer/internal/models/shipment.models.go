package models

import (
	"encoding/json"
	"fmt"
)

// Status is the approval state of a shipment's carrier choice.
type Status string

const (
	StatusCreated  Status = "CREATED"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Shipment is one record of the shipments collection.
//
// Optional fields are pointers so that "absent" and "zero" stay different things:
// the baseline manager only fills what is missing. Fields this version does not
// know about are kept in Extra and written back untouched.
type Shipment struct {
	ID          string
	Origin      string
	Destination string
	WeightKg    float64
	Carrier     *string // assigned carrier, nil when unassigned
	Status      Status  // empty means the record never had a status (treated as CREATED)
	CostUSD     *float64
	DistanceKm  *float64

	// original_* is the first-ever snapshot. original_carrier may be null and the
	// baseline still exists, so presence is tracked on its own.
	hasOriginal                 bool
	OriginalCarrier             *string
	OriginalCostUSD             *float64
	OriginalEmissionKgCO2e      *float64
	OriginalEmissionCalculation *EmissionCalculation

	CurrentCostUSD             *float64
	CurrentEmissionKgCO2e      *float64
	CurrentEmissionCalculation *EmissionCalculation

	ApproverComments *string

	Extra map[string]json.RawMessage
}

// HasOriginalBaseline reports whether the original snapshot was ever taken.
func (s Shipment) HasOriginalBaseline() bool {
	return s.hasOriginal
}

// SetOriginalBaseline records the permanent original snapshot. It is a no-op when
// the snapshot already exists.
func (s *Shipment) SetOriginalBaseline(carrier *string, costUSD, emissionKg float64, calc EmissionCalculation) bool {
	if s.hasOriginal {
		return false
	}
	s.hasOriginal = true
	s.OriginalCarrier = cloneString(carrier)
	s.OriginalCostUSD = &costUSD
	s.OriginalEmissionKgCO2e = &emissionKg
	s.OriginalEmissionCalculation = &calc
	return true
}

// SetCurrent overwrites the current cost/emission snapshot.
func (s *Shipment) SetCurrent(costUSD, emissionKg float64, calc EmissionCalculation) {
	s.CurrentCostUSD = &costUSD
	s.CurrentEmissionKgCO2e = &emissionKg
	s.CurrentEmissionCalculation = &calc
}

// HasCurrent reports whether both current values are present.
func (s Shipment) HasCurrent() bool {
	return s.CurrentCostUSD != nil && s.CurrentEmissionKgCO2e != nil
}

// CarrierName returns the assigned carrier or "" when unassigned.
func (s Shipment) CarrierName() string {
	if s.Carrier == nil {
		return ""
	}
	return *s.Carrier
}

// EffectiveStatus maps a missing status to CREATED.
func (s Shipment) EffectiveStatus() Status {
	if s.Status == "" {
		return StatusCreated
	}
	return s.Status
}

// Clone returns a copy that shares no maps with the receiver.
func (s Shipment) Clone() Shipment {
	out := s
	if s.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// CloneShipments copies a whole collection.
func CloneShipments(in []Shipment) []Shipment {
	out := make([]Shipment, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// shipmentWire is the on-disk / on-wire shape of the known fields.
type shipmentWire struct {
	ID                          string               `json:"shipment_id"`
	Origin                      string               `json:"origin"`
	Destination                 string               `json:"destination"`
	WeightKg                    float64              `json:"weight_kg"`
	Carrier                     *string              `json:"carrier"`
	Status                      Status               `json:"status,omitempty"`
	CostUSD                     *float64             `json:"cost_usd,omitempty"`
	DistanceKm                  *float64             `json:"distance_km,omitempty"`
	OriginalCostUSD             *float64             `json:"original_cost_usd,omitempty"`
	OriginalEmissionKgCO2e      *float64             `json:"original_emission_kg_co2e,omitempty"`
	OriginalEmissionCalculation *EmissionCalculation `json:"original_emission_calculation,omitempty"`
	CurrentCostUSD              *float64             `json:"current_cost_usd,omitempty"`
	CurrentEmissionKgCO2e       *float64             `json:"current_emission_kg_co2e,omitempty"`
	CurrentEmissionCalculation  *EmissionCalculation `json:"current_emission_calculation,omitempty"`
	ApproverComments            *string              `json:"approver_comments,omitempty"`
}

const originalCarrierKey = "original_carrier"

var knownShipmentKeys = []string{
	"shipment_id", "origin", "destination", "weight_kg", "carrier", "status",
	"cost_usd", "distance_km", originalCarrierKey, "original_cost_usd",
	"original_emission_kg_co2e", "original_emission_calculation", "current_cost_usd",
	"current_emission_kg_co2e", "current_emission_calculation", "approver_comments",
}

func (s Shipment) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(shipmentWire{
		ID:                          s.ID,
		Origin:                      s.Origin,
		Destination:                 s.Destination,
		WeightKg:                    s.WeightKg,
		Carrier:                     s.Carrier,
		Status:                      s.Status,
		CostUSD:                     s.CostUSD,
		DistanceKm:                  s.DistanceKm,
		OriginalCostUSD:             s.OriginalCostUSD,
		OriginalEmissionKgCO2e:      s.OriginalEmissionKgCO2e,
		OriginalEmissionCalculation: s.OriginalEmissionCalculation,
		CurrentCostUSD:              s.CurrentCostUSD,
		CurrentEmissionKgCO2e:       s.CurrentEmissionKgCO2e,
		CurrentEmissionCalculation:  s.CurrentEmissionCalculation,
		ApproverComments:            s.ApproverComments,
	})
	if err != nil {
		return nil, err
	}

	fields := make(map[string]json.RawMessage, len(knownShipmentKeys)+len(s.Extra))
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	if s.hasOriginal {
		raw, err := json.Marshal(s.OriginalCarrier)
		if err != nil {
			return nil, err
		}
		fields[originalCarrierKey] = raw
	}
	// known fields always win over a stale copy in Extra
	for k, v := range s.Extra {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

func (s *Shipment) UnmarshalJSON(data []byte) error {
	var wire shipmentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*s = Shipment{
		ID:                          wire.ID,
		Origin:                      wire.Origin,
		Destination:                 wire.Destination,
		WeightKg:                    wire.WeightKg,
		Carrier:                     wire.Carrier,
		Status:                      wire.Status,
		CostUSD:                     wire.CostUSD,
		DistanceKm:                  wire.DistanceKm,
		OriginalCostUSD:             wire.OriginalCostUSD,
		OriginalEmissionKgCO2e:      wire.OriginalEmissionKgCO2e,
		OriginalEmissionCalculation: wire.OriginalEmissionCalculation,
		CurrentCostUSD:              wire.CurrentCostUSD,
		CurrentEmissionKgCO2e:       wire.CurrentEmissionKgCO2e,
		CurrentEmissionCalculation:  wire.CurrentEmissionCalculation,
		ApproverComments:            wire.ApproverComments,
	}
	if raw, ok := fields[originalCarrierKey]; ok {
		s.hasOriginal = true
		if err := json.Unmarshal(raw, &s.OriginalCarrier); err != nil {
			return fmt.Errorf("original_carrier: %w", err)
		}
	}

	for _, k := range knownShipmentKeys {
		delete(fields, k)
	}
	if len(fields) > 0 {
		s.Extra = fields
	}
	return nil
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// StringPtr and FloatPtr are small helpers for building optional fields.
func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }

func IntPtr(v int) *int { return &v }
