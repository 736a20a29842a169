// Package decision applies approve/reject outcomes to a shipment collection.
package decision

import (
	"strings"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/baseline"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/reference"
)

// Decision is a reviewer's verdict on a shipment's carrier choice.
type Decision struct {
	ShipmentID    string
	Status        models.Status // APPROVED or REJECTED
	ChosenCarrier *string       // approve only; nil or empty keeps the assigned carrier
	Comments      string
}

// Outcome describes what Record changed.
type Outcome struct {
	Shipment        models.Shipment
	PreviousCarrier *string
	Found           bool
}

// Record returns a copy of shipments with the decision applied to the matching
// record. The input slice is left untouched; persisting the result is up to the
// caller. Only the first record with the id is updated.
//
// An approval may switch carrier. Either verdict recomputes the current snapshot
// from the carrier the shipment ends up with. The original snapshot is taken first
// when missing, so it always reflects the carrier before any switch.
func Record(shipments []models.Shipment, d Decision, tables *reference.Tables) ([]models.Shipment, Outcome) {
	out := models.CloneShipments(shipments)
	for i := range out {
		s := &out[i]
		if s.ID != d.ShipmentID {
			continue
		}

		baseline.Ensure(s, tables)
		prev := s.Carrier

		if d.Status == models.StatusApproved && d.ChosenCarrier != nil && strings.TrimSpace(*d.ChosenCarrier) != "" {
			c := strings.TrimSpace(*d.ChosenCarrier)
			s.Carrier = &c
		}
		baseline.RecomputeCurrent(s, tables)

		comments := d.Comments
		s.Status = d.Status
		s.ApproverComments = &comments
		return out, Outcome{Shipment: s.Clone(), PreviousCarrier: prev, Found: true}
	}
	return out, Outcome{}
}
