package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Decision event names.
const (
	EventShipmentApproved = "shipment.approved"
	EventShipmentRejected = "shipment.rejected"
)

// DecisionEvent is published whenever a reviewer approves or rejects a shipment's
// carrier. Consumers key on ShipmentID.
type DecisionEvent struct {
	EventID           string    `json:"event_id"`
	Event             string    `json:"event"`
	ShipmentID        string    `json:"shipment_id"`
	Status            string    `json:"status"`
	PreviousCarrier   *string   `json:"previous_carrier"`
	Carrier           *string   `json:"carrier"`
	Comments          string    `json:"comments,omitempty"`
	CurrentCostUSD    *float64  `json:"current_cost_usd,omitempty"`
	CurrentEmissionKg *float64  `json:"current_emission_kg_co2e,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// NewDecisionEvent stamps a fresh event id.
func NewDecisionEvent(event, shipmentID, status string, at time.Time) DecisionEvent {
	return DecisionEvent{
		EventID:    uuid.NewString(),
		Event:      event,
		ShipmentID: shipmentID,
		Status:     status,
		OccurredAt: at.UTC(),
	}
}

// NotificationJob is the unit of work the relay drops on the notification queue.
type NotificationJob struct {
	Type    string        `json:"type"`
	Payload DecisionEvent `json:"payload"`
}
