package httpServer

import (
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/optimize"
)

type errorResponse struct {
	Error string `json:"error"`
}

type simulateRequest struct {
	ShipmentID string              `json:"shipment_id"`
	Overrides  optimize.Overrides  `json:"overrides"`
	Policy     *models.PolicyInput `json:"policy,omitempty"`
}

type approveRequest struct {
	ShipmentID    string  `json:"shipment_id"`
	ChosenCarrier *string `json:"chosen_carrier"`
	Comments      string  `json:"comments"`
}

type rejectRequest struct {
	ShipmentID string `json:"shipment_id"`
	Comments   string `json:"comments"`
}
