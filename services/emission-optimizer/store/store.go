// store/store.go
package store

import (
	"context"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
)

// ShipmentStore loads and saves the whole shipments collection.
// Implementations must keep fields they do not know about; models.Shipment carries
// them in Extra, so a store only has to round-trip the JSON document.
type ShipmentStore interface {
	// Load returns the collection in stored order. An empty store is an empty slice.
	Load(ctx context.Context) ([]models.Shipment, error)

	// Save replaces the collection.
	Save(ctx context.Context, shipments []models.Shipment) error
}
