package store

import (
	"context"
	"sync"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
)

// MemoryStore keeps the collection in process. Used by tests and the CLI dry runs.
type MemoryStore struct {
	shipments []models.Shipment
	mu        sync.RWMutex
}

func NewMemoryStore(seed ...models.Shipment) *MemoryStore {
	return &MemoryStore{shipments: models.CloneShipments(seed)}
}

func (s *MemoryStore) Load(ctx context.Context) ([]models.Shipment, error) {
	// Check if the context is canceled or timed out
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneShipments(s.shipments), nil
}

func (s *MemoryStore) Save(ctx context.Context, shipments []models.Shipment) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipments = models.CloneShipments(shipments)
	return nil
}
