package store

import (
	"context"
	"sync"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
)

// UpdateFunc gets the loaded collection and returns the collection to persist.
// Returning changed == false skips the write.
type UpdateFunc func(shipments []models.Shipment) (updated []models.Shipment, changed bool, err error)

// Locker serialises read-modify-write cycles on one collection so two concurrent
// decisions cannot overwrite each other within a process.
type Locker struct {
	store ShipmentStore
	mu    sync.Mutex
}

func NewLocker(s ShipmentStore) *Locker {
	return &Locker{store: s}
}

// Load reads without taking the write lock.
func (l *Locker) Load(ctx context.Context) ([]models.Shipment, error) {
	return l.store.Load(ctx)
}

// Update loads, applies fn and saves while holding the lock.
func (l *Locker) Update(ctx context.Context, fn UpdateFunc) ([]models.Shipment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	shipments, err := l.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	updated, changed, err := fn(shipments)
	if err != nil {
		return nil, err
	}
	if !changed {
		return updated, nil
	}
	if err := l.store.Save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
