// Package reference holds the read-only lookup tables the estimators work from:
// distances between locations, the carrier catalog and emission factors per mode.
// Every lookup has a fixed fallback so a missing key never becomes an error.
package reference

import (
	"context"
	"fmt"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	// FallbackDistanceKm is used for any origin-destination pair missing from the table.
	FallbackDistanceKm = 1000.0
	// FallbackEmissionFactor (kg CO2e per ton-km) is used for a missing or unknown mode.
	FallbackEmissionFactor = 0.1
)

// Source loads the raw reference tables.
type Source interface {
	Carriers(ctx context.Context) ([]models.Carrier, error)
	Distances(ctx context.Context) (map[string]float64, error)
	EmissionFactors(ctx context.Context) (map[string]float64, error)
}

// Tables is an immutable snapshot of the reference data for one request.
type Tables struct {
	carriers  []models.Carrier
	distances map[string]float64
	factors   map[string]float64
}

// NewTables builds a snapshot from already loaded data. The inputs are copied.
func NewTables(carriers []models.Carrier, distances, factors map[string]float64) *Tables {
	t := &Tables{
		carriers:  make([]models.Carrier, len(carriers)),
		distances: make(map[string]float64, len(distances)),
		factors:   make(map[string]float64, len(factors)),
	}
	copy(t.carriers, carriers)
	for k, v := range distances {
		t.distances[k] = v
	}
	for k, v := range factors {
		t.factors[k] = v
	}
	return t
}

// Load reads all three tables from src concurrently.
func Load(ctx context.Context, src Source) (*Tables, error) {
	var (
		carriers           []models.Carrier
		distances, factors map[string]float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if carriers, err = src.Carriers(gctx); err != nil {
			return fmt.Errorf("load carriers: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if distances, err = src.Distances(gctx); err != nil {
			return fmt.Errorf("load distances: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if factors, err = src.EmissionFactors(gctx); err != nil {
			return fmt.Errorf("load emission factors: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewTables(carriers, distances, factors), nil
}

// DistanceKey is the ordered pair key used by distances.json.
func DistanceKey(origin, destination string) string {
	return origin + "-" + destination
}

// Distance returns the km between origin and destination, or FallbackDistanceKm.
func (t *Tables) Distance(origin, destination string) float64 {
	if km, ok := t.distances[DistanceKey(origin, destination)]; ok {
		return km
	}
	return FallbackDistanceKm
}

// Carrier finds a carrier by name. Unknown or empty names give nil.
func (t *Tables) Carrier(name string) *models.Carrier {
	if name == "" {
		return nil
	}
	for i := range t.carriers {
		if t.carriers[i].Name == name {
			c := t.carriers[i]
			return &c
		}
	}
	return nil
}

// Carriers returns the whole catalog in file order.
func (t *Tables) Carriers() []models.Carrier {
	out := make([]models.Carrier, len(t.carriers))
	copy(out, t.carriers)
	return out
}

// Alternatives returns every carrier except the one named exclude.
func (t *Tables) Alternatives(exclude string) []models.Carrier {
	out := make([]models.Carrier, 0, len(t.carriers))
	for _, c := range t.carriers {
		if c.Name != exclude {
			out = append(out, c)
		}
	}
	return out
}

// EmissionFactor looks up the factor for mode. ok is false when the fallback was used.
func (t *Tables) EmissionFactor(mode *string) (factor float64, ok bool) {
	if mode == nil {
		return FallbackEmissionFactor, false
	}
	if f, found := t.factors[*mode]; found {
		return f, true
	}
	return FallbackEmissionFactor, false
}
