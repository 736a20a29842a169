// Package baseline keeps the original and current cost/emission snapshots of every
// shipment filled in.
package baseline

import (
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/estimate"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/reference"
)

// EnsureBaselines returns a copy of shipments where every record has an original
// snapshot, a current snapshot and a cached distance. Existing values are never
// recomputed, so a second call on the output reports changed == false.
func EnsureBaselines(shipments []models.Shipment, tables *reference.Tables) ([]models.Shipment, bool) {
	out := models.CloneShipments(shipments)
	changed := false
	for i := range out {
		if Ensure(&out[i], tables) {
			changed = true
		}
	}
	return out, changed
}

// Ensure fills the missing snapshots of a single shipment.
func Ensure(s *models.Shipment, tables *reference.Tables) bool {
	changed := false
	if s.DistanceKm == nil {
		d := tables.Distance(s.Origin, s.Destination)
		s.DistanceKm = &d
		changed = true
	}

	if !s.HasOriginalBaseline() {
		cost, kg, calc := snapshot(*s, tables)
		s.SetOriginalBaseline(s.Carrier, cost, kg, calc)
		changed = true
	}

	if !s.HasCurrent() {
		RecomputeCurrent(s, tables)
		changed = true
	}
	return changed
}

// RecomputeCurrent overwrites the current snapshot from the assigned carrier.
func RecomputeCurrent(s *models.Shipment, tables *reference.Tables) {
	cost, kg, calc := snapshot(*s, tables)
	s.SetCurrent(cost, kg, calc)
}

func snapshot(s models.Shipment, tables *reference.Tables) (cost, kg float64, calc models.EmissionCalculation) {
	distance := estimate.ShipmentDistance(s, tables)
	carrier := tables.Carrier(s.CarrierName())
	kg, calc = estimate.CarrierEmission(s.WeightKg, distance, carrier, tables)
	return estimate.ShipmentCost(s, distance, tables), kg, calc
}
