package estimate

import (
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/reference"
)

// Cost is distance * rate + surcharges, rounded to cents. Inputs are not validated.
func Cost(distanceKm, ratePerKm, surchargesUSD float64) float64 {
	return Round2(distanceKm*ratePerKm + surchargesUSD)
}

// CarrierCost prices a leg with a catalog carrier. A nil carrier costs nothing.
func CarrierCost(distanceKm float64, c *models.Carrier) float64 {
	if c == nil {
		return 0
	}
	return Cost(distanceKm, c.BaseCostPerKm, 0)
}

// ShipmentCost is what the shipment costs with its assigned carrier.
//
// A declared cost_usd is a quote for the carrier the shipment was booked with, so it
// wins while that carrier is still assigned. After a switch the new carrier is priced
// from the catalog.
func ShipmentCost(s models.Shipment, distanceKm float64, tables *reference.Tables) float64 {
	if s.CostUSD != nil && onBookedCarrier(s) {
		return *s.CostUSD
	}
	return CarrierCost(distanceKm, tables.Carrier(s.CarrierName()))
}

func onBookedCarrier(s models.Shipment) bool {
	if !s.HasOriginalBaseline() {
		return true
	}
	return s.OriginalCarrier == nil && s.Carrier == nil ||
		s.OriginalCarrier != nil && s.Carrier != nil && *s.OriginalCarrier == *s.Carrier
}

// ShipmentDistance returns the cached distance_km or looks the route up.
func ShipmentDistance(s models.Shipment, tables *reference.Tables) float64 {
	if s.DistanceKm != nil {
		return *s.DistanceKm
	}
	return tables.Distance(s.Origin, s.Destination)
}
