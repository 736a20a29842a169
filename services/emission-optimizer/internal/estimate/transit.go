package estimate

import "github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"

var modeTransitDays = map[string]int{
	"air":  2,
	"road": 5,
	"rail": 4,
	"sea":  14,
}

// ModeTransitDays is the default door to door time for a transport mode.
func ModeTransitDays(mode string) (int, bool) {
	d, ok := modeTransitDays[mode]
	return d, ok
}

// TransitDays prefers the carrier's stated average and falls back to the mode
// default. It is nil for a nil carrier or a mode without a default.
func TransitDays(c *models.Carrier) *int {
	if c == nil {
		return nil
	}
	if c.AvgTransitDays != nil {
		d := *c.AvgTransitDays
		return &d
	}
	if d, ok := ModeTransitDays(c.Mode); ok {
		return &d
	}
	return nil
}
