package estimate

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// maxFractionDigits is enough to print any float64 exactly.
const maxFractionDigits = 1074

// Round rounds the exact binary value of v to places decimals. Only values
// that are exactly halfway round to even, so 2.675 (stored as 2.67499...) gives
// 2.67 and 0.125 gives 0.12.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', maxFractionDigits, 64))
	if err != nil {
		return v
	}
	f, _ := d.RoundBank(places).Float64()
	return f
}

// Round2 is Round(v, 2), the precision of every cost and emission figure.
func Round2(v float64) float64 {
	return Round(v, 2)
}
