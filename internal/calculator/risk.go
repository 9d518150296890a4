package calculator

import (
	"github.com/shopspring/decimal"
)

// StopDistance returns |entry - stop|.
func StopDistance(entry, stop decimal.Decimal) decimal.Decimal {
	return entry.Sub(stop).Abs()
}

// ValuePerPriceUnit converts the monetary risk into money per unit of price
// movement. ok is false when the stop distance is zero.
func ValuePerPriceUnit(risk, entry, stop decimal.Decimal) (decimal.Decimal, bool) {
	distance := StopDistance(entry, stop)
	if distance.IsZero() {
		return decimal.Zero, false
	}
	return risk.Div(distance), true
}
