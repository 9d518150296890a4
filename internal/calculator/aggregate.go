package calculator

import (
	"github.com/shopspring/decimal"

	"bewustetrader/internal/models"
)

// Fill is a partial exit as entered; either field may still be missing.
type Fill struct {
	Price  decimal.NullDecimal
	Volume decimal.NullDecimal
	Label  string
}

// IsComplete reports whether both price and volume are present.
func (f Fill) IsComplete() bool {
	return f.Price.Valid && f.Volume.Valid
}

// Aggregate folds the fills into closed volume and realized P&L.
//
// Each complete fill contributes priceMove * valuePerUnit * volume/totalSize.
// A zero or absent totalSize uses a weight basis of 1. Incomplete fills are
// skipped. Volumes are not checked for sign.
func Aggregate(entry decimal.Decimal, direction models.Direction, valuePerUnit decimal.Decimal, totalSize decimal.NullDecimal, fills []Fill) (closedVolume, realizedPnl decimal.Decimal, counted int) {
	basis := decimal.NewFromInt(1)
	if totalSize.Valid && !totalSize.Decimal.IsZero() {
		basis = totalSize.Decimal
	}

	closedVolume = decimal.Zero
	realizedPnl = decimal.Zero
	for _, f := range fills {
		if !f.IsComplete() {
			continue
		}

		move := f.Price.Decimal.Sub(entry)
		if direction == models.DirectionShort {
			move = entry.Sub(f.Price.Decimal)
		}

		// Divide last so exact inputs stay exact.
		contribution := move.Mul(valuePerUnit).Mul(f.Volume.Decimal).Div(basis)
		realizedPnl = realizedPnl.Add(contribution)
		closedVolume = closedVolume.Add(f.Volume.Decimal)
		counted++
	}
	return closedVolume, realizedPnl, counted
}
