package calculator

import (
	"github.com/shopspring/decimal"
)

// LotPrecision is the number of decimal places used for distributed volumes.
const LotPrecision = 2

// DistributeLots splits total evenly over n rows at LotPrecision. The first
// n-1 rows get the floored share and the last row takes the remainder, so the
// rows always sum to total.
func DistributeLots(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	share := total.Div(decimal.NewFromInt(int64(n))).
		Shift(LotPrecision).
		Floor().
		Shift(-LotPrecision)

	lots := make([]decimal.Decimal, n)
	assigned := decimal.Zero
	for i := 0; i < n-1; i++ {
		lots[i] = share
		assigned = assigned.Add(share)
	}
	lots[n-1] = total.Sub(assigned)
	return lots
}
