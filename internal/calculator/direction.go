package calculator

import (
	"github.com/shopspring/decimal"

	"bewustetrader/internal/models"
)

// InferDirection returns LONG when the stop sits below entry and SHORT when
// it sits above. Equal or missing prices keep the prior direction.
func InferDirection(entry, stop decimal.NullDecimal, prior models.Direction) models.Direction {
	if !entry.Valid || !stop.Valid {
		return prior
	}
	switch entry.Decimal.Cmp(stop.Decimal) {
	case 1:
		return models.DirectionLong
	case -1:
		return models.DirectionShort
	default:
		return prior
	}
}
