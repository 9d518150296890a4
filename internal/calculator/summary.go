package calculator

import (
	"github.com/shopspring/decimal"

	"bewustetrader/internal/models"
)

// Params holds the entry side of a trade. Any field may be missing while the
// trader is still typing.
type Params struct {
	EntryPrice        decimal.NullDecimal
	StopLossPrice     decimal.NullDecimal
	RiskAmount        decimal.NullDecimal
	TotalPositionSize decimal.NullDecimal
	Commission        decimal.NullDecimal
}

// Summary is the derived outcome of a trade. When Available is false every
// numeric field is zero.
type Summary struct {
	Available         bool             `json:"available"`
	Direction         models.Direction `json:"direction,omitempty"`
	StopDistance      decimal.Decimal  `json:"stop_distance"`
	ValuePerPriceUnit decimal.Decimal  `json:"value_per_price_unit"`
	ClosedVolume      decimal.Decimal  `json:"closed_volume"`
	RealizedPnl       decimal.Decimal  `json:"realized_pnl"`
	Commission        decimal.Decimal  `json:"commission"`
	NetPnl            decimal.Decimal  `json:"net_pnl"`
	RMultiple         decimal.Decimal  `json:"r_multiple"`
	IsOverAllocated   bool             `json:"is_over_allocated"`
	FillsCounted      int              `json:"fills_counted"`
}

// Warning is an advisory condition that does not block submission.
type Warning string

const (
	WarningOverAllocated Warning = "closed volume exceeds total position size"
)

// Warnings returns the advisory conditions of s.
func (s Summary) Warnings() []Warning {
	var warnings []Warning
	if s.IsOverAllocated {
		warnings = append(warnings, WarningOverAllocated)
	}
	return warnings
}

// Compute derives the Summary for params and fills.
//
// direction is the trader's current choice; when it is not LONG or SHORT it
// is inferred from entry and stop. The calculator abstains when entry, stop
// or risk is missing or when the stop distance is zero.
func Compute(params Params, direction models.Direction, fills []Fill) Summary {
	if !params.EntryPrice.Valid || !params.StopLossPrice.Valid || !params.RiskAmount.Valid {
		return Summary{}
	}

	entry := params.EntryPrice.Decimal
	stop := params.StopLossPrice.Decimal
	risk := params.RiskAmount.Decimal

	valuePerUnit, ok := ValuePerPriceUnit(risk, entry, stop)
	if !ok {
		return Summary{}
	}

	if !direction.IsValid() {
		direction = InferDirection(params.EntryPrice, params.StopLossPrice, direction)
	}

	closed, realized, counted := Aggregate(entry, direction, valuePerUnit, params.TotalPositionSize, fills)

	commission := decimal.Zero
	if params.Commission.Valid {
		commission = params.Commission.Decimal
	}

	rMultiple := decimal.Zero
	if risk.IsPositive() {
		rMultiple = realized.Div(risk)
	}

	// An absent size counts as zero here, unlike the weight basis.
	size := decimal.Zero
	if params.TotalPositionSize.Valid {
		size = params.TotalPositionSize.Decimal
	}
	overAllocated := closed.GreaterThan(size)

	return Summary{
		Available:         true,
		Direction:         direction,
		StopDistance:      StopDistance(entry, stop),
		ValuePerPriceUnit: valuePerUnit,
		ClosedVolume:      closed,
		RealizedPnl:       realized,
		Commission:        commission,
		NetPnl:            realized.Sub(commission),
		RMultiple:         rMultiple,
		IsOverAllocated:   overAllocated,
		FillsCounted:      counted,
	}
}
