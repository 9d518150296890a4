package calculator

import (
	"bewustetrader/internal/models"
)

// ExitRow is one exit line as typed by the trader.
type ExitRow struct {
	Price  string `json:"price"`
	Volume string `json:"volume"`
	Label  string `json:"label,omitempty"`
}

// TradeDraft holds the raw form inputs of a trade being entered. It is a
// value type: every edit returns a new draft and leaves the receiver intact.
type TradeDraft struct {
	EntryPrice        string
	StopLossPrice     string
	RiskAmount        string
	TotalPositionSize string
	Commission        string
	Direction         models.Direction
	Exits             []ExitRow
}

// Params parses the numeric inputs of the draft.
func (d TradeDraft) Params() Params {
	return Params{
		EntryPrice:        ParseOptionalDecimal(d.EntryPrice),
		StopLossPrice:     ParseOptionalDecimal(d.StopLossPrice),
		RiskAmount:        ParseOptionalDecimal(d.RiskAmount),
		TotalPositionSize: ParseOptionalDecimal(d.TotalPositionSize),
		Commission:        ParseOptionalDecimal(d.Commission),
	}
}

// Fills parses the exit rows in order.
func (d TradeDraft) Fills() []Fill {
	fills := make([]Fill, len(d.Exits))
	for i, row := range d.Exits {
		fills[i] = Fill{
			Price:  ParseOptionalDecimal(row.Price),
			Volume: ParseOptionalDecimal(row.Volume),
			Label:  row.Label,
		}
	}
	return fills
}

// ComputeOutcome derives the summary of the draft.
func ComputeOutcome(d TradeDraft) Summary {
	return Compute(d.Params(), d.Direction, d.Fills())
}

// WithPrices sets entry and stop and re-infers the direction.
func (d TradeDraft) WithPrices(entry, stop string) TradeDraft {
	d.Exits = d.cloneExits()
	d.EntryPrice = entry
	d.StopLossPrice = stop
	return d.WithInferredDirection()
}

// WithInferredDirection updates Direction from entry and stop.
func (d TradeDraft) WithInferredDirection() TradeDraft {
	d.Exits = d.cloneExits()
	d.Direction = InferDirection(ParseOptionalDecimal(d.EntryPrice), ParseOptionalDecimal(d.StopLossPrice), d.Direction)
	return d
}

// WithDirection overrides the direction.
func (d TradeDraft) WithDirection(dir models.Direction) TradeDraft {
	d.Exits = d.cloneExits()
	d.Direction = dir
	return d
}

// WithExit appends an exit row.
func (d TradeDraft) WithExit(row ExitRow) TradeDraft {
	exits := make([]ExitRow, len(d.Exits), len(d.Exits)+1)
	copy(exits, d.Exits)
	d.Exits = append(exits, row)
	return d
}

// WithoutExit removes the exit row at index i. Out of range is a no-op.
func (d TradeDraft) WithoutExit(i int) TradeDraft {
	if i < 0 || i >= len(d.Exits) {
		d.Exits = d.cloneExits()
		return d
	}
	exits := make([]ExitRow, 0, len(d.Exits)-1)
	exits = append(exits, d.Exits[:i]...)
	d.Exits = append(exits, d.Exits[i+1:]...)
	return d
}

// WithExitVolumes sets the volume of each exit row in order. Rows without a
// matching volume keep theirs and extra volumes are ignored.
func (d TradeDraft) WithExitVolumes(volumes []string) TradeDraft {
	d.Exits = d.cloneExits()
	for i := range d.Exits {
		if i >= len(volumes) {
			break
		}
		d.Exits[i].Volume = volumes[i]
	}
	return d
}

// DistributeExits spreads the total position size over n exit rows. Existing
// rows keep their price and label, missing rows are added and rows beyond n
// are dropped. Without a size the draft is returned unchanged.
func (d TradeDraft) DistributeExits(n int) TradeDraft {
	size := ParseOptionalDecimal(d.TotalPositionSize)
	if !size.Valid || n <= 0 {
		d.Exits = d.cloneExits()
		return d
	}

	exits := make([]ExitRow, n)
	copy(exits, d.Exits)
	d.Exits = exits

	lots := DistributeLots(size.Decimal, n)
	volumes := make([]string, len(lots))
	for i, lot := range lots {
		volumes[i] = lot.String()
	}
	return d.WithExitVolumes(volumes)
}

func (d TradeDraft) cloneExits() []ExitRow {
	if d.Exits == nil {
		return nil
	}
	exits := make([]ExitRow, len(d.Exits))
	copy(exits, d.Exits)
	return exits
}
