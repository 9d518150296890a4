package journal

import (
	"context"

	"github.com/shopspring/decimal"

	"bewustetrader/internal/models"
	"bewustetrader/internal/store"
)

// Report aggregates performance over a set of journaled trades.
type Report struct {
	Trades            int             `json:"trades"`
	Wins              int             `json:"wins"`
	Losses            int             `json:"losses"`
	Breakeven         int             `json:"breakeven"`
	OverAllocated     int             `json:"over_allocated"`
	WinRate           decimal.Decimal `json:"win_rate"` // percent
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	GrossLoss         decimal.Decimal `json:"gross_loss"`
	NetPnL            decimal.Decimal `json:"net_pnl"`
	AverageR          decimal.Decimal `json:"average_r"`
	Expectancy        decimal.Decimal `json:"expectancy"`
	ProfitFactor      decimal.Decimal `json:"profit_factor"`
	AverageDiscipline decimal.Decimal `json:"average_discipline"`
}

// Report builds a report over the trades matching filter.
func (s *Service) Report(ctx context.Context, filter store.TradeFilter) (Report, error) {
	trades, err := s.store.GetTrades(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(trades), nil
}

// BuildReport computes the report for trades. Ratios are rounded to 2 dp.
// ProfitFactor is zero when there are no losing trades.
func BuildReport(trades []models.TradeRecord) Report {
	r := Report{
		WinRate:           decimal.Zero,
		GrossProfit:       decimal.Zero,
		GrossLoss:         decimal.Zero,
		NetPnL:            decimal.Zero,
		AverageR:          decimal.Zero,
		Expectancy:        decimal.Zero,
		ProfitFactor:      decimal.Zero,
		AverageDiscipline: decimal.Zero,
	}
	if len(trades) == 0 {
		return r
	}

	sumR := decimal.Zero
	sumDiscipline := 0
	for i := range trades {
		t := &trades[i]
		r.Trades++
		switch {
		case t.IsWin():
			r.Wins++
			r.GrossProfit = r.GrossProfit.Add(t.PnL)
		case t.IsLoss():
			r.Losses++
			r.GrossLoss = r.GrossLoss.Add(t.PnL.Abs())
		default:
			r.Breakeven++
		}
		if t.OverAllocated {
			r.OverAllocated++
		}
		r.NetPnL = r.NetPnL.Add(t.PnL)
		sumR = sumR.Add(t.RMultiple)
		sumDiscipline += t.DisciplineScore
	}

	n := decimal.NewFromInt(int64(r.Trades))
	r.WinRate = decimal.NewFromInt(int64(r.Wins)).Mul(decimal.NewFromInt(100)).Div(n).Round(2)
	r.AverageR = sumR.Div(n).Round(2)
	r.Expectancy = r.NetPnL.Div(n).Round(2)
	r.AverageDiscipline = decimal.NewFromInt(int64(sumDiscipline)).Div(n).Round(2)
	if r.GrossLoss.IsPositive() {
		r.ProfitFactor = r.GrossProfit.Div(r.GrossLoss).Round(2)
	}
	return r
}
