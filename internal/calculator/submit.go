package calculator

import (
	"github.com/shopspring/decimal"

	"bewustetrader/internal/models"
)

// Submission is the outcome snapshot stored with a submitted trade.
type Submission struct {
	PnL             decimal.Decimal    `json:"pnl"`
	RMultiple       decimal.Decimal    `json:"r_multiple"`
	DisciplineScore int                `json:"discipline_score"`
	Status          models.TradeStatus `json:"status"`
}

// Finalize rounds the summary for storage: net P&L to whole currency units
// and R-multiple to two places. Halves round away from zero, so a net P&L of
// -2.5 is stored as -3. ok is false for an unavailable summary.
func Finalize(s Summary, disciplineScore int) (Submission, bool) {
	if !s.Available {
		return Submission{}, false
	}
	return Submission{
		PnL:             s.NetPnl.Round(0),
		RMultiple:       s.RMultiple.Round(2),
		DisciplineScore: disciplineScore,
		Status:          models.TradeStatusClosed,
	}, true
}
