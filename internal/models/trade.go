package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExitFill is one partial close of a position.
type ExitFill struct {
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
	Label  string          `json:"label,omitempty"`
}

// TradeRecord is a submitted trade: entry parameters, fills and the
// outcome snapshot taken at submission time.
type TradeRecord struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id,omitempty"`
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`

	EntryPrice   decimal.Decimal `json:"entry_price"`
	StopLoss     decimal.Decimal `json:"stop_loss"`
	RiskAmount   decimal.Decimal `json:"risk_amount"`
	PositionSize decimal.Decimal `json:"position_size"`
	Commission   decimal.Decimal `json:"commission"`
	Exits        []ExitFill      `json:"exits"`

	ClosedVolume    decimal.Decimal `json:"closed_volume"`
	PnL             decimal.Decimal `json:"pnl"`        // net of commission, whole currency units
	RMultiple       decimal.Decimal `json:"r_multiple"` // 2 dp
	DisciplineScore int             `json:"discipline_score"`
	OverAllocated   bool            `json:"over_allocated"`
	Status          TradeStatus     `json:"status"`

	Setup     string    `json:"setup,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Source    string    `json:"source"` // "manual", "import"
	ClosedAt  time.Time `json:"closed_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsWin reports whether the trade closed with a positive net P&L.
func (t *TradeRecord) IsWin() bool {
	return t.PnL.IsPositive()
}

// IsLoss reports whether the trade closed with a negative net P&L.
func (t *TradeRecord) IsLoss() bool {
	return t.PnL.IsNegative()
}
