package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a prop-firm trading account.
type Account struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Firm      string          `json:"firm,omitempty"`
	Size      decimal.Decimal `json:"size"`
	Phase     AccountPhase    `json:"phase"`
	CreatedAt time.Time       `json:"created_at"`
}

// Payout represents money withdrawn from a funded account.
type Payout struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
