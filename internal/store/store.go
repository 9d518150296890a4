// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"bewustetrader/internal/models"
)

// JournalStore defines the interface for journal persistence.
type JournalStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.TradeRecord) error
	SaveTrades(ctx context.Context, trades []models.TradeRecord) error
	GetTrade(ctx context.Context, id string) (*models.TradeRecord, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error)
	DeleteTrade(ctx context.Context, id string) error

	// Accounts & Payouts
	SaveAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	SavePayout(ctx context.Context, payout *models.Payout) error
	GetPayouts(ctx context.Context, accountID string) ([]models.Payout, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Symbol    string
	AccountID string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
