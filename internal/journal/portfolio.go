package journal

import (
	"context"

	"github.com/shopspring/decimal"

	"bewustetrader/internal/models"
	"bewustetrader/internal/store"
)

// AccountSummary is the running state of one prop-firm account.
type AccountSummary struct {
	Account     models.Account  `json:"account"`
	TradeCount  int             `json:"trade_count"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	Payouts     decimal.Decimal `json:"payouts"`
	Balance     decimal.Decimal `json:"balance"`
}

// Portfolio summarizes every account: balance is the starting size plus
// realized trade P&L minus payouts taken.
func (s *Service) Portfolio(ctx context.Context) ([]AccountSummary, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		trades, err := s.store.GetTrades(ctx, store.TradeFilter{AccountID: account.ID})
		if err != nil {
			return nil, err
		}
		payouts, err := s.store.GetPayouts(ctx, account.ID)
		if err != nil {
			return nil, err
		}

		pnl := decimal.Zero
		for _, t := range trades {
			pnl = pnl.Add(t.PnL)
		}
		paid := decimal.Zero
		for _, p := range payouts {
			paid = paid.Add(p.Amount)
		}

		summaries = append(summaries, AccountSummary{
			Account:     account,
			TradeCount:  len(trades),
			RealizedPnL: pnl,
			Payouts:     paid,
			Balance:     account.Size.Add(pnl).Sub(paid),
		})
	}
	return summaries, nil
}
