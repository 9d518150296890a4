package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"bewustetrader/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Property: a trade saved and read back keeps its decimal fields and exits.
func TestProperty_TradeRoundTripConsistency(t *testing.T) {
	store := newTestStore(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"EURUSD", "GBPUSD", "XAUUSD", "NAS100", "US30"}
	directionGen := gen.OneConstOf(models.DirectionLong, models.DirectionShort)

	seq := 0
	properties.Property("Trade round-trip: save then retrieve produces equivalent data", prop.ForAll(
		func(symbolIdx int, direction models.Direction, entryCents, pnlCents int64, exitCount int) bool {
			ctx := context.Background()
			seq++

			trade := generateTestTrade(fmt.Sprintf("trade-%d", seq), symbols[symbolIdx%len(symbols)], direction, entryCents, pnlCents, exitCount)
			if err := store.SaveTrade(ctx, &trade); err != nil {
				t.Logf("Failed to save trade: %v", err)
				return false
			}

			got, err := store.GetTrade(ctx, trade.ID)
			if err != nil {
				t.Logf("Failed to get trade: %v", err)
				return false
			}

			if !tradesEqual(trade, *got) {
				t.Logf("Trade mismatch: original=%+v, retrieved=%+v", trade, *got)
				return false
			}
			return true
		},
		gen.IntRange(0, len(symbols)-1),
		directionGen,
		gen.Int64Range(1, 10000000),
		gen.Int64Range(-500000, 500000),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

func generateTestTrade(id, symbol string, direction models.Direction, entryCents, pnlCents int64, exitCount int) models.TradeRecord {
	entry := decimal.New(entryCents, -2)
	exits := make([]models.ExitFill, exitCount)
	for i := range exits {
		exits[i] = models.ExitFill{
			Price:  entry.Add(decimal.New(int64(i+1)*25, -2)),
			Volume: decimal.New(int64(i+1), -1),
			Label:  fmt.Sprintf("TP%d", i+1),
		}
	}

	closedAt := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC).Add(time.Duration(entryCents%1000) * time.Minute)
	return models.TradeRecord{
		ID:              id,
		AccountID:       "acc-1",
		Symbol:          symbol,
		Direction:       direction,
		EntryPrice:      entry,
		StopLoss:        entry.Sub(decimal.NewFromInt(1)),
		RiskAmount:      decimal.NewFromInt(100),
		PositionSize:    decimal.RequireFromString("1.5"),
		Commission:      decimal.RequireFromString("3.5"),
		Exits:           exits,
		ClosedVolume:    decimal.RequireFromString("1.5"),
		PnL:             decimal.New(pnlCents, -2).Round(0),
		RMultiple:       decimal.New(pnlCents, -4).Round(2),
		DisciplineScore: int(entryCents % 101),
		OverAllocated:   exitCount > 3,
		Status:          models.TradeStatusClosed,
		Setup:           "breakout",
		Notes:           "followed plan",
		Source:          "manual",
		ClosedAt:        closedAt,
		CreatedAt:       closedAt.Add(time.Minute),
	}
}

func tradesEqual(a, b models.TradeRecord) bool {
	if a.ID != b.ID || a.AccountID != b.AccountID || a.Symbol != b.Symbol || a.Direction != b.Direction {
		return false
	}
	if !a.EntryPrice.Equal(b.EntryPrice) || !a.StopLoss.Equal(b.StopLoss) || !a.RiskAmount.Equal(b.RiskAmount) ||
		!a.PositionSize.Equal(b.PositionSize) || !a.Commission.Equal(b.Commission) ||
		!a.ClosedVolume.Equal(b.ClosedVolume) || !a.PnL.Equal(b.PnL) || !a.RMultiple.Equal(b.RMultiple) {
		return false
	}
	if a.DisciplineScore != b.DisciplineScore || a.OverAllocated != b.OverAllocated || a.Status != b.Status {
		return false
	}
	if a.Setup != b.Setup || a.Notes != b.Notes || a.Source != b.Source {
		return false
	}
	if !a.ClosedAt.Equal(b.ClosedAt) || !a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	if len(a.Exits) != len(b.Exits) {
		return false
	}
	for i := range a.Exits {
		if !a.Exits[i].Price.Equal(b.Exits[i].Price) || !a.Exits[i].Volume.Equal(b.Exits[i].Volume) || a.Exits[i].Label != b.Exits[i].Label {
			return false
		}
	}
	return true
}
