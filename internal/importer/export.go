package importer

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"bewustetrader/internal/models"
)

// exportRow is the flat CSV form of a trade. Its headers match
// DefaultMapping so an exported file imports back without --map flags.
type exportRow struct {
	ID              string `csv:"id"`
	Date            string `csv:"date"`
	Account         string `csv:"account"`
	Symbol          string `csv:"symbol"`
	Direction       string `csv:"direction"`
	Entry           string `csv:"entry"`
	Stop            string `csv:"stop"`
	Risk            string `csv:"risk"`
	Size            string `csv:"size"`
	Commission      string `csv:"commission"`
	Exits           string `csv:"exits"`
	ClosedVolume    string `csv:"closed_volume"`
	PnL             string `csv:"pnl"`
	RMultiple       string `csv:"r_multiple"`
	DisciplineScore int    `csv:"discipline"`
	OverAllocated   bool   `csv:"over_allocated"`
	Setup           string `csv:"setup"`
	Notes           string `csv:"notes"`
	Source          string `csv:"source"`
}

// Export writes trades to w as CSV.
func Export(w io.Writer, trades []models.TradeRecord) error {
	rows := make([]*exportRow, 0, len(trades))
	for i := range trades {
		rows = append(rows, toExportRow(&trades[i]))
	}
	return gocsv.Marshal(&rows, w)
}

func toExportRow(t *models.TradeRecord) *exportRow {
	return &exportRow{
		ID:              t.ID,
		Date:            t.ClosedAt.Local().Format(DefaultDateLayout),
		Account:         t.AccountID,
		Symbol:          t.Symbol,
		Direction:       string(t.Direction),
		Entry:           t.EntryPrice.String(),
		Stop:            t.StopLoss.String(),
		Risk:            t.RiskAmount.String(),
		Size:            t.PositionSize.String(),
		Commission:      t.Commission.String(),
		Exits:           formatExits(t.Exits),
		ClosedVolume:    t.ClosedVolume.String(),
		PnL:             t.PnL.String(),
		RMultiple:       t.RMultiple.String(),
		DisciplineScore: t.DisciplineScore,
		OverAllocated:   t.OverAllocated,
		Setup:           t.Setup,
		Notes:           t.Notes,
		Source:          t.Source,
	}
}

// formatExits renders fills as "price:volume[:label]" joined by ";".
func formatExits(exits []models.ExitFill) string {
	parts := make([]string, len(exits))
	for i, e := range exits {
		s := e.Price.String() + ":" + e.Volume.String()
		if e.Label != "" {
			s += ":" + e.Label
		}
		parts[i] = s
	}
	return strings.Join(parts, ";")
}
