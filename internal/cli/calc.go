package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bewustetrader/internal/calculator"
	"bewustetrader/internal/config"
	"bewustetrader/internal/errors"
	"bewustetrader/internal/models"
)

// calcResult is the JSON form of a calculation.
type calcResult struct {
	Summary  calculator.Summary     `json:"summary"`
	Warnings []calculator.Warning   `json:"warnings,omitempty"`
	Exits    []calculator.ExitRow   `json:"exits,omitempty"`
	Result   *calculator.Submission `json:"result,omitempty"`
}

func newCalcCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate P&L and R-multiple of a split-exit trade",
		Long: `Calculate the outcome of a trade closed in one or more partial exits.

Risk is the amount lost if the stop is hit. It fixes how much one unit of
price movement is worth, so the P&L of every exit follows from its price
and the share of the position it closed.`,
		Example: `  tradejournal calc --entry 1.1000 --stop 1.0950 --risk 100 --size 2 \
      --exit 1.1050:1:TP1 --exit 1.1100:1:TP2
  tradejournal calc --entry 18000 --stop 18050 --risk 250 --size 3 --distribute 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			draft, err := draftFromFlags(cmd)
			if err != nil {
				return err
			}
			summary := calculator.ComputeOutcome(draft)

			if output.IsJSON() {
				result := calcResult{Summary: summary, Warnings: summary.Warnings(), Exits: draft.Exits}
				if submission, ok := calculator.Finalize(summary, 0); ok {
					result.Result = &submission
				}
				return output.JSON(result)
			}

			renderSummary(output, draft, summary)
			return nil
		},
	}

	addDraftFlags(cmd, app.Config)
	return cmd
}

// addDraftFlags registers the trade input flags shared by calc and journal add.
func addDraftFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().String("entry", "", "Entry price")
	cmd.Flags().String("stop", "", "Stop-loss price")
	cmd.Flags().String("risk", cfg.Journal.DefaultRisk, "Amount risked if the stop is hit")
	cmd.Flags().String("size", "", "Total position size (lots)")
	cmd.Flags().String("commission", cfg.Journal.DefaultCommission, "Commission and fees")
	cmd.Flags().String("direction", "", "LONG or SHORT (default: inferred from entry and stop)")
	cmd.Flags().StringArray("exit", nil, "Exit fill as price:volume[:label], repeatable")
	cmd.Flags().Int("distribute", 0, "Split the position size evenly over N exits")
}

// draftFromFlags builds the trade draft the same way the entry form does:
// prices first, then the direction override, then the exit rows.
func draftFromFlags(cmd *cobra.Command) (calculator.TradeDraft, error) {
	entry, _ := cmd.Flags().GetString("entry")
	stop, _ := cmd.Flags().GetString("stop")
	risk, _ := cmd.Flags().GetString("risk")
	size, _ := cmd.Flags().GetString("size")
	commission, _ := cmd.Flags().GetString("commission")
	direction, _ := cmd.Flags().GetString("direction")
	exits, _ := cmd.Flags().GetStringArray("exit")
	distribute, _ := cmd.Flags().GetInt("distribute")

	draft := calculator.TradeDraft{
		RiskAmount:        risk,
		TotalPositionSize: size,
		Commission:        commission,
	}.WithPrices(entry, stop)

	if direction != "" {
		dir := models.ParseDirection(direction)
		if !dir.IsValid() {
			return calculator.TradeDraft{}, errors.NewValidationError("direction", direction, "must be LONG or SHORT")
		}
		draft = draft.WithDirection(dir)
	}

	for _, raw := range exits {
		row, err := parseExitFlag(raw)
		if err != nil {
			return calculator.TradeDraft{}, err
		}
		draft = draft.WithExit(row)
	}

	if distribute < 0 {
		return calculator.TradeDraft{}, errors.NewValidationError("distribute", distribute, "must not be negative")
	}
	if distribute > 0 {
		draft = draft.DistributeExits(distribute)
	}
	return draft, nil
}

// parseExitFlag reads "price:volume[:label]". With --distribute the volume
// may be left empty ("price:").
func parseExitFlag(raw string) (calculator.ExitRow, error) {
	row, ok := calculator.ParseExitRow(raw)
	if !ok {
		return calculator.ExitRow{}, errors.NewValidationError("exit", raw, "expected price:volume[:label]")
	}
	return row, nil
}

func renderSummary(output *Output, draft calculator.TradeDraft, summary calculator.Summary) {
	if !summary.Available {
		output.Warning("Insufficient data: entry, stop and risk are required and stop must differ from entry.")
		return
	}

	if len(draft.Exits) > 0 {
		fills := draft.Fills()
		table := NewTable(output, "#", "Label", "Price", "Volume")
		for i, f := range fills {
			label := f.Label
			if label == "" {
				label = "-"
			}
			row := []string{strconv.Itoa(i + 1), label, FormatDecimal(f.Price), FormatDecimal(f.Volume)}
			if !f.IsComplete() {
				row[1] = output.DimText(label + " (ignored)")
			}
			table.AddRow(row...)
		}
		table.Render()
		output.Println()
	}

	lines := []string{
		"Direction:        " + string(summary.Direction),
		"Stop distance:    " + summary.StopDistance.String(),
		"Value per point:  " + summary.ValuePerPriceUnit.Round(4).String(),
		"Closed volume:    " + summary.ClosedVolume.String(),
		"Realized P&L:     " + output.FormatPnL(summary.RealizedPnl),
		"Commission:       " + FormatCurrency(summary.Commission, output.currency),
		"Net P&L:          " + output.FormatPnL(summary.NetPnl),
		"R-multiple:       " + output.FormatR(summary.RMultiple),
	}
	output.Box("Trade Outcome", lines)

	for _, w := range summary.Warnings() {
		output.Warning("⚠ %s", capitalize(string(w)))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
