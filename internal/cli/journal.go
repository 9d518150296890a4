package cli

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bewustetrader/internal/errors"
	"bewustetrader/internal/importer"
	"bewustetrader/internal/journal"
	"bewustetrader/internal/models"
	"bewustetrader/internal/store"
)

// addJournalCommands adds journal commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal management",
		Long:  "Record, review and analyze closed trades.",
	}

	cmd.AddCommand(newJournalAddCmd(app))
	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalShowCmd(app))
	cmd.AddCommand(newJournalDeleteCmd(app))
	cmd.AddCommand(newJournalReportCmd(app))
	cmd.AddCommand(newJournalImportCmd(app))
	cmd.AddCommand(newJournalExportCmd(app))

	rootCmd.AddCommand(cmd)
}

func newJournalAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Journal a closed trade",
		Long: `Journal a closed trade. The outcome is computed from the same inputs as
'calc' and stored as a snapshot with the trade.`,
		Example: `  tradejournal journal add --symbol EURUSD --entry 1.1000 --stop 1.0950 --risk 100 \
      --size 2 --exit 1.1050:1:TP1 --exit 1.1100:1:TP2 --discipline 90 --setup "London breakout"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.service()
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			draft, err := draftFromFlags(cmd)
			if err != nil {
				return err
			}

			symbol, _ := cmd.Flags().GetString("symbol")
			account, _ := cmd.Flags().GetString("account")
			setup, _ := cmd.Flags().GetString("setup")
			notes, _ := cmd.Flags().GetString("notes")
			discipline, _ := cmd.Flags().GetInt("discipline")
			dateStr, _ := cmd.Flags().GetString("date")

			closedAt, err := parseDateFlag("date", dateStr, app.Config.Import.DateLayout)
			if err != nil {
				return err
			}

			record, err := svc.Submit(ctx, journal.SubmitRequest{
				Draft:           draft,
				Symbol:          symbol,
				AccountID:       account,
				Setup:           setup,
				Notes:           notes,
				DisciplineScore: discipline,
				ClosedAt:        closedAt,
			})
			if err != nil {
				if errors.Is(err, errors.ErrInsufficientData) {
					output.Warning("Insufficient data: entry, stop and risk are required and stop must differ from entry.")
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(record)
			}
			output.Success("✓ Trade journaled (%s)", record.ID)
			renderTrade(output, app, record)
			return nil
		},
	}

	addDraftFlags(cmd, app.Config)
	cmd.Flags().String("symbol", "", "Instrument symbol (required)")
	cmd.Flags().String("account", app.Config.Journal.DefaultAccount, "Account ID")
	cmd.Flags().String("setup", "", "Setup or strategy name")
	cmd.Flags().String("notes", "", "Notes")
	cmd.Flags().Int("discipline", 0, "Discipline score (0-100)")
	cmd.Flags().String("date", "", "Close date (default: now)")
	cmd.MarkFlagRequired("symbol")

	return cmd
}

func newJournalListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.service()
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			filter, err := filterFromFlags(cmd, app.Config.Import.DateLayout)
			if err != nil {
				return err
			}
			trades, err := svc.Trades(ctx, filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Symbol", "Dir", "Exits", "P&L", "R", "Disc", "Setup")
			for _, t := range trades {
				dir := string(t.Direction)
				if t.OverAllocated {
					dir += output.Yellow("*")
				}
				table.AddRow(
					TruncateString(t.ID, 8),
					FormatDate(t.ClosedAt, app.Config.UI.DateFormat),
					t.Symbol,
					dir,
					strconv.Itoa(len(t.Exits)),
					output.FormatPnL(t.PnL),
					output.FormatR(t.RMultiple),
					strconv.Itoa(t.DisciplineScore),
					TruncateString(t.Setup, 20),
				)
			}
			table.Render()
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().Int("limit", 50, "Maximum number of trades")
	return cmd
}

func newJournalShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show a journaled trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.service()
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			record, err := svc.Trade(ctx, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(record)
			}
			renderTrade(output, app, record)
			return nil
		},
	}
}

func newJournalDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a journaled trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.service()
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			if err := svc.DeleteTrade(ctx, args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Trade %s deleted", args[0])
			return nil
		},
	}
}

func newJournalReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Performance report over journaled trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.service()
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			filter, err := filterFromFlags(cmd, app.Config.Import.DateLayout)
			if err != nil {
				return err
			}
			report, err := svc.Report(ctx, filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			if report.Trades == 0 {
				output.Info("No trades found.")
				return nil
			}

			output.Box("Journal Report", []string{
				"Trades:          " + strconv.Itoa(report.Trades),
				"Wins/Losses/BE:  " + strconv.Itoa(report.Wins) + "/" + strconv.Itoa(report.Losses) + "/" + strconv.Itoa(report.Breakeven),
				"Win rate:        " + FormatPercent(report.WinRate),
				"Gross profit:    " + FormatCurrency(report.GrossProfit, output.currency),
				"Gross loss:      " + FormatCurrency(report.GrossLoss, output.currency),
				"Net P&L:         " + output.FormatPnL(report.NetPnL),
				"Average R:       " + output.FormatR(report.AverageR),
				"Expectancy:      " + output.FormatPnL(report.Expectancy),
				"Profit factor:   " + report.ProfitFactor.StringFixed(2),
				"Discipline:      " + report.AverageDiscipline.StringFixed(1),
			})
			if report.OverAllocated > 0 {
				output.Warning("⚠ %d trade(s) closed more volume than their position size", report.OverAllocated)
			}
			return nil
		},
	}

	addFilterFlags(cmd)
	return cmd
}

func newJournalImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import trades from a CSV file",
		Long: `Import trades from a CSV file. Columns are matched to journal fields by
name; use --map to point a field at a differently named column.

Fields: symbol, direction, entry, stop, exit, exits, size, risk, commission,
pnl, date, account, notes, setup, discipline. Rows with an exits column
(price:volume[:label];...) or an exit price are computed like 'calc'; other
rows take the pnl column as is. Rows naming an unknown account are skipped.`,
		Example: `  tradejournal journal import mt5.csv --map entry="Open Price" --map exit="Close Price" --map symbol=Item`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if _, err := app.service(); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			pairs, _ := cmd.Flags().GetStringArray("map")
			mapping, err := importer.ParseMapping(pairs)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening csv")
			}
			defer f.Close()

			imp := importer.NewImporter(app.Store, importer.Options{
				Mapping:        mapping,
				BatchSize:      app.Config.Import.BatchSize,
				DateLayout:     app.Config.Import.DateLayout,
				DefaultAccount: app.Config.Journal.DefaultAccount,
			}, app.Logger)

			result, err := imp.Import(ctx, f)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(importSummary(result))
			}
			output.Success("✓ Imported %d trade(s) from %s", result.Imported, args[0])
			if len(result.Skipped) > 0 {
				output.Warning("Skipped %d row(s):", len(result.Skipped))
				for _, skipped := range result.Skipped {
					output.Printf("  %s\n", skipped.Error())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArray("map", nil, "Column mapping as field=Header, repeatable")
	return cmd
}

// importSummary makes the skipped rows readable in JSON.
func importSummary(result importer.Result) map[string]interface{} {
	skipped := make([]map[string]interface{}, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		skipped = append(skipped, map[string]interface{}{
			"row":    s.Row,
			"column": s.Column,
			"error":  s.Err.Error(),
		})
	}
	return map[string]interface{}{
		"imported": result.Imported,
		"skipped":  skipped,
	}
}

func newJournalExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export journaled trades to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.service()
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			filter, err := filterFromFlags(cmd, app.Config.Import.DateLayout)
			if err != nil {
				return err
			}
			trades, err := svc.Trades(ctx, filter)
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return errors.Wrap(err, "creating csv")
			}
			if err := importer.Export(f, trades); err != nil {
				f.Close()
				return errors.Wrap(err, "writing csv")
			}
			if err := f.Close(); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"exported": len(trades), "path": args[0]})
			}
			output.Success("✓ Exported %d trade(s) to %s", len(trades), args[0])
			return nil
		},
	}

	addFilterFlags(cmd)
	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("symbol", "", "Filter by symbol")
	cmd.Flags().String("account", "", "Filter by account ID")
	cmd.Flags().String("from", "", "Trades closed on or after this date")
	cmd.Flags().String("to", "", "Trades closed before this date")
}

func filterFromFlags(cmd *cobra.Command, layout string) (store.TradeFilter, error) {
	symbol, _ := cmd.Flags().GetString("symbol")
	account, _ := cmd.Flags().GetString("account")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	filter := store.TradeFilter{
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		AccountID: account,
	}
	if cmd.Flags().Lookup("limit") != nil {
		filter.Limit, _ = cmd.Flags().GetInt("limit")
	}

	var err error
	if filter.StartDate, err = parseDateFlag("from", from, layout); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseDateFlag("to", to, layout); err != nil {
		return filter, err
	}
	return filter, nil
}

// parseDateFlag reads a date the same way the importer does. An empty
// value is the zero time.
func parseDateFlag(name, value, layout string) (time.Time, error) {
	t, ok := importer.ParseDate(value, layout)
	if !ok {
		return time.Time{}, errors.NewValidationError(name, value, "unrecognized date")
	}
	return t, nil
}

func renderTrade(output *Output, app *App, t *models.TradeRecord) {
	lines := []string{
		"Symbol:       " + t.Symbol + " " + string(t.Direction),
		"Closed:       " + FormatDate(t.ClosedAt, app.Config.UI.DateFormat),
		"Entry/Stop:   " + t.EntryPrice.String() + " / " + t.StopLoss.String(),
		"Risk:         " + FormatCurrency(t.RiskAmount, output.currency),
		"Size:         " + t.PositionSize.String() + " (closed " + t.ClosedVolume.String() + ")",
		"Commission:   " + FormatCurrency(t.Commission, output.currency),
		"P&L:          " + output.FormatPnL(t.PnL),
		"R-multiple:   " + output.FormatR(t.RMultiple),
		"Discipline:   " + strconv.Itoa(t.DisciplineScore),
	}
	if t.AccountID != "" {
		lines = append(lines, "Account:      "+t.AccountID)
	}
	if t.Setup != "" {
		lines = append(lines, "Setup:        "+t.Setup)
	}
	if t.Notes != "" {
		lines = append(lines, "Notes:        "+TruncateString(t.Notes, 60))
	}
	output.Box("Trade "+TruncateString(t.ID, 8), lines)

	if len(t.Exits) > 0 {
		table := NewTable(output, "#", "Label", "Price", "Volume")
		for i, e := range t.Exits {
			label := e.Label
			if label == "" {
				label = "-"
			}
			table.AddRow(strconv.Itoa(i+1), label, e.Price.String(), e.Volume.String())
		}
		table.Render()
	}
	if t.OverAllocated {
		output.Warning("⚠ Closed volume exceeds total position size")
	}
}
