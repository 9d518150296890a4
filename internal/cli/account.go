package cli

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"bewustetrader/internal/calculator"
	"bewustetrader/internal/errors"
	"bewustetrader/internal/models"
)

// addAccountCommands adds prop-firm account and payout commands.
func addAccountCommands(rootCmd *cobra.Command, app *App) {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Prop-firm account management",
	}
	accountCmd.AddCommand(newAccountAddCmd(app))
	accountCmd.AddCommand(newAccountListCmd(app))

	payoutCmd := &cobra.Command{
		Use:   "payout",
		Short: "Record and list payouts",
	}
	payoutCmd.AddCommand(newPayoutAddCmd(app))
	payoutCmd.AddCommand(newPayoutListCmd(app))

	rootCmd.AddCommand(accountCmd, payoutCmd)
}

func newAccountAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "Register a prop-firm account",
		Example: `  tradejournal account add "FTMO 100k" --firm FTMO --size 100000 --phase challenge`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.service()
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			firm, _ := cmd.Flags().GetString("firm")
			sizeStr, _ := cmd.Flags().GetString("size")
			phase, _ := cmd.Flags().GetString("phase")

			size, err := parseAmount("size", sizeStr)
			if err != nil {
				return err
			}

			account, err := svc.CreateAccount(ctx, args[0], firm, size, models.ParseAccountPhase(phase))
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(account)
			}
			output.Success("✓ Account %s created (%s)", account.Name, account.ID)
			return nil
		},
	}

	cmd.Flags().String("firm", "", "Prop firm name")
	cmd.Flags().String("size", "", "Starting account size")
	cmd.Flags().String("phase", string(models.PhaseChallenge), "challenge, verification, funded or breached")
	cmd.MarkFlagRequired("size")
	return cmd
}

func newAccountListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with balance and payouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.service()
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			summaries, err := svc.Portfolio(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(summaries)
			}
			if len(summaries) == 0 {
				output.Info("No accounts yet. Add one with 'tradejournal account add'.")
				return nil
			}

			table := NewTable(output, "ID", "Name", "Firm", "Phase", "Size", "Trades", "P&L", "Payouts", "Balance")
			for _, s := range summaries {
				table.AddRow(
					s.Account.ID,
					TruncateString(s.Account.Name, 20),
					s.Account.Firm,
					string(s.Account.Phase),
					FormatCurrency(s.Account.Size, output.currency),
					strconv.Itoa(s.TradeCount),
					output.FormatPnL(s.RealizedPnL),
					FormatCurrency(s.Payouts, output.currency),
					FormatCurrency(s.Balance, output.currency),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newPayoutAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <account-id> <amount>",
		Short: "Record a payout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.service()
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			note, _ := cmd.Flags().GetString("note")
			dateStr, _ := cmd.Flags().GetString("date")
			date, err := parseDateFlag("date", dateStr, app.Config.Import.DateLayout)
			if err != nil {
				return err
			}

			payout, err := svc.RecordPayout(ctx, args[0], amount, date, note)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(payout)
			}
			output.Success("✓ Payout of %s recorded", FormatCurrency(payout.Amount, output.currency))
			return nil
		},
	}

	cmd.Flags().String("note", "", "Note")
	cmd.Flags().String("date", "", "Payout date (default: now)")
	return cmd
}

func newPayoutListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <account-id>",
		Short: "List payouts of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.service()
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			payouts, err := svc.Payouts(ctx, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(payouts)
			}
			if len(payouts) == 0 {
				output.Info("No payouts recorded.")
				return nil
			}

			total := decimal.Zero
			table := NewTable(output, "Date", "Amount", "Note")
			for _, p := range payouts {
				total = total.Add(p.Amount)
				table.AddRow(FormatDate(p.Date, app.Config.UI.DateFormat), FormatCurrency(p.Amount, output.currency), p.Note)
			}
			table.Render()
			output.Println()
			output.Printf("  Total: %s\n", FormatCurrency(total, output.currency))
			return nil
		},
	}
}

// parseAmount reads a required amount with the calculator's number rules.
func parseAmount(field, s string) (decimal.Decimal, error) {
	v := calculator.ParseOptionalDecimal(s)
	if !v.Valid {
		return decimal.Zero, errors.NewValidationError(field, s, "not a number")
	}
	return v.Decimal, nil
}
