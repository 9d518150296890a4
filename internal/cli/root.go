// Package cli provides the command-line interface for the trade journal.
package cli

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bewustetrader/internal/config"
	"bewustetrader/internal/errors"
	"bewustetrader/internal/journal"
	"bewustetrader/internal/logging"
	"bewustetrader/internal/store"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2024-06-01"
)

// commandTimeout bounds every store round trip of a single command.
const commandTimeout = 30 * time.Second

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.JournalStore
	Journal *journal.Service
}

// NewApp opens the journal store. When the store cannot be opened the app
// still serves calc and config commands.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	journalStore, err := store.NewSQLiteStore(cfg.Journal.DBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.Journal.DBPath).Msg("Failed to open journal store, journal commands are unavailable")
		return app
	}
	app.Store = journalStore
	app.Journal = journal.NewService(journalStore, logger)
	logger.Debug().Str("path", cfg.Journal.DBPath).Msg("SQLite store initialized")
	return app
}

// Close releases the journal store. It runs after the command whether or
// not the command failed.
func (app *App) Close() error {
	if app.Store == nil {
		return nil
	}
	err := app.Store.Close()
	app.Store = nil
	app.Journal = nil
	return err
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	colorsAllowed = app.Config.UI.ColorEnabled

	rootCmd := &cobra.Command{
		Use:   "tradejournal",
		Short: "Trade journal and split-exit P&L calculator for prop-firm traders",
		Long: `tradejournal records closed trades with their split exits, computes
P&L and R-multiples from your risk, and tracks prop-firm accounts and payouts.

Use 'tradejournal calc' to try a trade before journaling it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradejournal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newCalcCmd(app))
	addJournalCommands(rootCmd, app)
	addAccountCommands(rootCmd, app)

	return rootCmd
}

// ConfigDirFromArgs finds the --config value before cobra parses flags, so
// that the config can be loaded before the command tree is built.
func ConfigDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
	}
	return ""
}

// output returns an Output carrying the configured currency.
func (app *App) output(cmd *cobra.Command) *Output {
	return NewOutput(cmd).WithCurrency(app.Config.Journal.Currency)
}

// service returns the journal service or an error when the store failed to open.
func (app *App) service() (*journal.Service, error) {
	if app.Journal == nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, "journal store is not available")
	}
	return app.Journal, nil
}

// commandContext bounds a command with commandTimeout and carries a logger
// tagged with the command path.
func (app *App) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	logger := app.Logger.With().Str("command", cmd.CommandPath()).Logger()
	return context.WithTimeout(logging.WithLogger(parent, logger), commandTimeout)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("tradejournal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the journal configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := filepath.Join(app.Config.Dir, "config.toml")
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Journal")
	output.Printf("  Database:           %s\n", cfg.Journal.DBPath)
	output.Printf("  Currency:           %s\n", cfg.Journal.Currency)
	output.Printf("  Default Commission: %s\n", orDash(cfg.Journal.DefaultCommission))
	output.Printf("  Default Risk:       %s\n", orDash(cfg.Journal.DefaultRisk))
	output.Printf("  Default Account:    %s\n", orDash(cfg.Journal.DefaultAccount))
	output.Println()

	output.Bold("Import")
	output.Printf("  Batch Size:         %d\n", cfg.Import.BatchSize)
	output.Printf("  Date Layout:        %s\n", cfg.Import.DateLayout)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:              %s\n", cfg.Logging.Level)
	output.Printf("  Console:            %v\n", cfg.Logging.Console)
	output.Printf("  File:               %v (%s)\n", cfg.Logging.File, cfg.LogFilePath())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
