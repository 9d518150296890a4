// Command tradejournal is a trade journal and split-exit P&L calculator.
package main

import (
	"fmt"
	"os"

	"bewustetrader/internal/cli"
	"bewustetrader/internal/config"
	"bewustetrader/internal/logging"
)

func main() {
	cfg, err := config.Load(cli.ConfigDirFromArgs(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    cfg.Logging.Console,
		File:       cfg.Logging.File,
		FilePath:   cfg.LogFilePath(),
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})

	app := cli.NewApp(cfg, logger)
	err = cli.NewRootCmd(app).Execute()
	if closeErr := app.Close(); closeErr != nil {
		logger.Warn().Err(closeErr).Msg("Failed to close journal store")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
