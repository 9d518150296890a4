package config

import (
	"os"
	"path/filepath"
	"testing"

	"bewustetrader/internal/errors"
)

func TestLoadCreatesTemplate(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("template not written: %v", err)
	}
	if cfg.Journal.DBPath != filepath.Join(dir, "journal.db") {
		t.Errorf("DBPath = %q", cfg.Journal.DBPath)
	}
	if cfg.Import.BatchSize != 100 {
		t.Errorf("BatchSize = %d, want 100", cfg.Import.BatchSize)
	}
	if cfg.Journal.Currency != "$" {
		t.Errorf("Currency = %q", cfg.Journal.Currency)
	}
	if cfg.LogFilePath() != filepath.Join(dir, "logs", "journal.log") {
		t.Errorf("LogFilePath = %q", cfg.LogFilePath())
	}
}

func TestLoadReadsFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	content := `
[journal]
currency = "€"
default_commission = "4.5"

[import]
batch_size = 25
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "custom.db")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TRADEJOURNAL_DB="+dbPath+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("TRADEJOURNAL_DB") })

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Journal.Currency != "€" || cfg.Journal.DefaultCommission != "4.5" {
		t.Errorf("journal config = %+v", cfg.Journal)
	}
	if cfg.Import.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25", cfg.Import.BatchSize)
	}
	if cfg.Journal.DBPath != dbPath {
		t.Errorf("DBPath = %q, want %q from .env", cfg.Journal.DBPath, dbPath)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Journal: JournalConfig{DefaultCommission: "1.25", DefaultRisk: "100"},
			Import:  ImportConfig{BatchSize: 10},
			Logging: LoggingConfig{Level: "warn"},
		}
	}

	testCases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"empty risk allowed", func(c *Config) { c.Journal.DefaultRisk = "" }, true},
		{"negative commission", func(c *Config) { c.Journal.DefaultCommission = "-1" }, false},
		{"non-numeric risk", func(c *Config) { c.Journal.DefaultRisk = "lots" }, false},
		{"zero batch size", func(c *Config) { c.Import.BatchSize = 0 }, false},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, errors.ErrConfigInvalid) {
				t.Errorf("error = %v, want ErrConfigInvalid", err)
			}
		})
	}
}
