// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"bewustetrader/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Journal JournalConfig `mapstructure:"journal"`
	Import  ImportConfig  `mapstructure:"import"`
	Logging LoggingConfig `mapstructure:"logging"`
	UI      UIConfig      `mapstructure:"ui"`

	Dir string `mapstructure:"-"`
}

// JournalConfig holds journal-related configuration.
type JournalConfig struct {
	DBPath            string `mapstructure:"db_path"`
	Currency          string `mapstructure:"currency"`
	DefaultCommission string `mapstructure:"default_commission"`
	DefaultRisk       string `mapstructure:"default_risk"`
	DefaultAccount    string `mapstructure:"default_account"`
}

// ImportConfig holds CSV import configuration.
type ImportConfig struct {
	BatchSize  int    `mapstructure:"batch_size"`
	DateLayout string `mapstructure:"date_layout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`    // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`     // days
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradejournal"
	}
	return filepath.Join(home, ".config", "tradejournal")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
// A missing config.toml is created from the template.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{Dir: configDir}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	// .env is optional
	envPath := filepath.Join(configDir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Journal.DBPath == "" {
		cfg.Journal.DBPath = filepath.Join(configDir, "journal.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("journal.currency", "$")
	v.SetDefault("journal.default_commission", "0")
	v.SetDefault("journal.default_risk", "")
	v.SetDefault("import.batch_size", 100)
	v.SetDefault("import.date_layout", "2006-01-02 15:04:05")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", false)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.max_size", 20)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateConfig(configDir, name); err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEJOURNAL_DB"); v != "" {
		cfg.Journal.DBPath = v
	}
	if v := os.Getenv("TRADEJOURNAL_CURRENCY"); v != "" {
		cfg.Journal.Currency = v
	}
	if v := os.Getenv("TRADEJOURNAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validateNonNegative("journal.default_commission", c.Journal.DefaultCommission); err != nil {
		return err
	}
	if err := validateNonNegative("journal.default_risk", c.Journal.DefaultRisk); err != nil {
		return err
	}

	if c.Import.BatchSize <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "import.batch_size must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(errors.ErrConfigInvalid, "invalid logging.level: %s (must be debug, info, warn or error)", c.Logging.Level)
	}

	return nil
}

func validateNonNegative(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigInvalid, "%s is not a number: %q", field, value)
	}
	if d.IsNegative() {
		return errors.Wrapf(errors.ErrConfigInvalid, "%s must be non-negative", field)
	}
	return nil
}

// LogFilePath returns the rotating log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Dir, "logs", "journal.log")
}
