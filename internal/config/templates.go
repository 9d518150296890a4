package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Journal Configuration

[journal]
# SQLite database file (default: <config dir>/journal.db)
db_path = ""
# Currency symbol used in output
currency = "$"
# Flat commission applied to each trade unless --commission is given
default_commission = "0"
# Risk amount used when --risk is omitted (empty = required)
default_risk = ""
# Account ID used when --account is omitted
default_account = ""

[import]
# Number of trades written per transaction
batch_size = 100
# Go time layout of the date column
date_layout = "2006-01-02 15:04:05"

[logging]
# debug, info, warn, error
level = "info"
console = false
file = true
# Rotation: megabytes, files, days
max_size = 20
max_backups = 5
max_age = 30

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
