package cli

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatCurrency formats an amount with a currency symbol, thousands
// separators and two decimal places.
func FormatCurrency(amount decimal.Decimal, symbol string) string {
	negative := amount.IsNegative()
	str := amount.Abs().StringFixed(2)

	intPart, decPart, _ := strings.Cut(str, ".")
	result := symbol + groupThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	first := n % 3
	if first > 0 {
		b.WriteString(s[:first])
	}
	for i := first; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatSignedCurrency formats P&L with an explicit plus sign for gains.
func FormatSignedCurrency(pnl decimal.Decimal, symbol string) string {
	formatted := FormatCurrency(pnl, symbol)
	if pnl.IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// FormatR formats an R-multiple, e.g. "+1.35R".
func FormatR(r decimal.Decimal) string {
	sign := ""
	if r.IsPositive() {
		sign = "+"
	}
	return sign + r.StringFixed(2) + "R"
}

// FormatPercent formats a percentage.
func FormatPercent(value decimal.Decimal) string {
	return value.StringFixed(1) + "%"
}

// FormatDecimal prints a value as entered, or "-" when it is absent.
func FormatDecimal(v decimal.NullDecimal) string {
	if !v.Valid {
		return "-"
	}
	return v.Decimal.String()
}

// FormatDate formats a date with the configured layout.
func FormatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	if layout == "" {
		layout = "2006-01-02"
	}
	return t.Local().Format(layout)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
