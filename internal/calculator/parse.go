// Package calculator derives the outcome of a split-exit trade: direction,
// value per price unit, closed volume, realized P&L and R-multiple.
//
// Every function here is pure. Missing or unparsable input is never an
// error; it makes the calculator abstain and return an empty Summary so a
// caller can recompute after each keystroke without handling failures.
package calculator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxExponent bounds the scale of parsed input. Arithmetic on a decimal
// rescales to 10^exponent, so "1e100000000" would stall every later step.
const maxExponent = 30

// ParseOptionalDecimal parses free-text numeric input.
// Empty or non-numeric text yields an invalid NullDecimal, as does a value
// whose exponent lies outside ±maxExponent.
func ParseOptionalDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}

	// "1,5" is a decimal comma; "1,000.50" uses thousands separators.
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// ParseExitRow reads an exit written as "price:volume[:label]". The volume
// may be empty ("price:") when it is distributed afterwards.
func ParseExitRow(raw string) (ExitRow, bool) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 {
		return ExitRow{}, false
	}
	row := ExitRow{
		Price:  strings.TrimSpace(parts[0]),
		Volume: strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		row.Label = strings.TrimSpace(parts[2])
	}
	return row, true
}
