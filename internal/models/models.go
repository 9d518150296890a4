// Package models provides domain models for the trading journal.
package models

import (
	"strings"
)

// Direction represents the side of a journaled trade.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// ParseDirection normalizes broker and spreadsheet spellings of a trade side.
// Unknown input yields the empty Direction.
func ParseDirection(s string) Direction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY", "B", "L":
		return DirectionLong
	case "SHORT", "SELL", "S":
		return DirectionShort
	default:
		return ""
	}
}

// IsValid reports whether d is LONG or SHORT.
func (d Direction) IsValid() bool {
	return d == DirectionLong || d == DirectionShort
}

// TradeStatus represents the lifecycle state of a journaled trade.
type TradeStatus string

const (
	// TradeStatusClosed is written on every submitted trade.
	TradeStatusClosed TradeStatus = "closed"
)

// AccountPhase represents the stage of a prop-firm account.
type AccountPhase string

const (
	PhaseChallenge    AccountPhase = "challenge"
	PhaseVerification AccountPhase = "verification"
	PhaseFunded       AccountPhase = "funded"
	PhaseBreached     AccountPhase = "breached"
)

// ParseAccountPhase returns the phase for s, defaulting to challenge.
func ParseAccountPhase(s string) AccountPhase {
	switch AccountPhase(strings.ToLower(strings.TrimSpace(s))) {
	case PhaseVerification:
		return PhaseVerification
	case PhaseFunded:
		return PhaseFunded
	case PhaseBreached:
		return PhaseBreached
	default:
		return PhaseChallenge
	}
}
