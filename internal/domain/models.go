// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
)

// TradeAction represents the direction of a trade
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// ParseTradeAction parses a trade action string, case-insensitive
func ParseTradeAction(s string) (TradeAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return ActionBuy, nil
	case "sell":
		return ActionSell, nil
	default:
		return "", fmt.Errorf("%w: action must be 'buy' or 'sell', got %q", ErrInvalidTradeInput, s)
	}
}

// IsETF reports whether a symbol refers to an exchange-traded fund.
// Taiwan market convention: ETF symbols carry the "00" prefix (0050, 00878, ...).
func IsETF(symbol string) bool {
	return strings.HasPrefix(strings.TrimSpace(symbol), "00")
}

// NormalizeSymbol trims and canonicalizes a stock symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
