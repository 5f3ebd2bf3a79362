// Package fees implements transaction cost calculation for trade execution.
//
// Costs follow the Taiwan market convention: a brokerage fee on both sides of
// a trade (rate x discount, floored at a minimum), and a securities
// transaction tax on sells only, with a reduced rate for ETFs.
package fees

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

// Schedule holds the cost parameters for a single market/broker combination.
// All calculations flow through one Schedule so the preview endpoint and the
// trade insertion path can never disagree.
type Schedule struct {
	FeeRate      float64 // Base brokerage rate, e.g. 0.001425
	FeeDiscount  float64 // Broker discount multiplier, e.g. 0.6
	MinFee       int64   // Fee floor in whole currency units
	TaxRateStock float64 // Transaction tax for common stock, sell side only
	TaxRateETF   float64 // Reduced transaction tax for ETFs
}

// Breakdown is the full cost decomposition of a single trade.
type Breakdown struct {
	GrossAmount float64 `json:"gross_amount"` // shares x price
	Fee         int64   `json:"fee"`          // Brokerage fee, whole currency units
	Tax         int64   `json:"tax"`          // Transaction tax, zero for buys
	NetAmount   float64 `json:"net_amount"`   // Cash out (buy) or cash in (sell)
}

// Calculate computes the cost breakdown for a trade.
// Buy:  net = gross + fee (cash spent).
// Sell: net = gross - fee - tax (cash received).
func (s Schedule) Calculate(action domain.TradeAction, symbol string, shares int64, price float64) (Breakdown, error) {
	if shares <= 0 || price <= 0 {
		return Breakdown{}, fmt.Errorf("%w: shares=%d price=%v", domain.ErrInvalidTradeInput, shares, price)
	}

	gross := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(shares))
	fee := s.fee(gross)

	var tax decimal.Decimal
	if action == domain.ActionSell {
		tax = s.tax(gross, symbol)
	}

	var net decimal.Decimal
	switch action {
	case domain.ActionBuy:
		net = gross.Add(fee)
	case domain.ActionSell:
		net = gross.Sub(fee).Sub(tax)
	default:
		return Breakdown{}, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidTradeInput, action)
	}

	grossF, _ := gross.Float64()
	netF, _ := net.Float64()
	return Breakdown{
		GrossAmount: grossF,
		Fee:         fee.IntPart(),
		Tax:         tax.IntPart(),
		NetAmount:   netF,
	}, nil
}

// fee computes the brokerage fee: gross x rate x discount, rounded to the
// nearest whole unit, never below the minimum fee. The floor applies to odd
// lots too, which is why tiny trades are disproportionately expensive.
func (s Schedule) fee(gross decimal.Decimal) decimal.Decimal {
	fee := gross.
		Mul(decimal.NewFromFloat(s.FeeRate)).
		Mul(decimal.NewFromFloat(s.FeeDiscount)).
		Round(0)

	minFee := decimal.NewFromInt(s.MinFee)
	if fee.LessThan(minFee) {
		return minFee
	}
	return fee
}

// tax computes the transaction tax for a sell, rounded to the nearest whole
// unit. ETFs (symbols with the "00" prefix) get the reduced rate.
func (s Schedule) tax(gross decimal.Decimal, symbol string) decimal.Decimal {
	rate := s.TaxRateStock
	if domain.IsETF(symbol) {
		rate = s.TaxRateETF
	}
	return gross.Mul(decimal.NewFromFloat(rate)).Round(0)
}
