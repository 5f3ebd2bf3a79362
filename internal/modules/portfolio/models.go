// Package portfolio maintains derived position state: cost basis, realized
// P&L and the live holdings snapshot. Positions are a pure function of the
// trade ledger and can always be rebuilt from it.
package portfolio

import (
	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

// Position is the aggregated state of one symbol's holdings.
// Timestamps are Unix seconds, zero means never.
type Position struct {
	Symbol      string  `json:"symbol"`
	StockName   string  `json:"stock_name"`
	TotalShares int64   `json:"total_shares"`
	AvgCost     float64 `json:"avg_cost"`
	TotalCost   float64 `json:"total_cost"`
	RealizedPnL float64 `json:"realized_pnl"`
	BuyCount    int64   `json:"buy_count"`
	SellCount   int64   `json:"sell_count"`
	FirstBuyAt  int64   `json:"first_buy_at,omitempty"`
	LastTradeAt int64   `json:"last_trade_at,omitempty"`
	UpdatedAt   int64   `json:"updated_at"`
}

// LedgerEntry is the slice of a trade that position tracking needs.
// The ledger module constructs these from persisted trade rows.
type LedgerEntry struct {
	Symbol     string
	StockName  string
	Action     domain.TradeAction
	Shares     int64
	Price      float64
	Fee        int64
	Tax        int64
	ExecutedAt int64 // Unix seconds
}

// Holding is a position enriched with live market data for the snapshot view.
// UnrealizedPnL and related fields are nil when no quote is available.
type Holding struct {
	Position
	CurrentPrice  *float64 `json:"current_price"`
	MarketValue   *float64 `json:"market_value"`
	UnrealizedPnL *float64 `json:"unrealized_pnl"`
	ReturnPercent *float64 `json:"return_percent"`
	Weight        *float64 `json:"weight"` // Share of total market value, percent
}

// Snapshot is the full portfolio view served to the dashboard.
type Snapshot struct {
	Holdings           []Holding `json:"holdings"`
	TotalCost          float64   `json:"total_cost"`
	TotalMarketValue   float64   `json:"total_market_value"`
	TotalUnrealizedPnL float64   `json:"total_unrealized_pnl"`
	TotalRealizedPnL   float64   `json:"total_realized_pnl"`
	QuotedHoldings     int       `json:"quoted_holdings"`
	TotalHoldings      int       `json:"total_holdings"`
}

// DistributionSlice is one symbol's share of the portfolio by market value.
// Holdings without a live quote are valued at cost, flagged Estimated.
type DistributionSlice struct {
	Symbol      string  `json:"symbol"`
	StockName   string  `json:"stock_name"`
	Shares      int64   `json:"shares"`
	AvgCost     float64 `json:"avg_cost"`
	MarketValue float64 `json:"market_value"`
	Percent     float64 `json:"percent"`
	Estimated   bool    `json:"estimated"`
}
