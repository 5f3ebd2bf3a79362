// Package quotes maintains the live price snapshot store. An external source
// feeds it on a schedule; everything else in the system reads prices from
// here and never talks to the market directly.
package quotes

import "context"

// Snapshot is the latest observed market state for one symbol
type Snapshot struct {
	Symbol        string  `json:"symbol"`
	StockName     string  `json:"stock_name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	PrevClose     float64 `json:"prev_close"`
	FetchedAt     int64   `json:"fetched_at"` // Unix seconds
}

// Source fetches current market snapshots for a set of symbols.
// Implementations wrap a concrete market data feed; partial results are fine,
// symbols the source cannot resolve are simply absent from the reply.
type Source interface {
	FetchQuotes(ctx context.Context, symbols []string) ([]Snapshot, error)
}

// SymbolSource yields the set of symbols worth refreshing, typically the
// union of watchlist entries and open positions.
type SymbolSource interface {
	ActiveSymbols() ([]string, error)
}
