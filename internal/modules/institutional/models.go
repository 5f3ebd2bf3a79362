// Package institutional tracks chip data: daily institutional buy/sell flows
// and margin balances, per symbol and market-wide. Data arrives from an
// external source after each session close and lives in the cache database.
package institutional

import "context"

// Flow is one symbol's institutional net activity for a day, in shares
type Flow struct {
	Symbol     string `json:"symbol"`
	Date       string `json:"date"` // YYYY-MM-DD
	ForeignNet int64  `json:"foreign_net"`
	TrustNet   int64  `json:"trust_net"`
	DealerNet  int64  `json:"dealer_net"`
	TotalNet   int64  `json:"total_net"`
	FetchedAt  int64  `json:"fetched_at"`
}

// MarketFlow is the whole market's institutional net activity for a day
type MarketFlow struct {
	Date       string `json:"date"`
	ForeignNet int64  `json:"foreign_net"`
	TrustNet   int64  `json:"trust_net"`
	DealerNet  int64  `json:"dealer_net"`
	TotalNet   int64  `json:"total_net"`
	FetchedAt  int64  `json:"fetched_at"`
}

// Margin is one symbol's margin trading balance for a day, in lots
type Margin struct {
	Symbol        string `json:"symbol"`
	Date          string `json:"date"`
	MarginBalance int64  `json:"margin_balance"`
	MarginChange  int64  `json:"margin_change"`
	ShortBalance  int64  `json:"short_balance"`
	ShortChange   int64  `json:"short_change"`
	FetchedAt     int64  `json:"fetched_at"`
}

// DailyChips is one day's full chip data pull
type DailyChips struct {
	Date    string
	Market  *MarketFlow
	Flows   []Flow
	Margins []Margin
}

// Source fetches chip data for a trading day from an external provider.
// An empty date means the most recent session.
type Source interface {
	FetchDaily(ctx context.Context, date string) (DailyChips, error)
}
