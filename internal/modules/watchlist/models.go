// Package watchlist manages the tracked-symbol list. Entries are either
// holdings (mirrored from open positions) or plain watches; the ledger keeps
// the category in sync as positions open and close.
package watchlist

// Entry categories
const (
	CategoryHold  = "hold"
	CategoryWatch = "watch"
)

// Entry is one tracked symbol
type Entry struct {
	Symbol      string   `json:"symbol"`
	StockName   string   `json:"stock_name"`
	Category    string   `json:"category"`
	TargetPrice *float64 `json:"target_price"`
	Note        string   `json:"note"`
	SortOrder   int64    `json:"sort_order"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

// UpsertRequest carries user-editable entry fields
type UpsertRequest struct {
	Symbol      string   `json:"symbol"`
	StockName   string   `json:"stock_name"`
	TargetPrice *float64 `json:"target_price"`
	Note        string   `json:"note"`
	SortOrder   int64    `json:"sort_order"`
}
