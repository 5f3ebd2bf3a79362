// Package ledger implements trade recording and the append-only trade log.
// Every executed trade flows through here: validation, cost calculation,
// position staging and the atomic write path.
package ledger

import (
	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

// Trade is one persisted row of the trade log.
// RealizedPnL is locked in at insert time for sells and nil for buys;
// ledger edits recompute it through a full replay.
type Trade struct {
	ID          int64              `json:"id"`
	Symbol      string             `json:"symbol"`
	StockName   string             `json:"stock_name"`
	Action      domain.TradeAction `json:"action"`
	Shares      int64              `json:"shares"`
	Price       float64            `json:"price"`
	TotalAmount float64            `json:"total_amount"` // shares x price, before fees
	Fee         int64              `json:"fee"`
	Tax         int64              `json:"tax"`
	NetAmount   float64            `json:"net_amount"`
	RealizedPnL *float64           `json:"realized_pnl"`
	IsOddLot    bool               `json:"is_odd_lot"`
	Note        string             `json:"note"`
	ExecutedAt  int64              `json:"executed_at"`
	CreatedAt   int64              `json:"created_at"`
}

// boardLot is the TWSE round-lot size; anything else trades on the odd-lot
// market but shares the same position.
const boardLot = 1000

// derive fills the computed fields that are not stored
func (t *Trade) derive() {
	t.TotalAmount = float64(t.Shares) * t.Price
	t.IsOddLot = t.Shares%boardLot != 0
}

// RecordRequest is the input for recording a new trade.
// ExecutedAt of zero means "now". Fees and taxes are always derived from the
// schedule, never accepted from the caller.
type RecordRequest struct {
	Symbol     string  `json:"symbol"`
	StockName  string  `json:"stock_name"`
	Action     string  `json:"action"`
	Shares     int64   `json:"shares"`
	Price      float64 `json:"price"`
	Note       string  `json:"note"`
	ExecutedAt int64   `json:"executed_at"`
}

// UpdateRequest carries editable fields of an existing trade. The ledger is
// append-only in normal operation; edits exist to fix data-entry mistakes and
// always trigger a full position replay.
type UpdateRequest struct {
	Shares     int64   `json:"shares"`
	Price      float64 `json:"price"`
	Note       string  `json:"note"`
	ExecutedAt int64   `json:"executed_at"`
}

// ListFilter narrows trade history queries
type ListFilter struct {
	Symbol string
	From   int64 // Unix seconds, inclusive, zero means unbounded
	To     int64 // Unix seconds, inclusive, zero means unbounded
	Limit  int
	Offset int
}
