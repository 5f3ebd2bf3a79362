package domain

import "errors"

// Error taxonomy for the trade recording and P&L paths.
// Repositories and services wrap these with context via fmt.Errorf and %w,
// callers test with errors.Is.
var (
	// ErrInvalidTradeInput - non-positive shares/price or unknown action.
	// Rejected before fee calculation, nothing persisted.
	ErrInvalidTradeInput = errors.New("invalid trade input")

	// ErrInsufficientShares - a sell exceeds the currently held position.
	// The trade is rejected and the ledger left unchanged.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrQuoteUnavailable - no live price for a symbol. Not an error for the
	// ledger path; callers report unrealized P&L as unavailable instead.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrLedgerReplay - the trade log is internally inconsistent (e.g. a sell
	// predating sufficient buys after manual edits). Surfaced as a
	// data-integrity error, never silently clamped.
	ErrLedgerReplay = errors.New("ledger replay failure")
)
