package domain

// QuoteProvider supplies the latest known price for a symbol.
// Implemented by the quotes snapshot store; the P&L engine treats every call
// as an instantaneous snapshot read and never blocks on the producer.
// Returns ErrQuoteUnavailable when no snapshot exists for the symbol.
type QuoteProvider interface {
	GetCurrentPrice(symbol string) (float64, error)
}

// Notifier delivers user-facing notifications (price alerts, trade
// confirmations). The delivery transport and message format live outside the
// core; a nil notifier is valid and means notifications are disabled.
type Notifier interface {
	Notify(title, message string) error
}
