// Package alerts implements price alerts: user-defined thresholds checked
// against the quote store on a schedule, firing a notification once.
package alerts

// Alert conditions
const (
	ConditionAbove = "above"
	ConditionBelow = "below"
)

// Alert is one price threshold watch. A fired alert disarms itself
// (Enabled false, TriggeredAt set) and stays visible until deleted; the user
// can re-enable it to arm it again.
type Alert struct {
	ID          int64   `json:"id"`
	Symbol      string  `json:"symbol"`
	Condition   string  `json:"condition"`
	Threshold   float64 `json:"threshold"`
	Enabled     bool    `json:"enabled"`
	TriggeredAt int64   `json:"triggered_at,omitempty"`
	Note        string  `json:"note"`
	CreatedAt   int64   `json:"created_at"`
}

// CreateRequest is the input for a new alert
type CreateRequest struct {
	Symbol    string  `json:"symbol"`
	Condition string  `json:"condition"`
	Threshold float64 `json:"threshold"`
	Note      string  `json:"note"`
}
