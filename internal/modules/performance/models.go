// Package performance aggregates realized trading results over time: daily
// P&L buckets, monthly rollups and the overall win rate.
package performance

// DailyPnL is the realized result of one trading day, merged with that day's
// diary flags for the calendar view. A day appears only when it has trades or
// a diary entry; realized P&L comes exclusively from sells.
type DailyPnL struct {
	Date          string  `json:"date"` // YYYY-MM-DD, local time
	RealizedPnL   float64 `json:"realized_pnl"`
	TradeCount    int     `json:"trade_count"`
	SellCount     int     `json:"sell_count"`
	Fee           int64   `json:"fee"`
	Tax           int64   `json:"tax"`
	CumulativePnL float64 `json:"cumulative_pnl"`
	EmotionTag    string  `json:"emotion_tag,omitempty"`
	HasNotes      bool    `json:"has_notes"`
	HasAIReview   bool    `json:"has_ai_review"`
}

// MonthlyStats is the rollup of one calendar month. WinRate is day-based and
// nil for months without a decided day; per-trade win/loss counts are
// reported alongside but do not define it.
type MonthlyStats struct {
	Month           string   `json:"month"` // YYYY-MM
	RealizedPnL     float64  `json:"realized_pnl"`
	TradingDays     int      `json:"trading_days"`
	TradeCount      int      `json:"trade_count"`
	BuyCount        int      `json:"buy_count"`
	SellCount       int      `json:"sell_count"`
	TotalFee        int64    `json:"total_fee"`
	TotalTax        int64    `json:"total_tax"`
	AvgTradesPerDay float64  `json:"avg_trades_per_day"`
	MeanDaily       float64  `json:"mean_daily"`
	StdDevDaily     float64  `json:"stddev_daily"`
	WinningDays     int      `json:"winning_days"`
	LosingDays      int      `json:"losing_days"`
	WinningTrades   int      `json:"winning_trades"`
	LosingTrades    int      `json:"losing_trades"`
	WinRate         *float64 `json:"win_rate"`
}

// Summary is the all-time performance overview.
// WinRate is nil until at least one day has a non-zero realized result.
type Summary struct {
	TotalRealizedPnL float64   `json:"total_realized_pnl"`
	TradeCount       int       `json:"trade_count"`
	BuyCount         int       `json:"buy_count"`
	SellCount        int       `json:"sell_count"`
	TotalFee         int64     `json:"total_fee"`
	TotalTax         int64     `json:"total_tax"`
	TradingDays      int       `json:"trading_days"`
	ActivePositions  int       `json:"active_positions"`
	WinningDays      int       `json:"winning_days"`
	LosingDays       int       `json:"losing_days"`
	WinRate          *float64  `json:"win_rate"` // Percent of decided days
	BestDay          *DailyPnL `json:"best_day"`
	WorstDay         *DailyPnL `json:"worst_day"`
}
