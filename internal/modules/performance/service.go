package performance

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
	"github.com/SeanFuture9999/stock-game1/internal/modules/diary"
	"github.com/SeanFuture9999/stock-game1/internal/modules/ledger"
)

// TradeSource provides trade history for aggregation.
// Satisfied by the ledger service.
type TradeSource interface {
	List(filter ledger.ListFilter) ([]ledger.Trade, error)
}

// PositionCounter reports how many positions currently hold shares.
// Satisfied by the portfolio service; nil omits the count from the summary.
type PositionCounter interface {
	OpenCount() (int, error)
}

// DiarySource provides journal entries for the calendar merge.
// Satisfied by the diary service; nil disables diary flags.
type DiarySource interface {
	List(from, to string) ([]diary.Entry, error)
}

// Service computes performance aggregates from the trade ledger.
// All bucketing uses the local calendar day of the execution timestamp.
type Service struct {
	trades    TradeSource
	positions PositionCounter
	diary     DiarySource
	log       zerolog.Logger
}

// NewService creates a performance service. positions and diary may be nil.
func NewService(trades TradeSource, positions PositionCounter, diary DiarySource,
	log zerolog.Logger) *Service {
	return &Service{
		trades:    trades,
		positions: positions,
		diary:     diary,
		log:       log.With().Str("service", "performance").Logger(),
	}
}

// localDate formats a Unix timestamp as a local calendar day
func localDate(unix int64) string {
	return time.Unix(unix, 0).In(time.Local).Format("2006-01-02")
}

// dailyBuckets groups trades into per-day realized results, oldest first.
// Days with trades but no sells appear with zero realized P&L; win/loss
// classification later only considers days that actually sold.
func dailyBuckets(trades []ledger.Trade) []DailyPnL {
	byDay := make(map[string]*DailyPnL)
	for _, t := range trades {
		date := localDate(t.ExecutedAt)
		day, ok := byDay[date]
		if !ok {
			day = &DailyPnL{Date: date}
			byDay[date] = day
		}
		day.TradeCount++
		day.Fee += t.Fee
		day.Tax += t.Tax
		if t.Action == domain.ActionSell {
			day.SellCount++
			if t.RealizedPnL != nil {
				day.RealizedPnL += *t.RealizedPnL
			}
		}
	}

	days := make([]DailyPnL, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, *d)
	}
	sortAndAccumulate(days)
	return days
}

func sortAndAccumulate(days []DailyPnL) {
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	var cumulative float64
	for i := range days {
		cumulative += days[i].RealizedPnL
		days[i].CumulativePnL = cumulative
	}
}

// Daily returns per-day realized P&L between from and to (Unix seconds,
// zero means unbounded), with a running cumulative over the window. Diary
// entries in the window contribute their flags; a day with only a diary
// entry appears with zero trade counts.
func (s *Service) Daily(from, to int64) ([]DailyPnL, error) {
	trades, err := s.trades.List(ledger.ListFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("failed to load trades for daily rollup: %w", err)
	}
	days := dailyBuckets(trades)

	if s.diary != nil {
		days, err = s.mergeDiary(days, from, to)
		if err != nil {
			return nil, err
		}
	}
	return days, nil
}

func (s *Service) mergeDiary(days []DailyPnL, from, to int64) ([]DailyPnL, error) {
	fromDate, toDate := "", ""
	if from > 0 {
		fromDate = localDate(from)
	}
	if to > 0 {
		toDate = localDate(to)
	}

	entries, err := s.diary.List(fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load diary for calendar merge: %w", err)
	}
	if len(entries) == 0 {
		return days, nil
	}

	index := make(map[string]int, len(days))
	for i, d := range days {
		index[d.Date] = i
	}
	for _, e := range entries {
		i, ok := index[e.Date]
		if !ok {
			days = append(days, DailyPnL{Date: e.Date})
			i = len(days) - 1
			index[e.Date] = i
		}
		days[i].EmotionTag = e.Mood
		days[i].HasNotes = e.Content != ""
		days[i].HasAIReview = e.AIReview != ""
	}
	sortAndAccumulate(days)
	return days, nil
}

// Monthly returns calendar-month rollups over the whole ledger. Mean and
// standard deviation are over the month's per-day realized results; the
// month's win rate follows the same day-based definition as the summary.
func (s *Service) Monthly() ([]MonthlyStats, error) {
	trades, err := s.trades.List(ledger.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load trades for monthly rollup: %w", err)
	}

	byMonth := make(map[string]*MonthlyStats)
	monthOf := func(key string) *MonthlyStats {
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlyStats{Month: key}
			byMonth[key] = m
		}
		return m
	}

	for _, t := range trades {
		m := monthOf(localDate(t.ExecutedAt)[:7])
		m.TradeCount++
		m.TotalFee += t.Fee
		m.TotalTax += t.Tax
		switch t.Action {
		case domain.ActionBuy:
			m.BuyCount++
		case domain.ActionSell:
			m.SellCount++
			if t.RealizedPnL != nil {
				switch {
				case *t.RealizedPnL > 0:
					m.WinningTrades++
				case *t.RealizedPnL < 0:
					m.LosingTrades++
				}
			}
		}
	}

	samples := make(map[string][]float64)
	for _, d := range dailyBuckets(trades) {
		m := monthOf(d.Date[:7])
		m.RealizedPnL += d.RealizedPnL
		m.TradingDays++
		samples[m.Month] = append(samples[m.Month], d.RealizedPnL)

		if d.SellCount > 0 {
			switch {
			case d.RealizedPnL > 0:
				m.WinningDays++
			case d.RealizedPnL < 0:
				m.LosingDays++
			}
		}
	}

	months := make([]MonthlyStats, 0, len(byMonth))
	for month, m := range byMonth {
		xs := samples[month]
		m.MeanDaily = stat.Mean(xs, nil)
		if len(xs) > 1 {
			m.StdDevDaily = stat.StdDev(xs, nil)
		}
		if m.TradingDays > 0 {
			m.AvgTradesPerDay = float64(m.TradeCount) / float64(m.TradingDays)
		}
		if decided := m.WinningDays + m.LosingDays; decided > 0 {
			rate := float64(m.WinningDays) / float64(decided) * 100
			m.WinRate = &rate
		}
		months = append(months, *m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months, nil
}

// OverallSummary computes the all-time performance overview. The win rate is
// day-based: a day enters the tally only when it sold something, and flat
// days (exactly zero realized) count for neither side.
func (s *Service) OverallSummary() (Summary, error) {
	trades, err := s.trades.List(ledger.ListFilter{})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load trades for summary: %w", err)
	}

	summary := Summary{TradeCount: len(trades)}
	for _, t := range trades {
		summary.TotalFee += t.Fee
		summary.TotalTax += t.Tax
		switch t.Action {
		case domain.ActionBuy:
			summary.BuyCount++
		case domain.ActionSell:
			summary.SellCount++
			if t.RealizedPnL != nil {
				summary.TotalRealizedPnL += *t.RealizedPnL
			}
		}
	}

	days := dailyBuckets(trades)
	summary.TradingDays = len(days)
	for _, d := range days {
		if d.SellCount == 0 {
			continue
		}
		day := d
		switch {
		case d.RealizedPnL > 0:
			summary.WinningDays++
		case d.RealizedPnL < 0:
			summary.LosingDays++
		}
		if summary.BestDay == nil || day.RealizedPnL > summary.BestDay.RealizedPnL {
			summary.BestDay = &day
		}
		if summary.WorstDay == nil || day.RealizedPnL < summary.WorstDay.RealizedPnL {
			summary.WorstDay = &day
		}
	}

	if decided := summary.WinningDays + summary.LosingDays; decided > 0 {
		rate := float64(summary.WinningDays) / float64(decided) * 100
		summary.WinRate = &rate
	}

	if s.positions != nil {
		count, err := s.positions.OpenCount()
		if err != nil {
			return Summary{}, fmt.Errorf("failed to count open positions: %w", err)
		}
		summary.ActivePositions = count
	}
	return summary, nil
}
