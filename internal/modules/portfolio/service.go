package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

// TradeSource yields the full ledger in execution order for position replay.
// Implemented by the ledger repository.
type TradeSource interface {
	ListChronological() ([]LedgerEntry, error)
}

// Service maintains positions and serves portfolio views
type Service struct {
	repo   *Repository
	cache  *positionCache
	quotes domain.QuoteProvider
	log    zerolog.Logger
}

// NewService creates a portfolio service. quotes may be nil in contexts that
// never ask for market-value views (replay tooling, tests of the cost path).
func NewService(repo *Repository, quotes domain.QuoteProvider, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  newPositionCache(),
		quotes: quotes,
		log:    log.With().Str("service", "portfolio").Logger(),
	}
}

// Position returns the current position for a symbol. A symbol with no trade
// history yields a zero-valued position rather than an error.
func (s *Service) Position(symbol string) (Position, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if p, ok := s.cache.get(symbol); ok {
		return p, nil
	}

	p, err := s.repo.Get(symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Position{Symbol: symbol}, nil
		}
		return Position{}, err
	}
	s.cache.set(p)
	return p, nil
}

// Stage applies one ledger entry to the current position without persisting.
// The returned realized P&L pointer is non-nil only for sells. The ledger
// module stages before writing the trade row and commits after.
func (s *Service) Stage(e LedgerEntry) (Position, *float64, error) {
	current, err := s.Position(e.Symbol)
	if err != nil {
		return Position{}, nil, fmt.Errorf("failed to load position for staging: %w", err)
	}
	return apply(current, e)
}

// Commit persists a staged position and refreshes the cache
func (s *Service) Commit(p Position) error {
	if err := s.repo.Upsert(p); err != nil {
		return err
	}
	s.cache.set(p)
	return nil
}

// OpenCount returns how many symbols currently hold shares
func (s *Service) OpenCount() (int, error) {
	return s.repo.CountOpen()
}

// Invalidate drops the cached position for a symbol. Called by the ledger on
// any mutation so the next read goes back to the table.
func (s *Service) Invalidate(symbol string) {
	s.cache.invalidate(domain.NormalizeSymbol(symbol))
}

// Replay rebuilds every position from the full trade ledger. Used after trade
// edits and deletions, where incremental application is no longer valid.
func (s *Service) Replay(source TradeSource) error {
	entries, err := source.ListChronological()
	if err != nil {
		return fmt.Errorf("failed to load ledger for replay: %w", err)
	}

	positions, _, err := ReplayLedger(entries)
	if err != nil {
		return err
	}

	if err := s.repo.ReplaceAll(positions); err != nil {
		return fmt.Errorf("failed to persist replayed positions: %w", err)
	}
	s.cache.invalidateAll()

	s.log.Info().Int("trades", len(entries)).Int("positions", len(positions)).
		Msg("Rebuilt positions from trade ledger")
	return nil
}

// Snapshot returns all holdings enriched with live prices. Symbols without a
// quote stay in the snapshot with nil market fields; totals cover only the
// quoted subset so a stale feed cannot fabricate portfolio value.
func (s *Service) Snapshot() (Snapshot, error) {
	positions, err := s.repo.List()
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Holdings: make([]Holding, 0, len(positions))}
	for _, p := range positions {
		if p.TotalShares == 0 {
			snap.TotalRealizedPnL += p.RealizedPnL
			continue
		}

		h := Holding{Position: p}
		snap.TotalCost += p.TotalCost
		snap.TotalRealizedPnL += p.RealizedPnL
		snap.TotalHoldings++

		if s.quotes != nil {
			if price, qerr := s.quotes.GetCurrentPrice(p.Symbol); qerr == nil {
				value := price * float64(p.TotalShares)
				unrealized := (price - p.AvgCost) * float64(p.TotalShares)
				h.CurrentPrice = &price
				h.MarketValue = &value
				h.UnrealizedPnL = &unrealized
				if p.TotalCost > 0 {
					pct := unrealized / p.TotalCost * 100
					h.ReturnPercent = &pct
				}
				snap.TotalMarketValue += value
				snap.TotalUnrealizedPnL += unrealized
				snap.QuotedHoldings++
			} else if !errors.Is(qerr, domain.ErrQuoteUnavailable) {
				s.log.Warn().Err(qerr).Str("symbol", p.Symbol).Msg("Quote lookup failed")
			}
		}

		snap.Holdings = append(snap.Holdings, h)
	}

	// Weights need the final total, second pass
	if snap.TotalMarketValue > 0 {
		for i := range snap.Holdings {
			if snap.Holdings[i].MarketValue != nil {
				w := *snap.Holdings[i].MarketValue / snap.TotalMarketValue * 100
				snap.Holdings[i].Weight = &w
			}
		}
	}

	return snap, nil
}

// Distribution returns each open holding's share of total portfolio value.
// Holdings without a live quote are valued at average cost so the view stays
// complete; percentages are over the combined total and sum to 100.
func (s *Service) Distribution() ([]DistributionSlice, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	var total float64
	slices := make([]DistributionSlice, 0, len(snap.Holdings))
	for _, h := range snap.Holdings {
		slice := DistributionSlice{
			Symbol:    h.Symbol,
			StockName: h.StockName,
			Shares:    h.TotalShares,
			AvgCost:   h.AvgCost,
		}
		if h.MarketValue != nil {
			slice.MarketValue = *h.MarketValue
		} else {
			slice.MarketValue = h.TotalCost
			slice.Estimated = true
		}
		total += slice.MarketValue
		slices = append(slices, slice)
	}
	if total == 0 {
		return slices, nil
	}

	for i := range slices {
		slices[i].Percent = slices[i].MarketValue / total * 100
	}
	sort.Slice(slices, func(i, j int) bool {
		return slices[i].MarketValue > slices[j].MarketValue
	})
	return slices, nil
}
