package institutional

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

// Service syncs and serves chip data
type Service struct {
	repo   *Repository
	source Source
	log    zerolog.Logger
}

// NewService creates an institutional service. source may be nil, which makes
// Sync fail cleanly while reads keep serving persisted data.
func NewService(repo *Repository, source Source, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		source: source,
		log:    log.With().Str("service", "institutional").Logger(),
	}
}

// Sync pulls one day's chip data from the source and persists it.
// An empty date means the most recent session.
func (s *Service) Sync(ctx context.Context, date string) error {
	if s.source == nil {
		return fmt.Errorf("no chip data source configured")
	}

	chips, err := s.source.FetchDaily(ctx, date)
	if err != nil {
		return fmt.Errorf("chip data fetch failed: %w", err)
	}
	if err := s.repo.SaveDaily(chips); err != nil {
		return err
	}

	s.log.Info().Str("date", chips.Date).Int("flows", len(chips.Flows)).
		Int("margins", len(chips.Margins)).Msg("Chip data synced")
	return nil
}

// SymbolChips returns recent flows and margin balances for one symbol
func (s *Service) SymbolChips(symbol string, days int) ([]Flow, []Margin, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if days <= 0 {
		days = 30
	}

	flows, err := s.repo.SymbolFlows(symbol, days)
	if err != nil {
		return nil, nil, err
	}
	margins, err := s.repo.SymbolMargins(symbol, days)
	if err != nil {
		return nil, nil, err
	}
	return flows, margins, nil
}

// MarketChips returns recent market-wide institutional flows
func (s *Service) MarketChips(days int) ([]MarketFlow, error) {
	if days <= 0 {
		days = 30
	}
	return s.repo.MarketFlows(days)
}
