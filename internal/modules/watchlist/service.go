package watchlist

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

// Service implements watchlist operations. It doubles as the ledger's
// watchlist updater and the quote refresher's symbol source.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a watchlist service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "watchlist").Logger(),
	}
}

// Add tracks a new symbol as a watch entry. Adding an already-tracked symbol
// updates its user fields but never demotes a holding back to watch.
func (s *Service) Add(req UpsertRequest) (Entry, error) {
	symbol := domain.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return Entry{}, fmt.Errorf("%w: symbol is required", domain.ErrInvalidTradeInput)
	}

	category := CategoryWatch
	if existing, err := s.repo.Get(symbol); err == nil {
		category = existing.Category
	}

	entry := Entry{
		Symbol:      symbol,
		StockName:   req.StockName,
		Category:    category,
		TargetPrice: req.TargetPrice,
		Note:        req.Note,
		SortOrder:   req.SortOrder,
	}
	if err := s.repo.Upsert(entry); err != nil {
		return Entry{}, err
	}
	return s.repo.Get(symbol)
}

// Get returns one entry
func (s *Service) Get(symbol string) (Entry, error) {
	return s.repo.Get(domain.NormalizeSymbol(symbol))
}

// List returns entries, optionally filtered by category
func (s *Service) List(category string) ([]Entry, error) {
	return s.repo.List(category)
}

// Remove untracks a symbol
func (s *Service) Remove(symbol string) error {
	return s.repo.Delete(domain.NormalizeSymbol(symbol))
}

// MarkHolding flags a symbol as a held position. Called by the ledger when a
// trade leaves the symbol with open shares.
func (s *Service) MarkHolding(symbol, stockName string) error {
	return s.repo.SetCategory(domain.NormalizeSymbol(symbol), stockName, CategoryHold)
}

// MarkWatching drops a symbol back to a plain watch after a full close
func (s *Service) MarkWatching(symbol string) error {
	return s.repo.SetCategory(domain.NormalizeSymbol(symbol), "", CategoryWatch)
}

// ActiveSymbols returns every tracked symbol for the quote refresher.
// Holdings are always on the watchlist via the ledger sync, so this covers
// positions too.
func (s *Service) ActiveSymbols() ([]string, error) {
	return s.repo.Symbols()
}
