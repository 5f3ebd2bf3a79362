package quotes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

// Store is the in-memory snapshot store. It satisfies domain.QuoteProvider
// for the P&L paths; reads are lock-cheap and never block a refresh.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot

	repo   *Repository
	source Source
	log    zerolog.Logger
}

// NewStore creates a snapshot store. repo and source may be nil in tests;
// a nil repo skips persistence, a nil source makes Refresh a no-op.
func NewStore(repo *Repository, source Source, log zerolog.Logger) *Store {
	return &Store{
		snapshots: make(map[string]Snapshot),
		repo:      repo,
		source:    source,
		log:       log.With().Str("service", "quotes").Logger(),
	}
}

// Warm loads persisted snapshots into memory. Called once at startup so the
// dashboard has prices before the first refresh completes.
func (s *Store) Warm() error {
	if s.repo == nil {
		return nil
	}
	snapshots, err := s.repo.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to warm quote store: %w", err)
	}

	s.mu.Lock()
	for _, snap := range snapshots {
		s.snapshots[snap.Symbol] = snap
	}
	s.mu.Unlock()

	s.log.Info().Int("snapshots", len(snapshots)).Msg("Quote store warmed from cache")
	return nil
}

// GetCurrentPrice implements domain.QuoteProvider
func (s *Store) GetCurrentPrice(symbol string) (float64, error) {
	snap, ok := s.Get(symbol)
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrQuoteUnavailable, symbol)
	}
	return snap.Price, nil
}

// Get returns the snapshot for one symbol
func (s *Store) Get(symbol string) (Snapshot, bool) {
	symbol = domain.NormalizeSymbol(symbol)
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[symbol]
	return snap, ok
}

// All returns every held snapshot
func (s *Store) All() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	return out
}

// Put stores snapshots in memory and persists them
func (s *Store) Put(snapshots ...Snapshot) error {
	now := time.Now().Unix()
	s.mu.Lock()
	for i := range snapshots {
		snapshots[i].Symbol = domain.NormalizeSymbol(snapshots[i].Symbol)
		if snapshots[i].FetchedAt == 0 {
			snapshots[i].FetchedAt = now
		}
		s.snapshots[snapshots[i].Symbol] = snapshots[i]
	}
	s.mu.Unlock()

	if s.repo == nil {
		return nil
	}
	return s.repo.UpsertBatch(snapshots)
}

// Refresh fetches current snapshots for the given symbols and stores them.
// A failed fetch keeps the previous snapshots, stale data beats no data.
func (s *Store) Refresh(ctx context.Context, symbols []string) error {
	if s.source == nil || len(symbols) == 0 {
		return nil
	}

	snapshots, err := s.source.FetchQuotes(ctx, symbols)
	if err != nil {
		return fmt.Errorf("quote fetch failed: %w", err)
	}
	if err := s.Put(snapshots...); err != nil {
		return err
	}

	s.log.Debug().Int("requested", len(symbols)).Int("received", len(snapshots)).
		Msg("Quote snapshots refreshed")
	return nil
}
