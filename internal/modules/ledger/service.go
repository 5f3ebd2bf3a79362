package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
	"github.com/SeanFuture9999/stock-game1/internal/modules/fees"
	"github.com/SeanFuture9999/stock-game1/internal/modules/portfolio"
)

// PositionSink is how the ledger drives position state. Implemented by the
// portfolio service; defined here so the dependency points one way.
type PositionSink interface {
	Stage(e portfolio.LedgerEntry) (portfolio.Position, *float64, error)
	Commit(p portfolio.Position) error
	Invalidate(symbol string)
	Replay(source portfolio.TradeSource) error
}

// WatchlistUpdater keeps watchlist categories in sync with holdings.
// A nil updater disables the sync.
type WatchlistUpdater interface {
	MarkHolding(symbol, stockName string) error
	MarkWatching(symbol string) error
}

// EventPublisher broadcasts ledger mutations to interested listeners
type EventPublisher interface {
	Publish(eventType string, payload any)
}

// Event types emitted on ledger mutations
const (
	EventTradeRecorded = "trade.recorded"
	EventTradeUpdated  = "trade.updated"
	EventTradeDeleted  = "trade.deleted"
)

// Service implements trade recording on top of the repository
type Service struct {
	repo      *Repository
	positions PositionSink
	schedule  fees.Schedule
	watchlist WatchlistUpdater
	events    EventPublisher
	log       zerolog.Logger

	// Per-symbol locks serialize the stage/insert/commit critical section.
	// Trades and positions live in separate database files, so this is the
	// only thing keeping them mutually consistent on the hot path.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// replayMu serializes the full-replay writers (edits, deletions and
	// backdated inserts) against each other and against the incremental
	// record path, which holds it shared.
	replayMu sync.RWMutex
}

// NewService creates a ledger service. watchlist and events may be nil.
func NewService(repo *Repository, positions PositionSink, schedule fees.Schedule,
	watchlist WatchlistUpdater, events EventPublisher, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		positions: positions,
		schedule:  schedule,
		watchlist: watchlist,
		events:    events,
		log:       log.With().Str("service", "ledger").Logger(),
		locks:     make(map[string]*sync.Mutex),
	}
}

func (s *Service) symbolLock(symbol string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if l, ok := s.locks[symbol]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[symbol] = l
	return l
}

// validate normalizes and checks a record request, returning the parsed action
func validate(req *RecordRequest) (domain.TradeAction, error) {
	req.Symbol = domain.NormalizeSymbol(req.Symbol)
	if req.Symbol == "" {
		return "", fmt.Errorf("%w: symbol is required", domain.ErrInvalidTradeInput)
	}
	action, err := domain.ParseTradeAction(req.Action)
	if err != nil {
		return "", err
	}
	if req.Shares <= 0 {
		return "", fmt.Errorf("%w: shares must be positive, got %d", domain.ErrInvalidTradeInput, req.Shares)
	}
	if req.Price <= 0 {
		return "", fmt.Errorf("%w: price must be positive, got %v", domain.ErrInvalidTradeInput, req.Price)
	}
	return action, nil
}

// Preview computes the cost breakdown for a hypothetical trade without
// touching the ledger. Uses the exact same schedule as Record.
func (s *Service) Preview(req RecordRequest) (fees.Breakdown, error) {
	action, err := validate(&req)
	if err != nil {
		return fees.Breakdown{}, err
	}
	return s.schedule.Calculate(action, req.Symbol, req.Shares, req.Price)
}

// Record validates, prices and persists a trade, then commits the staged
// position. Sells that exceed the held position are rejected with
// ErrInsufficientShares before anything is written. Trades dated before the
// symbol's latest entry take the full-replay path instead of incremental
// staging.
func (s *Service) Record(req RecordRequest) (Trade, error) {
	action, err := validate(&req)
	if err != nil {
		return Trade{}, err
	}

	breakdown, err := s.schedule.Calculate(action, req.Symbol, req.Shares, req.Price)
	if err != nil {
		return Trade{}, err
	}

	executedAt := req.ExecutedAt
	if executedAt == 0 {
		executedAt = time.Now().Unix()
	}

	s.replayMu.RLock()
	lock := s.symbolLock(req.Symbol)
	lock.Lock()

	latest, err := s.repo.LatestExecutedAt(req.Symbol)
	if err != nil {
		lock.Unlock()
		s.replayMu.RUnlock()
		return Trade{}, err
	}
	if latest > 0 && executedAt < latest {
		// A backdated trade cannot be staged off the current position: its
		// cost basis is whatever held at executed_at. Route it through the
		// full-replay path that edits use.
		lock.Unlock()
		s.replayMu.RUnlock()
		return s.recordBackdated(req, action, breakdown, executedAt)
	}
	defer s.replayMu.RUnlock()
	defer lock.Unlock()

	entry := portfolio.LedgerEntry{
		Symbol:     req.Symbol,
		StockName:  req.StockName,
		Action:     action,
		Shares:     req.Shares,
		Price:      req.Price,
		Fee:        breakdown.Fee,
		Tax:        breakdown.Tax,
		ExecutedAt: executedAt,
	}

	staged, realized, err := s.positions.Stage(entry)
	if err != nil {
		return Trade{}, err
	}

	trade := Trade{
		Symbol:      req.Symbol,
		StockName:   req.StockName,
		Action:      action,
		Shares:      req.Shares,
		Price:       req.Price,
		Fee:         breakdown.Fee,
		Tax:         breakdown.Tax,
		NetAmount:   breakdown.NetAmount,
		RealizedPnL: realized,
		Note:        req.Note,
		ExecutedAt:  executedAt,
		CreatedAt:   time.Now().Unix(),
	}
	trade.derive()

	trade, err = s.repo.Insert(trade)
	if err != nil {
		return Trade{}, err
	}

	if err := s.positions.Commit(staged); err != nil {
		// Trade row exists but the position write failed. Replay restores
		// consistency from the ledger, which is the source of truth.
		s.log.Error().Err(err).Int64("trade_id", trade.ID).
			Msg("Position commit failed, replaying ledger")
		if replayErr := s.positions.Replay(s.repo); replayErr != nil {
			return Trade{}, fmt.Errorf("position commit and replay both failed: %v: %w", err, replayErr)
		}
	}

	s.syncWatchlist(staged)
	if s.events != nil {
		s.events.Publish(EventTradeRecorded, trade)
	}

	s.log.Info().Str("symbol", trade.Symbol).Str("action", string(trade.Action)).
		Int64("shares", trade.Shares).Float64("price", trade.Price).
		Int64("trade_id", trade.ID).Msg("Trade recorded")
	return trade, nil
}

// recordBackdated inserts a trade dated before the symbol's newest entry.
// The row is validated by a dry-run replay with the candidate spliced into
// history, then persisted and followed by a full rebuild so its own realized
// P&L and every later sell's come out of the replay, not the stale average.
func (s *Service) recordBackdated(req RecordRequest, action domain.TradeAction,
	breakdown fees.Breakdown, executedAt int64) (Trade, error) {
	s.replayMu.Lock()
	defer s.replayMu.Unlock()

	trades, err := s.repo.listChronologicalTrades()
	if err != nil {
		return Trade{}, err
	}

	candidate := Trade{
		Symbol:     req.Symbol,
		StockName:  req.StockName,
		Action:     action,
		Shares:     req.Shares,
		Price:      req.Price,
		Fee:        breakdown.Fee,
		Tax:        breakdown.Tax,
		NetAmount:  breakdown.NetAmount,
		Note:       req.Note,
		ExecutedAt: executedAt,
		CreatedAt:  time.Now().Unix(),
	}
	candidate.derive()

	// The dry run must order the candidate the way the insert will: ties on
	// executed_at break on row ID, and a new row gets the highest one.
	dryRun := append(append([]Trade(nil), trades...), candidate)
	last := len(dryRun) - 1
	for _, t := range trades {
		if t.ID >= dryRun[last].ID {
			dryRun[last].ID = t.ID + 1
		}
	}
	positions, _, err := portfolio.ReplayLedger(toEntries(dryRun))
	if err != nil {
		return Trade{}, err
	}

	trade, err := s.repo.Insert(candidate)
	if err != nil {
		return Trade{}, err
	}
	if err := s.rebuild(); err != nil {
		return Trade{}, err
	}

	// The rebuild filled in the stored realized P&L
	trade, err = s.repo.GetByID(trade.ID)
	if err != nil {
		return Trade{}, err
	}

	s.syncWatchlist(positions[req.Symbol])
	if s.events != nil {
		s.events.Publish(EventTradeRecorded, trade)
	}

	s.log.Info().Str("symbol", trade.Symbol).Str("action", string(trade.Action)).
		Int64("shares", trade.Shares).Float64("price", trade.Price).
		Int64("trade_id", trade.ID).Msg("Backdated trade recorded, ledger replayed")
	return trade, nil
}

// Get returns one trade by ID
func (s *Service) Get(id int64) (Trade, error) {
	return s.repo.GetByID(id)
}

// List returns trade history matching the filter
func (s *Service) List(filter ListFilter) ([]Trade, error) {
	filter.Symbol = domain.NormalizeSymbol(filter.Symbol)
	return s.repo.List(filter)
}

// Update edits a trade's executable fields, recomputes its costs and replays
// the whole ledger. The edit is validated against the full replayed history
// first: an edit that would make any later sell oversell is rejected.
func (s *Service) Update(id int64, req UpdateRequest) (Trade, error) {
	if req.Shares <= 0 || req.Price <= 0 {
		return Trade{}, fmt.Errorf("%w: shares=%d price=%v", domain.ErrInvalidTradeInput, req.Shares, req.Price)
	}

	s.replayMu.Lock()
	defer s.replayMu.Unlock()

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return Trade{}, err
	}

	breakdown, err := s.schedule.Calculate(existing.Action, existing.Symbol, req.Shares, req.Price)
	if err != nil {
		return Trade{}, err
	}

	updated := existing
	updated.Shares = req.Shares
	updated.Price = req.Price
	updated.Fee = breakdown.Fee
	updated.Tax = breakdown.Tax
	updated.NetAmount = breakdown.NetAmount
	updated.Note = req.Note
	if req.ExecutedAt > 0 {
		updated.ExecutedAt = req.ExecutedAt
	}
	updated.derive()

	// Dry-run replay with the edit applied before persisting anything
	trades, err := s.repo.listChronologicalTrades()
	if err != nil {
		return Trade{}, err
	}
	for i := range trades {
		if trades[i].ID == id {
			trades[i] = updated
		}
	}
	if _, _, err := portfolio.ReplayLedger(toEntries(trades)); err != nil {
		return Trade{}, err
	}

	if err := s.repo.Update(updated); err != nil {
		return Trade{}, err
	}
	if err := s.rebuild(); err != nil {
		return Trade{}, err
	}

	if s.events != nil {
		s.events.Publish(EventTradeUpdated, updated)
	}
	s.log.Info().Int64("trade_id", id).Msg("Trade updated, ledger replayed")
	return s.repo.GetByID(id)
}

// Delete removes a trade and replays the ledger. Deleting a buy that later
// sells depend on is rejected.
func (s *Service) Delete(id int64) error {
	s.replayMu.Lock()
	defer s.replayMu.Unlock()

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	trades, err := s.repo.listChronologicalTrades()
	if err != nil {
		return err
	}
	remaining := trades[:0]
	for _, t := range trades {
		if t.ID != id {
			remaining = append(remaining, t)
		}
	}
	if _, _, err := portfolio.ReplayLedger(toEntries(remaining)); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if err := s.rebuild(); err != nil {
		return err
	}

	if s.events != nil {
		s.events.Publish(EventTradeDeleted, existing)
	}
	s.log.Info().Int64("trade_id", id).Str("symbol", existing.Symbol).
		Msg("Trade deleted, ledger replayed")
	return nil
}

// rebuild replays positions from the persisted ledger and rewrites stored
// per-trade realized P&L values that the replay changed.
func (s *Service) rebuild() error {
	if err := s.positions.Replay(s.repo); err != nil {
		return err
	}

	trades, err := s.repo.listChronologicalTrades()
	if err != nil {
		return err
	}
	_, realized, err := portfolio.ReplayLedger(toEntries(trades))
	if err != nil {
		return err
	}

	for i, t := range trades {
		if !realizedEqual(t.RealizedPnL, realized[i]) {
			if err := s.repo.SetRealizedPnL(t.ID, realized[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func toEntries(trades []Trade) []portfolio.LedgerEntry {
	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].ExecutedAt != trades[j].ExecutedAt {
			return trades[i].ExecutedAt < trades[j].ExecutedAt
		}
		return trades[i].ID < trades[j].ID
	})

	entries := make([]portfolio.LedgerEntry, len(trades))
	for i, t := range trades {
		entries[i] = portfolio.LedgerEntry{
			Symbol:     t.Symbol,
			StockName:  t.StockName,
			Action:     t.Action,
			Shares:     t.Shares,
			Price:      t.Price,
			Fee:        t.Fee,
			Tax:        t.Tax,
			ExecutedAt: t.ExecutedAt,
		}
	}
	return entries
}

func realizedEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// syncWatchlist mirrors position state into the watchlist category: open
// positions are holdings, a full close drops back to watching.
func (s *Service) syncWatchlist(p portfolio.Position) {
	if s.watchlist == nil {
		return
	}
	var err error
	if p.TotalShares > 0 {
		err = s.watchlist.MarkHolding(p.Symbol, p.StockName)
	} else {
		err = s.watchlist.MarkWatching(p.Symbol)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", p.Symbol).Msg("Watchlist sync failed")
	}
}
