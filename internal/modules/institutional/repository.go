package institutional

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/database"
)

// Repository handles chip data persistence in cache.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new institutional repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "institutional").Logger(),
	}
}

// SaveDaily persists one day's chip data in a single transaction
func (r *Repository) SaveDaily(chips DailyChips) error {
	now := time.Now().Unix()
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if chips.Market != nil {
			m := chips.Market
			if _, err := tx.Exec(`
				INSERT INTO market_institutional (date, foreign_net, trust_net,
					dealer_net, total_net, fetched_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(date) DO UPDATE SET
					foreign_net = excluded.foreign_net,
					trust_net = excluded.trust_net,
					dealer_net = excluded.dealer_net,
					total_net = excluded.total_net,
					fetched_at = excluded.fetched_at`,
				m.Date, m.ForeignNet, m.TrustNet, m.DealerNet, m.TotalNet, now); err != nil {
				return fmt.Errorf("failed to save market flow %s: %w", m.Date, err)
			}
		}

		for _, f := range chips.Flows {
			if _, err := tx.Exec(`
				INSERT INTO institutional_data (symbol, date, foreign_net,
					trust_net, dealer_net, total_net, fetched_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(symbol, date) DO UPDATE SET
					foreign_net = excluded.foreign_net,
					trust_net = excluded.trust_net,
					dealer_net = excluded.dealer_net,
					total_net = excluded.total_net,
					fetched_at = excluded.fetched_at`,
				f.Symbol, f.Date, f.ForeignNet, f.TrustNet, f.DealerNet,
				f.TotalNet, now); err != nil {
				return fmt.Errorf("failed to save flow %s %s: %w", f.Symbol, f.Date, err)
			}
		}

		for _, m := range chips.Margins {
			if _, err := tx.Exec(`
				INSERT INTO margin_data (symbol, date, margin_balance,
					margin_change, short_balance, short_change, fetched_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(symbol, date) DO UPDATE SET
					margin_balance = excluded.margin_balance,
					margin_change = excluded.margin_change,
					short_balance = excluded.short_balance,
					short_change = excluded.short_change,
					fetched_at = excluded.fetched_at`,
				m.Symbol, m.Date, m.MarginBalance, m.MarginChange,
				m.ShortBalance, m.ShortChange, now); err != nil {
				return fmt.Errorf("failed to save margin %s %s: %w", m.Symbol, m.Date, err)
			}
		}
		return nil
	})
}

// SymbolFlows returns the most recent institutional flows for a symbol
func (r *Repository) SymbolFlows(symbol string, limit int) ([]Flow, error) {
	rows, err := r.db.Query(`
		SELECT symbol, date, foreign_net, trust_net, dealer_net, total_net, fetched_at
		FROM institutional_data WHERE symbol = ?
		ORDER BY date DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query flows for %s: %w", symbol, err)
	}
	defer rows.Close()

	var flows []Flow
	for rows.Next() {
		var f Flow
		if err := rows.Scan(&f.Symbol, &f.Date, &f.ForeignNet, &f.TrustNet,
			&f.DealerNet, &f.TotalNet, &f.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan flow: %w", err)
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

// MarketFlows returns the most recent market-wide flows
func (r *Repository) MarketFlows(limit int) ([]MarketFlow, error) {
	rows, err := r.db.Query(`
		SELECT date, foreign_net, trust_net, dealer_net, total_net, fetched_at
		FROM market_institutional ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query market flows: %w", err)
	}
	defer rows.Close()

	var flows []MarketFlow
	for rows.Next() {
		var f MarketFlow
		if err := rows.Scan(&f.Date, &f.ForeignNet, &f.TrustNet, &f.DealerNet,
			&f.TotalNet, &f.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan market flow: %w", err)
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

// SymbolMargins returns the most recent margin balances for a symbol
func (r *Repository) SymbolMargins(symbol string, limit int) ([]Margin, error) {
	rows, err := r.db.Query(`
		SELECT symbol, date, margin_balance, margin_change, short_balance,
			short_change, fetched_at
		FROM margin_data WHERE symbol = ?
		ORDER BY date DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query margins for %s: %w", symbol, err)
	}
	defer rows.Close()

	var margins []Margin
	for rows.Next() {
		var m Margin
		if err := rows.Scan(&m.Symbol, &m.Date, &m.MarginBalance, &m.MarginChange,
			&m.ShortBalance, &m.ShortChange, &m.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan margin: %w", err)
		}
		margins = append(margins, m)
	}
	return margins, rows.Err()
}
