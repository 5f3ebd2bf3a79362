package quotes

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Repository persists snapshots in cache.db so the store survives restarts.
// The cache profile runs with synchronous OFF, losing a write here costs one
// refresh cycle at most.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new quotes repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "quotes").Logger(),
	}
}

// UpsertBatch writes a batch of snapshots
func (r *Repository) UpsertBatch(snapshots []Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO stock_snapshots (symbol, stock_name, price, change,
			change_percent, volume, open, high, low, prev_close, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			stock_name = excluded.stock_name,
			price = excluded.price,
			change = excluded.change,
			change_percent = excluded.change_percent,
			volume = excluded.volume,
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			prev_close = excluded.prev_close,
			fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot upsert: %w", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		if _, err := stmt.Exec(s.Symbol, s.StockName, s.Price, s.Change,
			s.ChangePercent, s.Volume, s.Open, s.High, s.Low, s.PrevClose,
			s.FetchedAt); err != nil {
			return fmt.Errorf("failed to upsert snapshot %s: %w", s.Symbol, err)
		}
	}

	return tx.Commit()
}

// LoadAll returns every persisted snapshot, used to warm the store on startup
func (r *Repository) LoadAll() ([]Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT symbol, stock_name, price, change, change_percent, volume,
			open, high, low, prev_close, fetched_at
		FROM stock_snapshots`)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.Symbol, &s.StockName, &s.Price, &s.Change,
			&s.ChangePercent, &s.Volume, &s.Open, &s.High, &s.Low,
			&s.PrevClose, &s.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
