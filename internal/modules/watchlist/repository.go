package watchlist

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles watchlist persistence in portfolio.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new watchlist repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "watchlist").Logger(),
	}
}

const entryColumns = `symbol, stock_name, category, target_price, note,
	sort_order, created_at, updated_at`

func scanEntry(scanner interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	var target sql.NullFloat64
	err := scanner.Scan(&e.Symbol, &e.StockName, &e.Category, &target,
		&e.Note, &e.SortOrder, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Entry{}, err
	}
	if target.Valid {
		e.TargetPrice = &target.Float64
	}
	return e, nil
}

// Get returns one entry
func (r *Repository) Get(symbol string) (Entry, error) {
	row := r.db.QueryRow(`SELECT `+entryColumns+` FROM watchlist WHERE symbol = ?`, symbol)
	e, err := scanEntry(row)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get watchlist entry %s: %w", symbol, err)
	}
	return e, nil
}

// List returns entries, optionally filtered by category, holdings first
func (r *Repository) List(category string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM watchlist`
	var args []any
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY category ASC, sort_order ASC, symbol ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Upsert writes an entry, preserving created_at on update
func (r *Repository) Upsert(e Entry) error {
	var target any
	if e.TargetPrice != nil {
		target = *e.TargetPrice
	}
	now := time.Now().Unix()

	_, err := r.db.Exec(`
		INSERT INTO watchlist (symbol, stock_name, category, target_price,
			note, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			stock_name = excluded.stock_name,
			category = excluded.category,
			target_price = excluded.target_price,
			note = excluded.note,
			sort_order = excluded.sort_order,
			updated_at = excluded.updated_at`,
		e.Symbol, e.StockName, e.Category, target, e.Note, e.SortOrder, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert watchlist entry %s: %w", e.Symbol, err)
	}
	return nil
}

// SetCategory updates only the category of an existing entry, creating a
// minimal row when the symbol is not yet tracked
func (r *Repository) SetCategory(symbol, stockName, category string) error {
	now := time.Now().Unix()
	_, err := r.db.Exec(`
		INSERT INTO watchlist (symbol, stock_name, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			category = excluded.category,
			stock_name = CASE WHEN excluded.stock_name != ''
				THEN excluded.stock_name ELSE watchlist.stock_name END,
			updated_at = excluded.updated_at`,
		symbol, stockName, category, now, now)
	if err != nil {
		return fmt.Errorf("failed to set category for %s: %w", symbol, err)
	}
	return nil
}

// Delete removes an entry
func (r *Repository) Delete(symbol string) error {
	result, err := r.db.Exec(`DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist entry %s: %w", symbol, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete watchlist entry %s: %w", symbol, sql.ErrNoRows)
	}
	return nil
}

// Symbols returns every tracked symbol
func (r *Repository) Symbols() ([]string, error) {
	rows, err := r.db.Query(`SELECT symbol FROM watchlist ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
