package ledger

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/modules/portfolio"
)

// Repository handles trade log persistence in ledger.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new ledger repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "ledger").Logger(),
	}
}

const tradeColumns = `id, symbol, stock_name, action, shares, price, fee, tax,
	net_amount, realized_pnl, note, executed_at, created_at`

func scanTrade(scanner interface{ Scan(...any) error }) (Trade, error) {
	var t Trade
	var realized sql.NullFloat64
	err := scanner.Scan(&t.ID, &t.Symbol, &t.StockName, &t.Action, &t.Shares,
		&t.Price, &t.Fee, &t.Tax, &t.NetAmount, &realized, &t.Note,
		&t.ExecutedAt, &t.CreatedAt)
	if err != nil {
		return Trade{}, err
	}
	if realized.Valid {
		t.RealizedPnL = &realized.Float64
	}
	t.derive()
	return t, nil
}

// Insert persists a trade and returns it with the assigned ID
func (r *Repository) Insert(t Trade) (Trade, error) {
	var realized any
	if t.RealizedPnL != nil {
		realized = *t.RealizedPnL
	}

	result, err := r.db.Exec(`
		INSERT INTO trade_log (symbol, stock_name, action, shares, price, fee,
			tax, net_amount, realized_pnl, note, executed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Symbol, t.StockName, t.Action, t.Shares, t.Price, t.Fee, t.Tax,
		t.NetAmount, realized, t.Note, t.ExecutedAt, t.CreatedAt)
	if err != nil {
		return Trade{}, fmt.Errorf("failed to insert trade: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Trade{}, fmt.Errorf("failed to get trade ID: %w", err)
	}
	t.ID = id
	return t, nil
}

// GetByID returns one trade
func (r *Repository) GetByID(id int64) (Trade, error) {
	row := r.db.QueryRow(`SELECT `+tradeColumns+` FROM trade_log WHERE id = ?`, id)
	t, err := scanTrade(row)
	if err != nil {
		return Trade{}, fmt.Errorf("failed to get trade %d: %w", id, err)
	}
	return t, nil
}

// LatestExecutedAt returns the newest execution timestamp recorded for a
// symbol, zero when the symbol has no trades yet
func (r *Repository) LatestExecutedAt(symbol string) (int64, error) {
	var latest sql.NullInt64
	err := r.db.QueryRow(
		`SELECT MAX(executed_at) FROM trade_log WHERE symbol = ?`, symbol).Scan(&latest)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest trade time for %s: %w", symbol, err)
	}
	return latest.Int64, nil
}

// List returns trades matching the filter, newest first
func (r *Repository) List(filter ListFilter) ([]Trade, error) {
	var conditions []string
	var args []any

	if filter.Symbol != "" {
		conditions = append(conditions, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if filter.From > 0 {
		conditions = append(conditions, "executed_at >= ?")
		args = append(args, filter.From)
	}
	if filter.To > 0 {
		conditions = append(conditions, "executed_at <= ?")
		args = append(args, filter.To)
	}

	query := `SELECT ` + tradeColumns + ` FROM trade_log`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY executed_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Update rewrites a trade's editable fields, including its recomputed costs
func (r *Repository) Update(t Trade) error {
	var realized any
	if t.RealizedPnL != nil {
		realized = *t.RealizedPnL
	}

	result, err := r.db.Exec(`
		UPDATE trade_log
		SET shares = ?, price = ?, fee = ?, tax = ?, net_amount = ?,
			realized_pnl = ?, note = ?, executed_at = ?
		WHERE id = ?`,
		t.Shares, t.Price, t.Fee, t.Tax, t.NetAmount, realized, t.Note,
		t.ExecutedAt, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update trade %d: %w", t.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update trade %d: %w", t.ID, sql.ErrNoRows)
	}
	return nil
}

// SetRealizedPnL rewrites the stored realized P&L for one trade row.
// Used by replay to bring persisted values back in line with the ledger.
func (r *Repository) SetRealizedPnL(id int64, realized *float64) error {
	var val any
	if realized != nil {
		val = *realized
	}
	if _, err := r.db.Exec(`UPDATE trade_log SET realized_pnl = ? WHERE id = ?`, val, id); err != nil {
		return fmt.Errorf("failed to set realized pnl on trade %d: %w", id, err)
	}
	return nil
}

// Delete removes a trade row
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM trade_log WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete trade %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// ListChronological returns the whole ledger in execution order as position
// ledger entries. Implements the portfolio replay source.
func (r *Repository) ListChronological() ([]portfolio.LedgerEntry, error) {
	rows, err := r.db.Query(`
		SELECT symbol, stock_name, action, shares, price, fee, tax, executed_at
		FROM trade_log ORDER BY executed_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	defer rows.Close()

	var entries []portfolio.LedgerEntry
	for rows.Next() {
		var e portfolio.LedgerEntry
		if err := rows.Scan(&e.Symbol, &e.StockName, &e.Action, &e.Shares,
			&e.Price, &e.Fee, &e.Tax, &e.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// listChronologicalTrades is ListChronological with full rows, used when
// replay also needs to rewrite stored realized P&L values.
func (r *Repository) listChronologicalTrades() ([]Trade, error) {
	rows, err := r.db.Query(`
		SELECT ` + tradeColumns + ` FROM trade_log ORDER BY executed_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
