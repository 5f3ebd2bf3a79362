package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/database"
)

// Repository handles position persistence in portfolio.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

const positionColumns = `symbol, stock_name, total_shares, avg_cost, total_cost,
	realized_pnl, buy_count, sell_count, first_buy_at, last_trade_at, updated_at`

func scanPosition(scanner interface{ Scan(...any) error }) (Position, error) {
	var p Position
	var firstBuy, lastTrade sql.NullInt64
	err := scanner.Scan(&p.Symbol, &p.StockName, &p.TotalShares, &p.AvgCost,
		&p.TotalCost, &p.RealizedPnL, &p.BuyCount, &p.SellCount,
		&firstBuy, &lastTrade, &p.UpdatedAt)
	if err != nil {
		return Position{}, err
	}
	p.FirstBuyAt = firstBuy.Int64
	p.LastTradeAt = lastTrade.Int64
	return p, nil
}

// Get returns the position for a symbol, or sql.ErrNoRows wrapped if absent
func (r *Repository) Get(symbol string) (Position, error) {
	row := r.db.QueryRow(
		`SELECT `+positionColumns+` FROM portfolio_summary WHERE symbol = ?`, symbol)

	p, err := scanPosition(row)
	if err != nil {
		return Position{}, fmt.Errorf("failed to get position %s: %w", symbol, err)
	}
	return p, nil
}

// List returns all positions ordered by symbol, including closed ones
// (zero shares but accumulated realized P&L)
func (r *Repository) List() ([]Position, error) {
	rows, err := r.db.Query(
		`SELECT ` + positionColumns + ` FROM portfolio_summary ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// CountOpen returns the number of positions with shares still held
func (r *Repository) CountOpen() (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM portfolio_summary WHERE total_shares > 0`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count open positions: %w", err)
	}
	return count, nil
}

// Upsert writes a position, replacing any existing row for the symbol
func (r *Repository) Upsert(p Position) error {
	_, err := r.db.Exec(`
		INSERT INTO portfolio_summary (symbol, stock_name, total_shares, avg_cost,
			total_cost, realized_pnl, buy_count, sell_count, first_buy_at,
			last_trade_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			stock_name = excluded.stock_name,
			total_shares = excluded.total_shares,
			avg_cost = excluded.avg_cost,
			total_cost = excluded.total_cost,
			realized_pnl = excluded.realized_pnl,
			buy_count = excluded.buy_count,
			sell_count = excluded.sell_count,
			first_buy_at = excluded.first_buy_at,
			last_trade_at = excluded.last_trade_at,
			updated_at = excluded.updated_at`,
		p.Symbol, p.StockName, p.TotalShares, p.AvgCost, p.TotalCost,
		p.RealizedPnL, p.BuyCount, p.SellCount,
		nullableUnix(p.FirstBuyAt), nullableUnix(p.LastTradeAt),
		time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", p.Symbol, err)
	}
	return nil
}

// ReplaceAll atomically swaps the entire position table for the replayed set
func (r *Repository) ReplaceAll(positions map[string]Position) error {
	now := time.Now().Unix()
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM portfolio_summary`); err != nil {
			return fmt.Errorf("failed to clear positions: %w", err)
		}
		for _, p := range positions {
			_, err := tx.Exec(`
				INSERT INTO portfolio_summary (symbol, stock_name, total_shares,
					avg_cost, total_cost, realized_pnl, buy_count, sell_count,
					first_buy_at, last_trade_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.Symbol, p.StockName, p.TotalShares, p.AvgCost, p.TotalCost,
				p.RealizedPnL, p.BuyCount, p.SellCount,
				nullableUnix(p.FirstBuyAt), nullableUnix(p.LastTradeAt), now)
			if err != nil {
				return fmt.Errorf("failed to insert replayed position %s: %w", p.Symbol, err)
			}
		}
		return nil
	})
}

func nullableUnix(ts int64) any {
	if ts == 0 {
		return nil
	}
	return ts
}
