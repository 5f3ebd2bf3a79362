package alerts

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles alert persistence in portfolio.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new alerts repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "alerts").Logger(),
	}
}

const alertColumns = `id, symbol, condition, threshold, enabled, triggered_at, note, created_at`

func scanAlert(scanner interface{ Scan(...any) error }) (Alert, error) {
	var a Alert
	var triggered sql.NullInt64
	err := scanner.Scan(&a.ID, &a.Symbol, &a.Condition, &a.Threshold,
		&a.Enabled, &triggered, &a.Note, &a.CreatedAt)
	if err != nil {
		return Alert{}, err
	}
	a.TriggeredAt = triggered.Int64
	return a, nil
}

// Insert persists a new alert
func (r *Repository) Insert(a Alert) (Alert, error) {
	result, err := r.db.Exec(`
		INSERT INTO stock_alerts (symbol, condition, threshold, enabled, note, created_at)
		VALUES (?, ?, ?, 1, ?, ?)`,
		a.Symbol, a.Condition, a.Threshold, a.Note, time.Now().Unix())
	if err != nil {
		return Alert{}, fmt.Errorf("failed to insert alert: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Alert{}, fmt.Errorf("failed to get alert ID: %w", err)
	}
	return r.Get(id)
}

// Get returns one alert
func (r *Repository) Get(id int64) (Alert, error) {
	row := r.db.QueryRow(`SELECT `+alertColumns+` FROM stock_alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if err != nil {
		return Alert{}, fmt.Errorf("failed to get alert %d: %w", id, err)
	}
	return a, nil
}

// List returns all alerts, optionally only enabled ones
func (r *Repository) List(enabledOnly bool) ([]Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM stock_alerts`
	if enabledOnly {
		query += ` WHERE enabled = 1`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkTriggered disarms an alert and stamps the trigger time
func (r *Repository) MarkTriggered(id int64, at int64) error {
	if _, err := r.db.Exec(
		`UPDATE stock_alerts SET enabled = 0, triggered_at = ? WHERE id = ?`, at, id); err != nil {
		return fmt.Errorf("failed to mark alert %d triggered: %w", id, err)
	}
	return nil
}

// SetEnabled arms or disarms an alert, clearing the trigger stamp on re-arm
func (r *Repository) SetEnabled(id int64, enabled bool) error {
	var result sql.Result
	var err error
	if enabled {
		result, err = r.db.Exec(
			`UPDATE stock_alerts SET enabled = 1, triggered_at = NULL WHERE id = ?`, id)
	} else {
		result, err = r.db.Exec(`UPDATE stock_alerts SET enabled = 0 WHERE id = ?`, id)
	}
	if err != nil {
		return fmt.Errorf("failed to set alert %d enabled=%v: %w", id, enabled, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to set alert %d enabled: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Delete removes an alert
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM stock_alerts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete alert %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
