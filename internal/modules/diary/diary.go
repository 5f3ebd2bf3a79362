// Package diary stores the daily trading journal, one entry per calendar day.
package diary

import (
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one day's journal note. AIReview holds review text produced
// outside this service; the diary only stores it.
type Entry struct {
	Date         string `json:"date"` // YYYY-MM-DD
	Content      string `json:"content"`
	Mood         string `json:"mood"`
	AIReview     string `json:"ai_review"`
	Reminder     string `json:"reminder"`
	TomorrowPlan string `json:"tomorrow_plan"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Service implements diary operations over portfolio.db
type Service struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewService creates a diary service
func NewService(db *sql.DB, log zerolog.Logger) *Service {
	return &Service{
		db:  db,
		log: log.With().Str("service", "diary").Logger(),
	}
}

const entryColumns = `date, content, mood, ai_review, reminder, tomorrow_plan,
	created_at, updated_at`

func scanEntry(scanner interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	err := scanner.Scan(&e.Date, &e.Content, &e.Mood, &e.AIReview, &e.Reminder,
		&e.TomorrowPlan, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// Save writes or overwrites the entry for a day. An empty date means today.
func (s *Service) Save(e Entry) (Entry, error) {
	if e.Date == "" {
		e.Date = time.Now().In(time.Local).Format("2006-01-02")
	}
	if !dateRe.MatchString(e.Date) {
		return Entry{}, fmt.Errorf("invalid diary date %q, want YYYY-MM-DD", e.Date)
	}

	now := time.Now().Unix()
	_, err := s.db.Exec(`
		INSERT INTO daily_diary (date, content, mood, ai_review, reminder,
			tomorrow_plan, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			content = excluded.content,
			mood = excluded.mood,
			ai_review = excluded.ai_review,
			reminder = excluded.reminder,
			tomorrow_plan = excluded.tomorrow_plan,
			updated_at = excluded.updated_at`,
		e.Date, e.Content, e.Mood, e.AIReview, e.Reminder, e.TomorrowPlan, now, now)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to save diary entry %s: %w", e.Date, err)
	}
	return s.Get(e.Date)
}

// Get returns the entry for one day
func (s *Service) Get(date string) (Entry, error) {
	row := s.db.QueryRow(`
		SELECT `+entryColumns+` FROM daily_diary WHERE date = ?`, date)
	e, err := scanEntry(row)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get diary entry %s: %w", date, err)
	}
	return e, nil
}

// List returns entries between two dates inclusive, newest first.
// Empty bounds are unbounded.
func (s *Service) List(from, to string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM daily_diary`
	var conditions []string
	var args []any
	if from != "" {
		conditions = append(conditions, "date >= ?")
		args = append(args, from)
	}
	if to != "" {
		conditions = append(conditions, "date <= ?")
		args = append(args, to)
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY date DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diary entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes one day's entry
func (s *Service) Delete(date string) error {
	result, err := s.db.Exec(`DELETE FROM daily_diary WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("failed to delete diary entry %s: %w", date, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete diary entry %s: %w", date, sql.ErrNoRows)
	}
	return nil
}
