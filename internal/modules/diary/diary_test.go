package diary

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiaryService(t *testing.T) *Service {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE daily_diary (
			date TEXT PRIMARY KEY,
			content TEXT NOT NULL DEFAULT '',
			mood TEXT NOT NULL DEFAULT '',
			ai_review TEXT NOT NULL DEFAULT '',
			reminder TEXT NOT NULL DEFAULT '',
			tomorrow_plan TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`)
	require.NoError(t, err)
	return NewService(db, zerolog.Nop())
}

func TestSaveAndGet(t *testing.T) {
	svc := newDiaryService(t)

	entry, err := svc.Save(Entry{
		Date: "2025-03-04", Content: "Took profit on 2330 too early", Mood: "annoyed",
		TomorrowPlan: "Wait for the pullback",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04", entry.Date)
	assert.Equal(t, "annoyed", entry.Mood)
	assert.Equal(t, "Wait for the pullback", entry.TomorrowPlan)

	// Saving again overwrites the same day
	entry, err = svc.Save(Entry{
		Date: "2025-03-04", Content: "Revised: exit was fine", Mood: "calm",
		AIReview: "Exit aligned with the plan",
	})
	require.NoError(t, err)
	assert.Equal(t, "Revised: exit was fine", entry.Content)
	assert.Equal(t, "Exit aligned with the plan", entry.AIReview)

	entries, err := svc.List("", "")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveRejectsBadDate(t *testing.T) {
	svc := newDiaryService(t)
	_, err := svc.Save(Entry{Date: "03/04/2025", Content: "note"})
	assert.Error(t, err)
}

func TestListRange(t *testing.T) {
	svc := newDiaryService(t)
	for _, d := range []string{"2025-03-01", "2025-03-05", "2025-03-10"} {
		_, err := svc.Save(Entry{Date: d, Content: "note " + d})
		require.NoError(t, err)
	}

	entries, err := svc.List("2025-03-02", "2025-03-09")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2025-03-05", entries[0].Date)

	all, err := svc.List("", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-03-10", all[0].Date, "newest first")
}

func TestDelete(t *testing.T) {
	svc := newDiaryService(t)
	_, err := svc.Save(Entry{Date: "2025-03-04", Content: "note"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete("2025-03-04"))
	assert.ErrorIs(t, svc.Delete("2025-03-04"), sql.ErrNoRows)
}
