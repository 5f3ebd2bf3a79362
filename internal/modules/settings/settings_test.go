package settings

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsService(t *testing.T) *Service {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`)
	require.NoError(t, err)
	return NewService(db, zerolog.Nop())
}

func TestGetFallback(t *testing.T) {
	svc := newSettingsService(t)

	value, err := svc.Get("theme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "dark", value)
}

func TestSetAndGet(t *testing.T) {
	svc := newSettingsService(t)

	require.NoError(t, svc.Set("theme", "light"))
	require.NoError(t, svc.Set("theme", "dark"))

	value, err := svc.Get("theme", "")
	require.NoError(t, err)
	assert.Equal(t, "dark", value)

	all, err := svc.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSetRejectsEmptyKey(t *testing.T) {
	svc := newSettingsService(t)
	assert.Error(t, svc.Set("", "value"))
}

func TestDelete(t *testing.T) {
	svc := newSettingsService(t)
	require.NoError(t, svc.Set("theme", "dark"))

	require.NoError(t, svc.Delete("theme"))
	assert.ErrorIs(t, svc.Delete("theme"), sql.ErrNoRows)
}
