package quotes

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

func setupCacheDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE stock_snapshots (
			symbol TEXT PRIMARY KEY,
			stock_name TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL,
			change REAL NOT NULL DEFAULT 0,
			change_percent REAL NOT NULL DEFAULT 0,
			volume INTEGER NOT NULL DEFAULT 0,
			open REAL NOT NULL DEFAULT 0,
			high REAL NOT NULL DEFAULT 0,
			low REAL NOT NULL DEFAULT 0,
			prev_close REAL NOT NULL DEFAULT 0,
			fetched_at INTEGER NOT NULL
		)`)
	require.NoError(t, err)
	return db
}

// stubSource returns canned snapshots or an error
type stubSource struct {
	snapshots []Snapshot
	err       error
	calls     int
}

func (s *stubSource) FetchQuotes(ctx context.Context, symbols []string) ([]Snapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshots, nil
}

func TestStoreProvidesQuotes(t *testing.T) {
	store := NewStore(nil, nil, zerolog.Nop())

	_, err := store.GetCurrentPrice("2330")
	assert.ErrorIs(t, err, domain.ErrQuoteUnavailable)

	require.NoError(t, store.Put(Snapshot{Symbol: "2330", Price: 585.0}))

	price, err := store.GetCurrentPrice("2330")
	require.NoError(t, err)
	assert.Equal(t, 585.0, price)

	snap, ok := store.Get("2330")
	require.True(t, ok)
	assert.NotZero(t, snap.FetchedAt, "store stamps unfetched snapshots")
}

func TestStoreNormalizesSymbols(t *testing.T) {
	store := NewStore(nil, nil, zerolog.Nop())
	require.NoError(t, store.Put(Snapshot{Symbol: " 2330 ", Price: 100}))

	_, ok := store.Get("2330")
	assert.True(t, ok)
}

func TestRefreshStoresFetchedSnapshots(t *testing.T) {
	source := &stubSource{snapshots: []Snapshot{
		{Symbol: "2330", Price: 590, FetchedAt: 1000},
		{Symbol: "0050", Price: 140, FetchedAt: 1000},
	}}
	store := NewStore(nil, source, zerolog.Nop())

	require.NoError(t, store.Refresh(context.Background(), []string{"2330", "0050"}))
	assert.Equal(t, 1, source.calls)
	assert.Len(t, store.All(), 2)
}

func TestRefreshFailureKeepsOldSnapshots(t *testing.T) {
	source := &stubSource{err: errors.New("feed down")}
	store := NewStore(nil, source, zerolog.Nop())
	require.NoError(t, store.Put(Snapshot{Symbol: "2330", Price: 585}))

	err := store.Refresh(context.Background(), []string{"2330"})
	require.Error(t, err)

	price, err := store.GetCurrentPrice("2330")
	require.NoError(t, err)
	assert.Equal(t, 585.0, price, "stale snapshot survives a failed refresh")
}

func TestWarmLoadsPersistedSnapshots(t *testing.T) {
	db := setupCacheDB(t)
	repo := NewRepository(db, zerolog.Nop())

	writer := NewStore(repo, nil, zerolog.Nop())
	require.NoError(t, writer.Put(
		Snapshot{Symbol: "2330", Price: 585, FetchedAt: 1000},
		Snapshot{Symbol: "0050", Price: 140, FetchedAt: 1000},
	))

	// Fresh store over the same database sees the persisted snapshots
	reader := NewStore(repo, nil, zerolog.Nop())
	require.NoError(t, reader.Warm())

	price, err := reader.GetCurrentPrice("0050")
	require.NoError(t, err)
	assert.Equal(t, 140.0, price)
}
