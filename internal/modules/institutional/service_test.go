package institutional

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupChipDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE institutional_data (
			symbol TEXT NOT NULL,
			date TEXT NOT NULL,
			foreign_net INTEGER NOT NULL DEFAULT 0,
			trust_net INTEGER NOT NULL DEFAULT 0,
			dealer_net INTEGER NOT NULL DEFAULT 0,
			total_net INTEGER NOT NULL DEFAULT 0,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		);
		CREATE TABLE market_institutional (
			date TEXT PRIMARY KEY,
			foreign_net INTEGER NOT NULL DEFAULT 0,
			trust_net INTEGER NOT NULL DEFAULT 0,
			dealer_net INTEGER NOT NULL DEFAULT 0,
			total_net INTEGER NOT NULL DEFAULT 0,
			fetched_at INTEGER NOT NULL
		);
		CREATE TABLE margin_data (
			symbol TEXT NOT NULL,
			date TEXT NOT NULL,
			margin_balance INTEGER NOT NULL DEFAULT 0,
			margin_change INTEGER NOT NULL DEFAULT 0,
			short_balance INTEGER NOT NULL DEFAULT 0,
			short_change INTEGER NOT NULL DEFAULT 0,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		)`)
	require.NoError(t, err)
	return db
}

type stubChipSource struct {
	chips DailyChips
}

func (s *stubChipSource) FetchDaily(ctx context.Context, date string) (DailyChips, error) {
	return s.chips, nil
}

func TestSyncPersistsChips(t *testing.T) {
	repo := NewRepository(setupChipDB(t), zerolog.Nop())
	source := &stubChipSource{chips: DailyChips{
		Date:   "2025-03-04",
		Market: &MarketFlow{Date: "2025-03-04", ForeignNet: 1200, TrustNet: -300, DealerNet: 100, TotalNet: 1000},
		Flows: []Flow{
			{Symbol: "2330", Date: "2025-03-04", ForeignNet: 500, TotalNet: 450},
		},
		Margins: []Margin{
			{Symbol: "2330", Date: "2025-03-04", MarginBalance: 20000, MarginChange: -150},
		},
	}}
	svc := NewService(repo, source, zerolog.Nop())

	require.NoError(t, svc.Sync(context.Background(), ""))

	flows, margins, err := svc.SymbolChips("2330", 10)
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, int64(500), flows[0].ForeignNet)
	require.Len(t, margins, 1)
	assert.Equal(t, int64(20000), margins[0].MarginBalance)

	market, err := svc.MarketChips(10)
	require.NoError(t, err)
	require.Len(t, market, 1)
	assert.Equal(t, int64(1000), market[0].TotalNet)
}

func TestSyncIsIdempotentPerDay(t *testing.T) {
	repo := NewRepository(setupChipDB(t), zerolog.Nop())
	source := &stubChipSource{chips: DailyChips{
		Date:  "2025-03-04",
		Flows: []Flow{{Symbol: "2330", Date: "2025-03-04", ForeignNet: 500}},
	}}
	svc := NewService(repo, source, zerolog.Nop())

	require.NoError(t, svc.Sync(context.Background(), ""))
	source.chips.Flows[0].ForeignNet = 700
	require.NoError(t, svc.Sync(context.Background(), ""))

	flows, _, err := svc.SymbolChips("2330", 10)
	require.NoError(t, err)
	require.Len(t, flows, 1, "re-sync replaces, never duplicates")
	assert.Equal(t, int64(700), flows[0].ForeignNet)
}

func TestSyncWithoutSourceFails(t *testing.T) {
	repo := NewRepository(setupChipDB(t), zerolog.Nop())
	svc := NewService(repo, nil, zerolog.Nop())
	assert.Error(t, svc.Sync(context.Background(), ""))
}
