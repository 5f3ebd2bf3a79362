package portfolio

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE portfolio_summary (
			symbol TEXT PRIMARY KEY,
			stock_name TEXT NOT NULL DEFAULT '',
			total_shares INTEGER NOT NULL DEFAULT 0,
			avg_cost REAL NOT NULL DEFAULT 0,
			total_cost REAL NOT NULL DEFAULT 0,
			realized_pnl REAL NOT NULL DEFAULT 0,
			buy_count INTEGER NOT NULL DEFAULT 0,
			sell_count INTEGER NOT NULL DEFAULT 0,
			first_buy_at INTEGER,
			last_trade_at INTEGER,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`)
	require.NoError(t, err)
	return db
}

// fixedQuotes serves canned prices for snapshot tests
type fixedQuotes map[string]float64

func (q fixedQuotes) GetCurrentPrice(symbol string) (float64, error) {
	if price, ok := q[symbol]; ok {
		return price, nil
	}
	return 0, fmt.Errorf("%w: %s", domain.ErrQuoteUnavailable, symbol)
}

// sliceSource replays a fixed entry list
type sliceSource []LedgerEntry

func (s sliceSource) ListChronological() ([]LedgerEntry, error) { return s, nil }

func newTestService(t *testing.T, quotes domain.QuoteProvider) *Service {
	t.Helper()
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	return NewService(repo, quotes, zerolog.Nop())
}

func TestStageAndCommit(t *testing.T) {
	svc := newTestService(t, nil)

	staged, realized, err := svc.Stage(buyEntry("2330", 1000, 100, 1000))
	require.NoError(t, err)
	assert.Nil(t, realized, "buys have no realized P&L")
	assert.Equal(t, int64(1000), staged.TotalShares)

	// Nothing persisted until commit
	p, err := svc.Position("2330")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.TotalShares)

	require.NoError(t, svc.Commit(staged))

	p, err = svc.Position("2330")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p.TotalShares)
	assert.Equal(t, 100.0, p.AvgCost)
}

func TestStageSellReturnsRealized(t *testing.T) {
	svc := newTestService(t, nil)

	staged, _, err := svc.Stage(buyEntry("2330", 1000, 100, 1000))
	require.NoError(t, err)
	require.NoError(t, svc.Commit(staged))

	staged, realized, err := svc.Stage(sellEntry("2330", 1000, 110, 20, 33, 2000))
	require.NoError(t, err)
	require.NotNil(t, realized)
	assert.Equal(t, 9947.0, *realized)
	assert.Equal(t, int64(0), staged.TotalShares)
}

func TestStageOversellRejected(t *testing.T) {
	svc := newTestService(t, nil)

	staged, _, err := svc.Stage(buyEntry("2330", 100, 100, 1000))
	require.NoError(t, err)
	require.NoError(t, svc.Commit(staged))

	_, _, err = svc.Stage(sellEntry("2330", 500, 110, 10, 33, 2000))
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)
}

func TestSnapshotWithQuotes(t *testing.T) {
	quotes := fixedQuotes{"2330": 120.0}
	svc := newTestService(t, quotes)

	for _, e := range []LedgerEntry{
		buyEntry("2330", 1000, 100, 1000),
		buyEntry("0050", 2000, 50, 1500),
	} {
		staged, _, err := svc.Stage(e)
		require.NoError(t, err)
		require.NoError(t, svc.Commit(staged))
	}

	snap, err := svc.Snapshot()
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 2)
	assert.Equal(t, 2, snap.TotalHoldings)
	assert.Equal(t, 1, snap.QuotedHoldings, "0050 has no quote")
	assert.Equal(t, 200000.0, snap.TotalCost)
	assert.Equal(t, 120000.0, snap.TotalMarketValue)
	assert.Equal(t, 20000.0, snap.TotalUnrealizedPnL)

	for _, h := range snap.Holdings {
		switch h.Symbol {
		case "2330":
			require.NotNil(t, h.UnrealizedPnL)
			assert.Equal(t, 20000.0, *h.UnrealizedPnL)
			require.NotNil(t, h.ReturnPercent)
			assert.InDelta(t, 20.0, *h.ReturnPercent, 1e-9)
		case "0050":
			assert.Nil(t, h.UnrealizedPnL, "unquoted holding reports nil, not zero")
			assert.Nil(t, h.MarketValue)
		}
	}
}

func TestDistributionSumsToHundred(t *testing.T) {
	quotes := fixedQuotes{"2330": 120.0, "0050": 60.0, "2412": 30.0}
	svc := newTestService(t, quotes)

	for _, e := range []LedgerEntry{
		buyEntry("2330", 1000, 100, 1000),
		buyEntry("0050", 3000, 50, 1500),
		buyEntry("2412", 700, 30, 2000),
	} {
		staged, _, err := svc.Stage(e)
		require.NoError(t, err)
		require.NoError(t, svc.Commit(staged))
	}

	slices, err := svc.Distribution()
	require.NoError(t, err)
	require.Len(t, slices, 3)

	var total float64
	for _, sl := range slices {
		assert.Greater(t, sl.Percent, 0.0)
		total += sl.Percent
	}
	assert.InDelta(t, 100.0, total, 0.1)

	// Sorted by market value descending
	assert.Equal(t, "0050", slices[0].Symbol)
}

func TestDistributionFallsBackToCost(t *testing.T) {
	quotes := fixedQuotes{"2330": 120.0}
	svc := newTestService(t, quotes)

	for _, e := range []LedgerEntry{
		buyEntry("2330", 1000, 100, 1000),
		buyEntry("0050", 2000, 40, 1500),
	} {
		staged, _, err := svc.Stage(e)
		require.NoError(t, err)
		require.NoError(t, svc.Commit(staged))
	}

	slices, err := svc.Distribution()
	require.NoError(t, err)
	require.Len(t, slices, 2)

	var total float64
	for _, sl := range slices {
		total += sl.Percent
		if sl.Symbol == "0050" {
			assert.True(t, sl.Estimated, "unquoted holding valued at cost")
			assert.Equal(t, 80000.0, sl.MarketValue)
		} else {
			assert.False(t, sl.Estimated)
			assert.Equal(t, 120000.0, sl.MarketValue)
		}
	}
	assert.InDelta(t, 100.0, total, 0.1)
}

func TestOpenCount(t *testing.T) {
	svc := newTestService(t, nil)

	for _, e := range []LedgerEntry{
		buyEntry("2330", 1000, 100, 1000),
		buyEntry("0050", 2000, 50, 1500),
	} {
		staged, _, err := svc.Stage(e)
		require.NoError(t, err)
		require.NoError(t, svc.Commit(staged))
	}
	staged, _, err := svc.Stage(sellEntry("2330", 1000, 110, 20, 33, 2000))
	require.NoError(t, err)
	require.NoError(t, svc.Commit(staged))

	count, err := svc.OpenCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count, "closed position no longer counts")
}

func TestReplayReplacesState(t *testing.T) {
	svc := newTestService(t, nil)

	// Seed a position that the replay source does not contain
	staged, _, err := svc.Stage(buyEntry("9999", 100, 10, 500))
	require.NoError(t, err)
	require.NoError(t, svc.Commit(staged))

	source := sliceSource{
		buyEntry("2330", 1000, 100, 1000),
		sellEntry("2330", 500, 130, 55, 195, 2000),
	}
	require.NoError(t, svc.Replay(source))

	p, err := svc.Position("2330")
	require.NoError(t, err)
	assert.Equal(t, int64(500), p.TotalShares)
	assert.Equal(t, 100.0, p.AvgCost)

	gone, err := svc.Position("9999")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gone.TotalShares, "stale position removed by replay")
}

func TestDistributionEmptyWhenFlat(t *testing.T) {
	svc := newTestService(t, fixedQuotes{"2330": 120.0})

	// No positions at all
	slices, err := svc.Distribution()
	require.NoError(t, err)
	assert.Empty(t, slices)

	// A fully closed position must not reappear in the distribution
	staged, _, err := svc.Stage(buyEntry("2330", 1000, 100, 1000))
	require.NoError(t, err)
	require.NoError(t, svc.Commit(staged))
	staged, _, err = svc.Stage(sellEntry("2330", 1000, 110, 20, 33, 2000))
	require.NoError(t, err)
	require.NoError(t, svc.Commit(staged))

	slices, err = svc.Distribution()
	require.NoError(t, err)
	assert.Empty(t, slices)
}

func TestServiceReplayIdempotent(t *testing.T) {
	svc := newTestService(t, nil)

	source := sliceSource{
		buyEntry("2330", 1000, 100, 1000),
		sellEntry("2330", 500, 130, 55, 195, 2000),
	}
	require.NoError(t, svc.Replay(source))
	first, err := svc.Position("2330")
	require.NoError(t, err)

	require.NoError(t, svc.Replay(source))
	second, err := svc.Position("2330")
	require.NoError(t, err)

	// UpdatedAt is write time, everything else must be identical
	second.UpdatedAt = first.UpdatedAt
	assert.Equal(t, first, second)
}

func TestReplaySurfacesInconsistency(t *testing.T) {
	svc := newTestService(t, nil)

	source := sliceSource{sellEntry("2330", 100, 110, 10, 33, 1000)}
	err := svc.Replay(source)
	assert.ErrorIs(t, err, domain.ErrLedgerReplay)
}
