package alerts

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

func setupAlertsDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE stock_alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			condition TEXT NOT NULL,
			threshold REAL NOT NULL,
			enabled INTEGER NOT NULL DEFAULT 1,
			triggered_at INTEGER,
			note TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL DEFAULT 0
		)`)
	require.NoError(t, err)
	return db
}

type stubQuotes map[string]float64

func (q stubQuotes) GetCurrentPrice(symbol string) (float64, error) {
	if p, ok := q[symbol]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: %s", domain.ErrQuoteUnavailable, symbol)
}

type recordingNotifier struct {
	titles []string
}

func (n *recordingNotifier) Notify(title, message string) error {
	n.titles = append(n.titles, title)
	return nil
}

func newAlertsService(t *testing.T, quotes stubQuotes) (*Service, *recordingNotifier) {
	t.Helper()
	repo := NewRepository(setupAlertsDB(t), zerolog.Nop())
	notifier := &recordingNotifier{}
	return NewService(repo, quotes, notifier, nil, zerolog.Nop()), notifier
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newAlertsService(t, nil)

	_, err := svc.Create(CreateRequest{Symbol: "", Condition: ConditionAbove, Threshold: 100})
	assert.Error(t, err)

	_, err = svc.Create(CreateRequest{Symbol: "2330", Condition: "crosses", Threshold: 100})
	assert.Error(t, err)

	_, err = svc.Create(CreateRequest{Symbol: "2330", Condition: ConditionAbove, Threshold: 0})
	assert.Error(t, err)

	a, err := svc.Create(CreateRequest{Symbol: "2330", Condition: ConditionAbove, Threshold: 600})
	require.NoError(t, err)
	assert.True(t, a.Enabled)
}

func TestCheckAllFiresOnce(t *testing.T) {
	quotes := stubQuotes{"2330": 610}
	svc, notifier := newAlertsService(t, quotes)

	_, err := svc.Create(CreateRequest{Symbol: "2330", Condition: ConditionAbove, Threshold: 600})
	require.NoError(t, err)

	fired, err := svc.CheckAll()
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Len(t, notifier.titles, 1)

	// Alert is disarmed, the next cycle stays quiet
	fired, err = svc.CheckAll()
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
	assert.Len(t, notifier.titles, 1)

	alerts, err := svc.List()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].Enabled)
	assert.NotZero(t, alerts[0].TriggeredAt)
}

func TestBelowCondition(t *testing.T) {
	quotes := stubQuotes{"0050": 130}
	svc, _ := newAlertsService(t, quotes)

	_, err := svc.Create(CreateRequest{Symbol: "0050", Condition: ConditionBelow, Threshold: 135})
	require.NoError(t, err)
	_, err = svc.Create(CreateRequest{Symbol: "0050", Condition: ConditionBelow, Threshold: 120})
	require.NoError(t, err)

	fired, err := svc.CheckAll()
	require.NoError(t, err)
	assert.Equal(t, 1, fired, "only the crossed threshold fires")
}

func TestMissingQuoteSkipsAlert(t *testing.T) {
	svc, notifier := newAlertsService(t, stubQuotes{})

	_, err := svc.Create(CreateRequest{Symbol: "2330", Condition: ConditionAbove, Threshold: 600})
	require.NoError(t, err)

	fired, err := svc.CheckAll()
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
	assert.Empty(t, notifier.titles)

	// Alert stays armed for the next cycle
	alerts, err := svc.List()
	require.NoError(t, err)
	assert.True(t, alerts[0].Enabled)
}

func TestReenableRearmsAlert(t *testing.T) {
	quotes := stubQuotes{"2330": 610}
	svc, notifier := newAlertsService(t, quotes)

	a, err := svc.Create(CreateRequest{Symbol: "2330", Condition: ConditionAbove, Threshold: 600})
	require.NoError(t, err)

	_, err = svc.CheckAll()
	require.NoError(t, err)
	require.NoError(t, svc.SetEnabled(a.ID, true))

	fired, err := svc.CheckAll()
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Len(t, notifier.titles, 2)
}
