package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAndSubscribe(t *testing.T) {
	m := NewManager(zerolog.Nop())

	var got []Event
	m.Subscribe("trade.recorded", func(e Event) { got = append(got, e) })

	m.Publish("trade.recorded", map[string]any{"symbol": "2330"})
	m.Publish("alert.triggered", nil)

	require.Len(t, got, 1)
	assert.Equal(t, "trade.recorded", got[0].Type)
	assert.NotEmpty(t, got[0].ID)
}

func TestWildcardSubscription(t *testing.T) {
	m := NewManager(zerolog.Nop())

	count := 0
	m.Subscribe("*", func(e Event) { count++ })

	m.Publish("trade.recorded", nil)
	m.Publish("alert.triggered", nil)
	assert.Equal(t, 2, count)
}

func TestRecentNewestFirst(t *testing.T) {
	m := NewManager(zerolog.Nop())

	m.Publish("a", nil)
	m.Publish("b", nil)
	m.Publish("c", nil)

	recent := m.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Type)
	assert.Equal(t, "b", recent[1].Type)

	all := m.Recent(0)
	assert.Len(t, all, 3)
}

func TestHistoryBounded(t *testing.T) {
	m := NewManager(zerolog.Nop())
	for i := 0; i < historySize+50; i++ {
		m.Publish("tick", i)
	}
	assert.Len(t, m.Recent(0), historySize)
}
