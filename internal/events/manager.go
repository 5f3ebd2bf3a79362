// Package events provides a small in-process event bus. Producers publish
// fire-and-forget; subscribers get their own copy of each event. The bus also
// keeps a bounded history for the activity feed endpoint.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event is one published occurrence
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// Handler consumes events. Handlers run on the publisher's goroutine and
// must not block.
type Handler func(Event)

const historySize = 200

// Manager is the in-process event bus
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	history  []Event
	log      zerolog.Logger
}

// NewManager creates an event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]Handler),
		log:      log.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers a handler for an event type. "*" matches everything.
func (m *Manager) Subscribe(eventType string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish delivers an event to all matching handlers and records it
func (m *Manager) Publish(eventType string, payload any) {
	event := Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Payload: payload,
		At:      time.Now(),
	}

	m.mu.Lock()
	m.history = append(m.history, event)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
	handlers := append([]Handler(nil), m.handlers[eventType]...)
	handlers = append(handlers, m.handlers["*"]...)
	m.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}

	m.log.Debug().Str("type", eventType).Str("event_id", event.ID).Msg("Event published")
}

// Recent returns up to limit most recent events, newest first
func (m *Manager) Recent(limit int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.history) {
		limit = len(m.history)
	}
	out := make([]Event, limit)
	for i := 0; i < limit; i++ {
		out[i] = m.history[len(m.history)-1-i]
	}
	return out
}
