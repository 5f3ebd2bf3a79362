package alerts

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

// EventPublisher broadcasts triggered alerts
type EventPublisher interface {
	Publish(eventType string, payload any)
}

// EventAlertTriggered is emitted when a threshold fires
const EventAlertTriggered = "alert.triggered"

// Service manages alerts and runs the periodic check
type Service struct {
	repo     *Repository
	quotes   domain.QuoteProvider
	notifier domain.Notifier
	events   EventPublisher
	log      zerolog.Logger
}

// NewService creates an alerts service. notifier and events may be nil.
func NewService(repo *Repository, quotes domain.QuoteProvider, notifier domain.Notifier,
	events EventPublisher, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		quotes:   quotes,
		notifier: notifier,
		events:   events,
		log:      log.With().Str("service", "alerts").Logger(),
	}
}

// Create validates and persists a new alert
func (s *Service) Create(req CreateRequest) (Alert, error) {
	symbol := domain.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return Alert{}, errors.New("alert symbol is required")
	}
	if req.Condition != ConditionAbove && req.Condition != ConditionBelow {
		return Alert{}, fmt.Errorf("alert condition must be %q or %q, got %q",
			ConditionAbove, ConditionBelow, req.Condition)
	}
	if req.Threshold <= 0 {
		return Alert{}, fmt.Errorf("alert threshold must be positive, got %v", req.Threshold)
	}

	return s.repo.Insert(Alert{
		Symbol:    symbol,
		Condition: req.Condition,
		Threshold: req.Threshold,
		Note:      req.Note,
	})
}

// List returns all alerts
func (s *Service) List() ([]Alert, error) {
	return s.repo.List(false)
}

// SetEnabled arms or disarms an alert
func (s *Service) SetEnabled(id int64, enabled bool) error {
	return s.repo.SetEnabled(id, enabled)
}

// Delete removes an alert
func (s *Service) Delete(id int64) error {
	return s.repo.Delete(id)
}

// matches reports whether a price satisfies the alert condition
func matches(a Alert, price float64) bool {
	switch a.Condition {
	case ConditionAbove:
		return price >= a.Threshold
	case ConditionBelow:
		return price <= a.Threshold
	}
	return false
}

// CheckAll evaluates every armed alert against the quote store. Fired alerts
// disarm themselves so one crossing produces one notification. Symbols
// without a quote are skipped silently, the next cycle retries.
func (s *Service) CheckAll() (int, error) {
	armed, err := s.repo.List(true)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, a := range armed {
		price, err := s.quotes.GetCurrentPrice(a.Symbol)
		if err != nil {
			if !errors.Is(err, domain.ErrQuoteUnavailable) {
				s.log.Warn().Err(err).Str("symbol", a.Symbol).Msg("Quote lookup failed during alert check")
			}
			continue
		}
		if !matches(a, price) {
			continue
		}

		now := time.Now().Unix()
		if err := s.repo.MarkTriggered(a.ID, now); err != nil {
			s.log.Error().Err(err).Int64("alert_id", a.ID).Msg("Failed to disarm triggered alert")
			continue
		}
		fired++

		a.Enabled = false
		a.TriggeredAt = now
		if s.events != nil {
			s.events.Publish(EventAlertTriggered, a)
		}
		if s.notifier != nil {
			title := fmt.Sprintf("Price alert: %s %s %.2f", a.Symbol, a.Condition, a.Threshold)
			message := fmt.Sprintf("%s is now at %.2f", a.Symbol, price)
			if err := s.notifier.Notify(title, message); err != nil {
				s.log.Warn().Err(err).Int64("alert_id", a.ID).Msg("Alert notification failed")
			}
		}
		s.log.Info().Str("symbol", a.Symbol).Str("condition", a.Condition).
			Float64("threshold", a.Threshold).Float64("price", price).
			Msg("Price alert triggered")
	}
	return fired, nil
}
