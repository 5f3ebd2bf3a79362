// Package handlers provides HTTP handlers for portfolio views.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
	"github.com/SeanFuture9999/stock-game1/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.Service
	ledger  portfolio.TradeSource
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler. ledger is the replay source for
// the manual rebuild endpoint.
func NewHandler(service *portfolio.Service, ledger portfolio.TradeSource, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		ledger:  ledger,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetSnapshot handles GET /api/portfolio
func (h *Handler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build portfolio snapshot")
		h.writeError(w, http.StatusInternalServerError, "Failed to build portfolio snapshot")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(snap))
}

// HandleGetDistribution handles GET /api/portfolio/distribution
func (h *Handler) HandleGetDistribution(w http.ResponseWriter, r *http.Request) {
	slices, err := h.service.Distribution()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute distribution")
		h.writeError(w, http.StatusInternalServerError, "Failed to compute distribution")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(slices))
}

// HandleGetPosition handles GET /api/portfolio/positions/{symbol}
func (h *Handler) HandleGetPosition(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	p, err := h.service.Position(symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get position")
		h.writeError(w, http.StatusInternalServerError, "Failed to get position")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(p))
}

// HandleReplay handles POST /api/portfolio/replay
// Manual trigger for the full position rebuild from the trade ledger.
func (h *Handler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Replay(h.ledger); err != nil {
		if errors.Is(err, domain.ErrLedgerReplay) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Ledger replay failed")
		h.writeError(w, http.StatusInternalServerError, "Ledger replay failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "rebuilt"})
}

func envelope(data any) map[string]any {
	return map[string]any{
		"data": data,
		"metadata": map[string]any{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]any{"error": message})
}
