// Package handlers provides HTTP handlers for chip data.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/modules/institutional"
)

// Handler handles chip data HTTP requests
type Handler struct {
	service *institutional.Service
	log     zerolog.Logger
}

// NewHandler creates a new institutional handler
func NewHandler(service *institutional.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "institutional").Logger(),
	}
}

func daysParam(r *http.Request) int {
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 30
}

// HandleGetMarket handles GET /api/chips/market
func (h *Handler) HandleGetMarket(w http.ResponseWriter, r *http.Request) {
	flows, err := h.service.MarketChips(daysParam(r))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get market chips")
		h.writeError(w, http.StatusInternalServerError, "Failed to get market chips")
		return
	}
	if flows == nil {
		flows = []institutional.MarketFlow{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": flows})
}

// HandleGetSymbol handles GET /api/chips/{symbol}
func (h *Handler) HandleGetSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	flows, margins, err := h.service.SymbolChips(symbol, daysParam(r))
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get symbol chips")
		h.writeError(w, http.StatusInternalServerError, "Failed to get symbol chips")
		return
	}
	if flows == nil {
		flows = []institutional.Flow{}
	}
	if margins == nil {
		margins = []institutional.Margin{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"flows":   flows,
			"margins": margins,
		},
	})
}

// HandleSync handles POST /api/chips/sync
// Manual trigger for the scheduled daily pull.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if err := h.service.Sync(r.Context(), date); err != nil {
		h.log.Error().Err(err).Msg("Chip sync failed")
		h.writeError(w, http.StatusBadGateway, "Chip sync failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "synced"})
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
