// Package handlers provides HTTP handlers for quote snapshots.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/modules/quotes"
)

// Handler handles quote HTTP requests
type Handler struct {
	store   *quotes.Store
	symbols quotes.SymbolSource
	log     zerolog.Logger
}

// NewHandler creates a new quotes handler
func NewHandler(store *quotes.Store, symbols quotes.SymbolSource, log zerolog.Logger) *Handler {
	return &Handler{
		store:   store,
		symbols: symbols,
		log:     log.With().Str("handler", "quotes").Logger(),
	}
}

// HandleGetAll handles GET /api/quotes
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	snapshots := h.store.All()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"quotes": snapshots,
			"count":  len(snapshots),
		},
		"metadata": map[string]any{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetQuote handles GET /api/quotes/{symbol}
func (h *Handler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	snap, ok := h.store.Get(symbol)
	if !ok {
		h.writeError(w, http.StatusNotFound, "No snapshot for symbol")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": snap})
}

// HandleRefresh handles POST /api/quotes/refresh
// Manual trigger for the same refresh the scheduler runs.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.symbols.ActiveSymbols()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to collect active symbols")
		h.writeError(w, http.StatusInternalServerError, "Failed to collect active symbols")
		return
	}

	if err := h.store.Refresh(r.Context(), symbols); err != nil {
		h.log.Error().Err(err).Msg("Quote refresh failed")
		h.writeError(w, http.StatusBadGateway, "Quote refresh failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "refreshed",
		"symbols": len(symbols),
	})
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
