// Package handlers provides HTTP handlers for watchlist operations.
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
	"github.com/SeanFuture9999/stock-game1/internal/modules/watchlist"
)

// Handler handles watchlist HTTP requests
type Handler struct {
	service *watchlist.Service
	log     zerolog.Logger
}

// NewHandler creates a new watchlist handler
func NewHandler(service *watchlist.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "watchlist").Logger(),
	}
}

// HandleList handles GET /api/watchlist
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.URL.Query().Get("category"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list watchlist")
		h.writeError(w, http.StatusInternalServerError, "Failed to list watchlist")
		return
	}
	if entries == nil {
		entries = []watchlist.Entry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"entries": entries,
			"count":   len(entries),
		},
	})
}

// HandleAdd handles POST /api/watchlist
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req watchlist.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.service.Add(req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTradeInput) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to add watchlist entry")
		h.writeError(w, http.StatusInternalServerError, "Failed to add watchlist entry")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"data": entry})
}

// HandleGet handles GET /api/watchlist/{symbol}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.Get(chi.URLParam(r, "symbol"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "Symbol not tracked")
			return
		}
		h.log.Error().Err(err).Msg("Failed to get watchlist entry")
		h.writeError(w, http.StatusInternalServerError, "Failed to get watchlist entry")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": entry})
}

// HandleRemove handles DELETE /api/watchlist/{symbol}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := h.service.Remove(symbol); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "Symbol not tracked")
			return
		}
		h.log.Error().Err(err).Msg("Failed to remove watchlist entry")
		h.writeError(w, http.StatusInternalServerError, "Failed to remove watchlist entry")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"removed": symbol})
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
