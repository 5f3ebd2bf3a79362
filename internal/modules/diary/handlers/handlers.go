// Package handlers provides HTTP handlers for the trading diary.
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/modules/diary"
)

// Handler handles diary HTTP requests
type Handler struct {
	service *diary.Service
	log     zerolog.Logger
}

// NewHandler creates a new diary handler
func NewHandler(service *diary.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "diary").Logger(),
	}
}

// HandleSave handles PUT /api/diary
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req diary.Entry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.service.Save(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": entry})
}

// HandleList handles GET /api/diary
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list diary entries")
		h.writeError(w, http.StatusInternalServerError, "Failed to list diary entries")
		return
	}
	if entries == nil {
		entries = []diary.Entry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"entries": entries,
			"count":   len(entries),
		},
	})
}

// HandleGet handles GET /api/diary/{date}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.Get(chi.URLParam(r, "date"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "No entry for that day")
			return
		}
		h.log.Error().Err(err).Msg("Failed to get diary entry")
		h.writeError(w, http.StatusInternalServerError, "Failed to get diary entry")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": entry})
}

// HandleDelete handles DELETE /api/diary/{date}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if err := h.service.Delete(date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "No entry for that day")
			return
		}
		h.log.Error().Err(err).Msg("Failed to delete diary entry")
		h.writeError(w, http.StatusInternalServerError, "Failed to delete diary entry")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": date})
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
