// Package handlers provides HTTP handlers for app settings.
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/modules/settings"
)

// Handler handles settings HTTP requests
type Handler struct {
	service *settings.Service
	log     zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "settings").Logger(),
	}
}

// HandleGetAll handles GET /api/settings
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.All()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list settings")
		h.writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}
	if all == nil {
		all = []settings.Setting{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": all})
}

type setRequest struct {
	Value string `json:"value"`
}

// HandleSet handles PUT /api/settings/{key}
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Set(key, req.Value); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": req.Value})
}

// HandleDelete handles DELETE /api/settings/{key}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.service.Delete(key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		h.log.Error().Err(err).Msg("Failed to delete setting")
		h.writeError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": key})
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
