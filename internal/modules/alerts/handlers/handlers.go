// Package handlers provides HTTP handlers for price alerts.
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/modules/alerts"
)

// Handler handles alert HTTP requests
type Handler struct {
	service *alerts.Service
	log     zerolog.Logger
}

// NewHandler creates a new alerts handler
func NewHandler(service *alerts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "alerts").Logger(),
	}
}

// HandleList handles GET /api/alerts
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list alerts")
		h.writeError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}
	if list == nil {
		list = []alerts.Alert{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"alerts": list,
			"count":  len(list),
		},
	})
}

// HandleCreate handles POST /api/alerts
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req alerts.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	alert, err := h.service.Create(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"data": alert})
}

type enableRequest struct {
	Enabled bool `json:"enabled"`
}

// HandleSetEnabled handles PUT /api/alerts/{id}/enabled
func (h *Handler) HandleSetEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := h.alertID(w, r)
	if !ok {
		return
	}

	var req enableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SetEnabled(id, req.Enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.log.Error().Err(err).Msg("Failed to update alert")
		h.writeError(w, http.StatusInternalServerError, "Failed to update alert")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"id": id, "enabled": req.Enabled})
}

// HandleDelete handles DELETE /api/alerts/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.alertID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.log.Error().Err(err).Msg("Failed to delete alert")
		h.writeError(w, http.StatusInternalServerError, "Failed to delete alert")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// HandleCheck handles POST /api/alerts/check
// Manual trigger for the same evaluation the scheduler runs.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	fired, err := h.service.CheckAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Alert check failed")
		h.writeError(w, http.StatusInternalServerError, "Alert check failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"fired": fired})
}

func (h *Handler) alertID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid alert ID")
		return 0, false
	}
	return id, true
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
