// Package handlers provides HTTP handlers for performance views.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/modules/performance"
)

// Handler handles performance HTTP requests
type Handler struct {
	service *performance.Service
	log     zerolog.Logger
}

// NewHandler creates a new performance handler
func NewHandler(service *performance.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "performance").Logger(),
	}
}

// HandleGetDaily handles GET /api/performance/daily
func (h *Handler) HandleGetDaily(w http.ResponseWriter, r *http.Request) {
	var from, to int64
	if v := r.URL.Query().Get("from"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			from = ts
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			to = ts
		}
	}

	days, err := h.service.Daily(from, to)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute daily P&L")
		h.writeError(w, http.StatusInternalServerError, "Failed to compute daily P&L")
		return
	}
	if days == nil {
		days = []performance.DailyPnL{}
	}
	h.writeJSON(w, http.StatusOK, envelope(days))
}

// HandleGetMonthly handles GET /api/performance/monthly
func (h *Handler) HandleGetMonthly(w http.ResponseWriter, r *http.Request) {
	months, err := h.service.Monthly()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute monthly rollup")
		h.writeError(w, http.StatusInternalServerError, "Failed to compute monthly rollup")
		return
	}
	if months == nil {
		months = []performance.MonthlyStats{}
	}
	h.writeJSON(w, http.StatusOK, envelope(months))
}

// HandleGetSummary handles GET /api/performance/summary
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.OverallSummary()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute performance summary")
		h.writeError(w, http.StatusInternalServerError, "Failed to compute performance summary")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(summary))
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
