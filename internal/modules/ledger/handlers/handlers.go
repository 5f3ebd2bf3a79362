// Package handlers provides HTTP handlers for trade ledger operations.
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
	"github.com/SeanFuture9999/stock-game1/internal/modules/ledger"
)

// Handler handles trade ledger HTTP requests
type Handler struct {
	service *ledger.Service
	log     zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(service *ledger.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "ledger").Logger(),
	}
}

// HandleRecordTrade handles POST /api/trades
func (h *Handler) HandleRecordTrade(w http.ResponseWriter, r *http.Request) {
	var req ledger.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trade, err := h.service.Record(req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to record trade")
		return
	}

	h.writeJSON(w, http.StatusCreated, responseEnvelope(trade))
}

// HandlePreviewTrade handles POST /api/trades/preview
func (h *Handler) HandlePreviewTrade(w http.ResponseWriter, r *http.Request) {
	var req ledger.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	breakdown, err := h.service.Preview(req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to preview trade")
		return
	}

	h.writeJSON(w, http.StatusOK, responseEnvelope(breakdown))
}

// HandleListTrades handles GET /api/trades
func (h *Handler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	filter := ledger.ListFilter{
		Symbol: r.URL.Query().Get("symbol"),
		Limit:  100,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.From = ts
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.To = ts
		}
	}

	trades, err := h.service.List(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list trades")
		h.writeError(w, http.StatusInternalServerError, "Failed to list trades")
		return
	}
	if trades == nil {
		trades = []ledger.Trade{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"trades": trades,
			"count":  len(trades),
		},
		"metadata": map[string]any{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetTrade handles GET /api/trades/{id}
func (h *Handler) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	trade, err := h.service.Get(id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get trade")
		return
	}

	h.writeJSON(w, http.StatusOK, responseEnvelope(trade))
}

// HandleUpdateTrade handles PUT /api/trades/{id}
func (h *Handler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	var req ledger.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trade, err := h.service.Update(id, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update trade")
		return
	}

	h.writeJSON(w, http.StatusOK, responseEnvelope(trade))
}

// HandleDeleteTrade handles DELETE /api/trades/{id}
func (h *Handler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		h.writeServiceError(w, err, "Failed to delete trade")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) tradeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid trade ID")
		return 0, false
	}
	return id, true
}

// writeServiceError maps domain errors to HTTP statuses
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidTradeInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientShares):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrLedgerReplay):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		h.writeError(w, http.StatusNotFound, "Trade not found")
	default:
		h.log.Error().Err(err).Msg(fallback)
		h.writeError(w, http.StatusInternalServerError, fallback)
	}
}

func responseEnvelope(data any) map[string]any {
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
