package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trade ledger routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/trades", func(r chi.Router) {
		r.Get("/", h.HandleListTrades)
		r.Post("/", h.HandleRecordTrade)
		r.Post("/preview", h.HandlePreviewTrade)
		r.Get("/{id}", h.HandleGetTrade)
		r.Put("/{id}", h.HandleUpdateTrade)
		r.Delete("/{id}", h.HandleDeleteTrade)
	})
}
