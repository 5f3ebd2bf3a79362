package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all chip data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/chips", func(r chi.Router) {
		r.Get("/market", h.HandleGetMarket)
		r.Post("/sync", h.HandleSync)
		r.Get("/{symbol}", h.HandleGetSymbol)
	})
}
