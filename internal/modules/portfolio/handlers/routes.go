package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.HandleGetSnapshot)
		r.Get("/distribution", h.HandleGetDistribution)
		r.Get("/positions/{symbol}", h.HandleGetPosition)
		r.Post("/replay", h.HandleReplay)
	})
}
