package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all performance routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.Get("/daily", h.HandleGetDaily)
		r.Get("/monthly", h.HandleGetMonthly)
		r.Get("/summary", h.HandleGetSummary)
	})
}
