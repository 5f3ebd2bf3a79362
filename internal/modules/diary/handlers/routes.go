package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all diary routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/diary", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Put("/", h.HandleSave)
		r.Get("/{date}", h.HandleGet)
		r.Delete("/{date}", h.HandleDelete)
	})
}
