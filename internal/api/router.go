package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", h.CreateCampaign)
		r.Post("/{id}/start", h.StartCampaign)
		r.Get("/{id}", h.GetCampaign)
		r.Get("/{id}/deliveries", h.ListDeliveries)
	})

	r.Post("/recipients/import", h.ImportRecipients)

	return r
}
