package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Routes(apiRL *RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", h.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiRL.Middleware)

		r.Post("/watermark", h.APIWatermarkSubmit)
		r.Get("/jobs/{jobID}", h.APIJobGet)
		r.Get("/jobs/{jobID}/file", h.APIJobFile)
	})

	return r
}
