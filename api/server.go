/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for a separate frontend

ROUTE GROUPS:
  /                     Server-rendered form (GET resolves, POST submits)
  /api/form/*           Form defaults and resolve
  /api/calendar/*       Day and week lists for a month
  /api/exports/*        Submission and history
  /healthz              Liveness and store check
  /metrics              Prometheus exposition

SECURITY NOTE:
  No authentication middleware. The export endpoint behind the client is
  expected to authorize the request.

SEE ALSO:
  - handlers.go: Handler implementations
  - form_page.go: HTML form
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	// HTML form
	r.Get("/", h.ShowForm)
	r.Post("/", h.SubmitForm)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/form", func(r chi.Router) {
			r.Get("/defaults", h.GetDefaults)
			r.Post("/resolve", h.ResolveForm)
		})

		r.Route("/calendar/{year}/{month}", func(r chi.Router) {
			r.Get("/days", h.GetMonthDays)
			r.Get("/weeks", h.GetMonthWeeks)
		})

		r.Route("/exports", func(r chi.Router) {
			r.Get("/", h.ListExports)
			r.Post("/", h.SubmitExport)
			r.Get("/last", h.GetLastExport)
			r.Get("/history.xlsx", h.DownloadHistory)
		})
	})

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", h.Metrics().Handler())

	return r
}
