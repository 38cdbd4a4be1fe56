package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shrtfly-integration/internal/ratelimit"
)

// NewRouter wires the hooks, the admin surface and the operational endpoints:
//   - GET  /health, /metrics
//   - GET  /hooks/render, /hooks/amp (CORS enabled)
//   - GET|POST /admin/settings
//   - POST /admin/activate, /admin/deactivate, /admin/uninstall
//
// Admin mutations are rate limited per client IP.
func NewRouter(handler *Handler, rateLimiter *ratelimit.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(LoggingMiddleware(handler.logger))
	r.Use(MetricsMiddleware(handler.metrics))

	r.Get("/health", handler.Health)
	r.Method(http.MethodGet, "/metrics", handler.metrics.Handler())

	r.Route("/hooks", func(hr chi.Router) {
		hr.Use(CORSMiddleware)
		hr.Get("/render", handler.Render)
		hr.Get("/amp", handler.RenderAMP)
	})

	r.Route("/admin", func(ar chi.Router) {
		ar.Get("/settings", handler.SettingsPage)
		ar.Group(func(mr chi.Router) {
			mr.Use(RateLimitMiddleware(rateLimiter))
			mr.Post("/settings", handler.SaveSettings)
			mr.Post("/activate", handler.Activate)
			mr.Post("/deactivate", handler.Deactivate)
			mr.Post("/uninstall", handler.Uninstall)
		})
	})

	return r
}
