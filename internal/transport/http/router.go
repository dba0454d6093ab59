package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"shoppulse/internal/config"
	apierrors "shoppulse/internal/errors"
	custommw "shoppulse/internal/middleware"
)

// NewRouter assembles the full HTTP router: ambient middleware, the
// analytics API under /api/analytics, health endpoints, and the
// Prometheus scrape endpoint outside the middleware group.
func NewRouter(cfg *config.Config, service AnalyticsServiceInterface, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	metrics := custommw.NewHTTPMetrics()
	errorHandler := apierrors.NewErrorHandler(logger, false)

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(custommw.StructuredLogger(logger))
		r.Use(custommw.Recoverer(logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.Compress(5))
		r.Use(metrics.Handler)

		if cfg.Server.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				cfg.Server.RateLimit.RPS,
				cfg.Server.RateLimit.Burst,
				logger,
			).Handler)
		}

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))

			healthHandler := NewHealthHandler(service, logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)

			analyticsHandler := NewAnalyticsHandler(service, logger, errorHandler)
			r.Mount("/analytics", analyticsHandler.Routes())
		})

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)
	})

	// Scrape endpoint stays outside the instrumented group
	r.Handle("/metrics", metrics.Expose())

	return r
}
