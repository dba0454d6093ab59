package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// Version is set at build time via ldflags
var Version = "dev"

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service AnalyticsServiceInterface
	logger  *slog.Logger
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service AnalyticsServiceInterface, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
		started: time.Now(),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"version": Version,
		"uptime":  time.Since(h.started).String(),
	})
}

// ReadinessCheck handles GET /api/health/ready. The service is ready once
// a dataset load has succeeded.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !h.service.Loaded() {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]interface{}{
			"status": "not_ready",
			"reason": "dataset not loaded",
		})
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "ready",
	})
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "alive",
	})
}
