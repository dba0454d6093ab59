package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"shoppulse/internal/analytics"
	"shoppulse/internal/dataset"
	apierrors "shoppulse/internal/errors"
	"shoppulse/internal/exporter"
	"shoppulse/internal/middleware"
	"shoppulse/internal/services"
)

const dateLayout = "2006-01-02"

// AnalyticsHandler serves the computed metric families over HTTP with
// RFC 7807 error responses
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dashboard", h.GetDashboard)
	r.Get("/summary", h.GetSummary)
	r.Get("/revenue", h.GetRevenue)
	r.Get("/concentration", h.GetConcentration)

	r.Route("/timeline", func(r chi.Router) {
		r.Get("/stages", h.GetStageDurations)
		r.Get("/summary", h.GetStageSummary)
	})

	r.Route("/delays", func(r chi.Router) {
		r.Get("/", h.GetDelaySeverity)
		r.Get("/overview", h.GetDeliveryOverview)
		r.Get("/heatmap", h.GetDelayHeatmap)
	})

	r.Get("/geographic/states", h.GetStatePerformance)
	r.Get("/sla", h.GetSLACompliance)

	r.Route("/freight", func(r chi.Router) {
		r.Get("/", h.GetFreightEfficiency)
		r.Get("/categories", h.GetFreightByCategory)
	})

	r.Post("/reload", h.Reload)
	r.Get("/export", h.ExportWorkbook)
	r.Get("/export/{report}", h.ExportReport)

	return r
}

// parseFilter builds the row-set filter from query parameters. The "to"
// date is inclusive, so it extends to the end of that day.
func parseFilter(r *http.Request) (analytics.Filter, error) {
	var f analytics.Filter
	q := r.URL.Query()

	if from := q.Get("from"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q: %w", from, err)
		}
		f.DateFrom = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q: %w", to, err)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.DateTo = &end
	}
	f.State = q.Get("state")
	f.Category = q.Get("category")

	return f, f.Validate()
}

// handleServiceError maps service failures to API errors
func (h *AnalyticsHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotLoaded):
		h.errorHandler.HandleError(w, r, apierrors.ErrDataNotLoaded)
	case errors.Is(err, services.ErrUnknownReport):
		h.errorHandler.HandleError(w, r, apierrors.ErrReportNotFound)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// respond wraps successful payloads in the standard envelope
func (h *AnalyticsHandler) respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// withFilter runs fn against the parsed filter, handling filter errors
func (h *AnalyticsHandler) withFilter(w http.ResponseWriter, r *http.Request, fn func(analytics.Filter)) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	fn(f)
}

// GetDashboard handles GET /api/analytics/dashboard
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f analytics.Filter) {
		dashboard, err := h.service.Dashboard(r.Context(), f)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, dashboard)
	})
}

// GetSummary handles GET /api/analytics/summary
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f analytics.Filter) {
		totals, err := h.service.Totals(r.Context(), f)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, totals)
	})
}

// GetRevenue handles GET /api/analytics/revenue?dimension=category|seller
func (h *AnalyticsHandler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	dim, err := parseDimension(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameterError("dimension", r.URL.Query().Get("dimension")))
		return
	}
	h.withFilter(w, r, func(f analytics.Filter) {
		entries, err := h.service.Revenue(r.Context(), f, dim)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, map[string]interface{}{
			"dimension": dim.String(),
			"entries":   entries,
			"count":     len(entries),
		})
	})
}

// GetConcentration handles GET /api/analytics/concentration?dimension=
func (h *AnalyticsHandler) GetConcentration(w http.ResponseWriter, r *http.Request) {
	dim, err := parseDimension(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameterError("dimension", r.URL.Query().Get("dimension")))
		return
	}
	h.withFilter(w, r, func(f analytics.Filter) {
		concentration, err := h.service.Concentration(r.Context(), f, dim)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, concentration)
	})
}

// GetStageDurations handles GET /api/analytics/timeline/stages
func (h *AnalyticsHandler) GetStageDurations(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f analytics.Filter) {
		stages, err := h.service.StageDurations(r.Context(), f)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, map[string]interface{}{
			"orders": stages,
			"count":  len(stages),
		})
	})
}

// GetStageSummary handles GET /api/analytics/timeline/summary
func (h *AnalyticsHandler) GetStageSummary(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f analytics.Filter) {
		summary, err := h.service.StageSummary(r.Context(), f)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, summary)
	})
}

// GetDelaySeverity handles GET /api/analytics/delays
func (h *AnalyticsHandler) GetDelaySeverity(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f analytics.Filter) {
		severity, err := h.service.DelaySeverity(r.Context(), f)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, severity)
	})
}

// GetDeliveryOverview handles GET /api/analytics/delays/overview
func (h *AnalyticsHandler) GetDeliveryOverview(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f analytics.Filter) {
		overview, err := h.service.DeliveryOverview(r.Context(), f)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, overview)
	})
}

// GetDelayHeatmap handles GET /api/analytics/delays/heatmap?rows=&cols=
func (h *AnalyticsHandler) GetDelayHeatmap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rowDim, err := analytics.ParseHeatDimension(defaultString(q.Get("rows"), "state"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameterError("rows", q.Get("rows")))
		return
	}
	colDim, err := analytics.ParseHeatDimension(defaultString(q.Get("cols"), "month"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameterError("cols", q.Get("cols")))
		return
	}
	h.withFilter(w, r, func(f analytics.Filter) {
		cells, err := h.service.DelayHeatmap(r.Context(), f, rowDim, colDim)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, map[string]interface{}{
			"rows":  rowDim.String(),
			"cols":  colDim.String(),
			"cells": cells,
			"count": len(cells),
		})
	})
}

// GetStatePerformance handles GET /api/analytics/geographic/states?min_orders=
func (h *AnalyticsHandler) GetStatePerformance(w http.ResponseWriter, r *http.Request) {
	minOrders := 0
	if raw := r.URL.Query().Get("min_orders"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.errorHandler.HandleError(w, r, apierrors.InvalidParameterError("min_orders", raw))
			return
		}
		minOrders = n
	}
	h.withFilter(w, r, func(f analytics.Filter) {
		states, err := h.service.StatePerformance(r.Context(), f, minOrders)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, map[string]interface{}{
			"states": states,
			"count":  len(states),
		})
	})
}

// GetSLACompliance handles GET /api/analytics/sla?scope=global|state|category
func (h *AnalyticsHandler) GetSLACompliance(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	h.withFilter(w, r, func(f analytics.Filter) {
		rates, err := h.service.SLACompliance(r.Context(), f, scope)
		if err != nil {
			if errors.Is(err, services.ErrNotLoaded) {
				h.handleServiceError(w, r, err)
				return
			}
			h.errorHandler.HandleError(w, r, apierrors.InvalidParameterError("scope", scope))
			return
		}
		h.respond(w, r, rates)
	})
}

// GetFreightEfficiency handles GET /api/analytics/freight
func (h *AnalyticsHandler) GetFreightEfficiency(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f analytics.Filter) {
		freight, err := h.service.FreightEfficiency(r.Context(), f)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, freight)
	})
}

// GetFreightByCategory handles GET /api/analytics/freight/categories
func (h *AnalyticsHandler) GetFreightByCategory(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f analytics.Filter) {
		categories, err := h.service.FreightByCategory(r.Context(), f)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.respond(w, r, map[string]interface{}{
			"categories": categories,
			"count":      len(categories),
		})
	})
}

// Reload handles POST /api/analytics/reload
func (h *AnalyticsHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.InfoContext(r.Context(), "reloading dataset",
		slog.String("request_id", reqID))

	if err := h.service.Reload(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "dataset reload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))

		var schemaErr *dataset.SchemaError
		if errors.As(err, &schemaErr) {
			h.errorHandler.HandleError(w, r, apierrors.SchemaErrorWithDetails(schemaErr.Table, schemaErr.Missing))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.DataLoadError(err))
		return
	}

	h.respond(w, r, map[string]interface{}{
		"reloaded": true,
	})
}

// ExportReport handles GET /api/analytics/export/{report}, streaming one
// metric family as CSV
func (h *AnalyticsHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "report")
	h.withFilter(w, r, func(f analytics.Filter) {
		report, err := h.service.BuildReport(r.Context(), f, name)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Name+".csv"))

		if err := exporter.WriteReportTo(w, report); err != nil {
			h.logger.WarnContext(r.Context(), "csv report stream failed",
				"report", report.Name, "error", err)
		}
	})
}

// ExportWorkbook handles GET /api/analytics/export, streaming every metric
// family as one xlsx workbook
func (h *AnalyticsHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f analytics.Filter) {
		reports, err := h.service.BuildAllReports(r.Context(), f)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="shoppulse_report.xlsx"`)

		if err := exporter.WriteWorkbookTo(w, reports); err != nil {
			h.logger.ErrorContext(r.Context(), "workbook export failed",
				slog.String("error", err.Error()))
		}
	})
}

func parseDimension(r *http.Request) (analytics.Dimension, error) {
	return analytics.ParseDimension(defaultString(r.URL.Query().Get("dimension"), "category"))
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
