package http

import (
	"context"

	"shoppulse/internal/analytics"
	"shoppulse/internal/exporter"
	"shoppulse/internal/services"
)

// AnalyticsServiceInterface defines the service surface the handlers need
type AnalyticsServiceInterface interface {
	Loaded() bool
	Reload(ctx context.Context) error
	Dashboard(ctx context.Context, f analytics.Filter) (*services.Dashboard, error)
	Totals(ctx context.Context, f analytics.Filter) (analytics.Totals, error)
	Revenue(ctx context.Context, f analytics.Filter, dim analytics.Dimension) ([]analytics.DimensionEntry, error)
	Concentration(ctx context.Context, f analytics.Filter, dim analytics.Dimension) (services.Concentration, error)
	StageDurations(ctx context.Context, f analytics.Filter) ([]analytics.StageDurations, error)
	StageSummary(ctx context.Context, f analytics.Filter) ([]analytics.StageSummary, error)
	DelaySeverity(ctx context.Context, f analytics.Filter) ([]analytics.SeverityCount, error)
	DeliveryOverview(ctx context.Context, f analytics.Filter) (analytics.DeliveryOverview, error)
	DelayHeatmap(ctx context.Context, f analytics.Filter, rowDim, colDim analytics.HeatDimension) ([]analytics.HeatmapCell, error)
	StatePerformance(ctx context.Context, f analytics.Filter, minOrders int) ([]analytics.StatePerformance, error)
	SLACompliance(ctx context.Context, f analytics.Filter, scope string) ([]analytics.ScopedRate, error)
	FreightEfficiency(ctx context.Context, f analytics.Filter) (analytics.FreightEfficiency, error)
	FreightByCategory(ctx context.Context, f analytics.Filter) ([]analytics.CategoryFreight, error)
	BuildReport(ctx context.Context, f analytics.Filter, name string) (exporter.Report, error)
	BuildAllReports(ctx context.Context, f analytics.Filter) ([]exporter.Report, error)
}
