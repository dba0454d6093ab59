package services

import (
	"context"

	"shoppulse/internal/analytics"
	"shoppulse/internal/exporter"
)

// Report names accepted by the export surface
const (
	ReportSummary          = "summary"
	ReportCategoryRevenue  = "category_revenue"
	ReportSellerRevenue    = "seller_revenue"
	ReportCategoryCurve    = "category_concentration"
	ReportSellerCurve      = "seller_concentration"
	ReportStageSummary     = "stage_summary"
	ReportDelaySeverity    = "delay_severity"
	ReportDelayHeatmap     = "delay_heatmap"
	ReportDeliveryOverview = "delivery_overview"
	ReportStates           = "state_performance"
	ReportSLAState         = "sla_by_state"
	ReportSLACategory      = "sla_by_category"
	ReportFreight          = "freight_efficiency"
	ReportCategoryFreight  = "category_freight"
)

// ReportNames lists every exportable report in output order
func ReportNames() []string {
	return []string{
		ReportSummary,
		ReportCategoryRevenue,
		ReportSellerRevenue,
		ReportCategoryCurve,
		ReportSellerCurve,
		ReportStageSummary,
		ReportDelaySeverity,
		ReportDelayHeatmap,
		ReportDeliveryOverview,
		ReportStates,
		ReportSLAState,
		ReportSLACategory,
		ReportFreight,
		ReportCategoryFreight,
	}
}

// BuildReport flattens one named metric family over the filtered view
func (s *AnalyticsService) BuildReport(ctx context.Context, f analytics.Filter, name string) (exporter.Report, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return exporter.Report{}, err
	}

	switch name {
	case ReportSummary:
		return exporter.TotalsReport(snap.Totals()), nil
	case ReportCategoryRevenue:
		return exporter.RevenueReport(name, snap.RevenueByDimension(analytics.DimensionCategory)), nil
	case ReportSellerRevenue:
		return exporter.RevenueReport(name, snap.RevenueByDimension(analytics.DimensionSeller)), nil
	case ReportCategoryCurve:
		return exporter.CurveReport(name, snap.ConcentrationCurve(analytics.DimensionCategory)), nil
	case ReportSellerCurve:
		return exporter.CurveReport(name, snap.ConcentrationCurve(analytics.DimensionSeller)), nil
	case ReportStageSummary:
		return exporter.StageSummaryReport(snap.StageSummary()), nil
	case ReportDelaySeverity:
		return exporter.SeverityReport(snap.DelaySeverityDistribution()), nil
	case ReportDelayHeatmap:
		return exporter.HeatmapReport(snap.DelayHeatmap(analytics.HeatState, analytics.HeatMonth)), nil
	case ReportDeliveryOverview:
		return exporter.OverviewReport(snap.DeliveryOverview()), nil
	case ReportStates:
		return exporter.StateReport(snap.PerformanceByState(s.minOrders)), nil
	case ReportSLAState:
		return exporter.SLAReport(name, snap.SLAComplianceByState()), nil
	case ReportSLACategory:
		return exporter.SLAReport(name, snap.SLAComplianceByCategory()), nil
	case ReportFreight:
		return exporter.FreightReport(snap.FreightEfficiency()), nil
	case ReportCategoryFreight:
		return exporter.CategoryFreightReport(snap.FreightByCategory()), nil
	default:
		return exporter.Report{}, ErrUnknownReport
	}
}

// BuildAllReports flattens every metric family over the filtered view
func (s *AnalyticsService) BuildAllReports(ctx context.Context, f analytics.Filter) ([]exporter.Report, error) {
	reports := make([]exporter.Report, 0, len(ReportNames()))
	for _, name := range ReportNames() {
		report, err := s.BuildReport(ctx, f, name)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
