package exporter

import "shoppulse/internal/analytics"

// Report is one flattened metric table ready for CSV or Excel output
type Report struct {
	Name    string
	Headers []string
	Records [][]string
}

// TotalsReport flattens the dataset summary into a single-row table
func TotalsReport(t analytics.Totals) Report {
	return Report{
		Name: "summary",
		Headers: []string{"total_revenue", "total_freight", "gross_revenue",
			"order_count", "item_count", "average_order_value", "avg_items_per_order"},
		Records: [][]string{{
			FormatDecimal(t.TotalRevenue),
			FormatDecimal(t.TotalFreight),
			FormatDecimal(t.GrossRevenue),
			FormatInt(t.OrderCount),
			FormatInt(t.ItemCount),
			FormatRate(t.AverageOrderValue),
			FormatRate(t.AvgItemsPerOrder),
		}},
	}
}

// RevenueReport flattens a per-dimension revenue breakdown
func RevenueReport(name string, entries []analytics.DimensionEntry) Report {
	r := Report{
		Name:    name,
		Headers: []string{"key", "revenue", "item_count", "share_of_total"},
	}
	for _, e := range entries {
		r.Records = append(r.Records, []string{
			e.Key,
			FormatDecimal(e.Revenue),
			FormatInt(e.ItemCount),
			FormatFloat(e.Share),
		})
	}
	return r
}

// CurveReport flattens a concentration curve
func CurveReport(name string, points []analytics.CurvePoint) Report {
	r := Report{
		Name:    name,
		Headers: []string{"entity_share", "revenue_share"},
	}
	for _, p := range points {
		r.Records = append(r.Records, []string{
			FormatFloat(p.EntityShare),
			FormatFloat(p.RevenueShare),
		})
	}
	return r
}

// StageSummaryReport flattens the per-stage timing summary
func StageSummaryReport(stages []analytics.StageSummary) Report {
	r := Report{
		Name:    "stage_summary",
		Headers: []string{"stage", "order_count", "mean_hours", "median_hours"},
	}
	for _, s := range stages {
		r.Records = append(r.Records, []string{
			s.Stage,
			FormatInt(s.OrderCount),
			FormatRate(s.MeanHours),
			FormatRate(s.MedianHours),
		})
	}
	return r
}

// SeverityReport flattens the delay severity distribution
func SeverityReport(counts []analytics.SeverityCount) Report {
	r := Report{
		Name:    "delay_severity",
		Headers: []string{"severity", "orders", "share"},
	}
	for _, c := range counts {
		r.Records = append(r.Records, []string{
			c.Severity,
			FormatInt(c.Orders),
			FormatFloat(c.Share),
		})
	}
	return r
}

// OverviewReport flattens the delivery overview into a single-row table
func OverviewReport(ov analytics.DeliveryOverview) Report {
	return Report{
		Name: "delivery_overview",
		Headers: []string{"total_orders", "delivered_orders", "undelivered_orders",
			"delivery_rate", "on_time_rate"},
		Records: [][]string{{
			FormatInt(ov.TotalOrders),
			FormatInt(ov.DeliveredOrders),
			FormatInt(ov.UndeliveredOrders),
			FormatRate(ov.DeliveryRate),
			FormatRate(ov.OnTimeRate),
		}},
	}
}

// HeatmapReport flattens a delay heatmap
func HeatmapReport(cells []analytics.HeatmapCell) Report {
	r := Report{
		Name:    "delay_heatmap",
		Headers: []string{"row", "col", "orders", "mean_delay_days"},
	}
	for _, c := range cells {
		r.Records = append(r.Records, []string{
			c.Row,
			c.Col,
			FormatInt(c.Orders),
			FormatFloat(c.MeanDelayDays),
		})
	}
	return r
}

// StateReport flattens per-state delivery performance
func StateReport(states []analytics.StatePerformance) Report {
	r := Report{
		Name: "state_performance",
		Headers: []string{"state", "orders", "delivered", "mean_delivery_days",
			"on_time", "minor", "moderate", "severe", "sla_rate", "low_confidence"},
	}
	for _, s := range states {
		r.Records = append(r.Records, []string{
			s.State,
			FormatInt(s.Orders),
			FormatInt(s.Delivered),
			FormatRate(s.MeanDeliveryDays),
			FormatInt(s.OnTime),
			FormatInt(s.Minor),
			FormatInt(s.Moderate),
			FormatInt(s.Severe),
			FormatRate(s.SLARate),
			FormatBool(s.LowConfidence),
		})
	}
	return r
}

// SLAReport flattens scoped SLA compliance rates
func SLAReport(name string, rates []analytics.ScopedRate) Report {
	r := Report{
		Name:    name,
		Headers: []string{"scope", "delivered", "compliant", "rate"},
	}
	for _, sr := range rates {
		r.Records = append(r.Records, []string{
			sr.Scope,
			FormatInt(sr.Delivered),
			FormatInt(sr.Compliant),
			FormatRate(sr.Rate),
		})
	}
	return r
}

// FreightReport flattens the freight efficiency summary into a single row
func FreightReport(fe analytics.FreightEfficiency) Report {
	return Report{
		Name: "freight_efficiency",
		Headers: []string{"total_freight", "total_revenue", "freight_share_of_gross",
			"measured_items", "unmeasured_items", "mean_freight_per_kg", "mean_freight_per_m3"},
		Records: [][]string{{
			FormatDecimal(fe.TotalFreight),
			FormatDecimal(fe.TotalRevenue),
			FormatRate(fe.FreightShareOfGross),
			FormatInt(fe.MeasuredItems),
			FormatInt(fe.UnmeasuredItems),
			FormatRate(fe.MeanFreightPerKg),
			FormatRate(fe.MeanFreightPerM3),
		}},
	}
}

// CategoryFreightReport flattens the per-category freight breakdown
func CategoryFreightReport(categories []analytics.CategoryFreight) Report {
	r := Report{
		Name: "category_freight",
		Headers: []string{"category", "items", "measured_items", "total_freight",
			"mean_freight_per_kg", "mean_freight_per_m3"},
	}
	for _, c := range categories {
		r.Records = append(r.Records, []string{
			c.Category,
			FormatInt(c.Items),
			FormatInt(c.MeasuredItems),
			FormatDecimal(c.TotalFreight),
			FormatRate(c.MeanFreightPerKg),
			FormatRate(c.MeanFreightPerM3),
		})
	}
	return r
}
