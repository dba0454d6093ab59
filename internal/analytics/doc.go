// Package analytics implements the marketplace analytics computation engine.
//
// The engine joins three flat tables (order items, the product catalog and
// order lifecycle records) into an immutable Snapshot and derives business
// metrics from it: revenue composition, vendor and category concentration,
// freight efficiency, delivery-stage timing, delay severity, geographic
// performance and SLA compliance.
//
// # Architecture
//
//   - types.go: raw table rows, the enriched row, severities and rates
//   - enrich.go: join and enrichment into a Snapshot
//   - filter.go: one-shot filtering shared by every metric module
//   - revenue.go: per-dimension revenue, concentration curve and index
//   - timeline.go: stage durations, delay severity, delay heatmap
//   - geographic.go: per-state performance
//   - sla.go: SLA compliance by scope
//   - freight.go: freight efficiency ratios
//
// All metric methods are pure functions of the Snapshot. Snapshots are never
// mutated after construction, so concurrent metric invocations are safe
// without locking. Currency amounts are decimals so per-dimension revenues
// partition the total exactly.
//
// # Usage
//
//	engine := analytics.NewEngine(slog.Default())
//	snap := engine.BuildSnapshot(ctx, items, products, orders)
//
//	view := snap.Filter(analytics.Filter{State: "SP"})
//	revenue := view.RevenueByDimension(analytics.DimensionSeller)
//	gini := view.ConcentrationIndex(analytics.DimensionSeller)
//	states := view.PerformanceByState(0)
//
// Ratios whose denominator population is empty are reported as undefined
// Rate values, never coerced to zero, so a caller can distinguish "0%
// compliance" from "no data".
package analytics
