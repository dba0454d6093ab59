package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"shoppulse/internal/analytics"
	"shoppulse/internal/dataset"
)

// TableLoader loads the three raw source tables
type TableLoader interface {
	LoadAll(ctx context.Context) (*dataset.Tables, error)
}

// Concentration pairs a concentration curve with its index
type Concentration struct {
	Dimension string                 `json:"dimension"`
	Curve     []analytics.CurvePoint `json:"curve"`
	Index     float64                `json:"index"`
}

// DataQuality reports the joins and timestamps the dataset had to work around
type DataQuality struct {
	MissingOrders   int `json:"missing_orders"`
	MissingProducts int `json:"missing_products"`
	AnomalousOrders int `json:"anomalous_orders"`
}

// Dashboard aggregates every metric family over one filtered view
type Dashboard struct {
	Totals            analytics.Totals            `json:"totals"`
	RevenueByCategory []analytics.DimensionEntry  `json:"revenue_by_category"`
	RevenueBySeller   []analytics.DimensionEntry  `json:"revenue_by_seller"`
	CategorySpread    Concentration               `json:"category_concentration"`
	SellerSpread      Concentration               `json:"seller_concentration"`
	Stages            []analytics.StageSummary    `json:"stage_summary"`
	DelaySeverity     []analytics.SeverityCount   `json:"delay_severity"`
	Delivery          analytics.DeliveryOverview  `json:"delivery_overview"`
	States            []analytics.StatePerformance `json:"state_performance"`
	SLA               analytics.ScopedRate        `json:"sla_global"`
	Freight           analytics.FreightEfficiency `json:"freight_efficiency"`
	Quality           DataQuality                 `json:"data_quality"`
	GeneratedAt       time.Time                   `json:"generated_at"`
}

// AnalyticsService owns the loaded snapshot and serves computed metrics.
// Filtered snapshots and dashboards are memoized per canonical filter key
// until the next reload.
type AnalyticsService struct {
	loader    TableLoader
	engine    *analytics.Engine
	logger    *slog.Logger
	minOrders int

	mu       sync.RWMutex
	snapshot *analytics.Snapshot
	filtered map[string]*analytics.Snapshot
}

// NewAnalyticsService creates the service. minOrders below 1 falls back to
// the default low-confidence threshold.
func NewAnalyticsService(loader TableLoader, logger *slog.Logger, minOrders int) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	if minOrders < 1 {
		minOrders = analytics.DefaultLowConfidenceOrders
	}
	return &AnalyticsService{
		loader:    loader,
		engine:    analytics.NewEngine(logger),
		logger:    logger.With(slog.String("service", "analytics")),
		minOrders: minOrders,
		filtered:  make(map[string]*analytics.Snapshot),
	}
}

// Reload loads the source tables and swaps in a fresh snapshot. Every
// memoized filtered view is invalidated. On failure the previous snapshot
// stays in place.
func (s *AnalyticsService) Reload(ctx context.Context) error {
	start := time.Now()

	tables, err := s.loader.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload dataset: %w", err)
	}
	snapshot := s.engine.BuildSnapshot(ctx, tables.Items, tables.Products, tables.Orders)

	s.mu.Lock()
	s.snapshot = snapshot
	s.filtered = make(map[string]*analytics.Snapshot)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "snapshot reloaded",
		slog.Int("rows", snapshot.RowCount()),
		slog.Int("orders", snapshot.OrderCount()),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Loaded reports whether a snapshot is available
func (s *AnalyticsService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

// snapshotFor resolves the filtered view for a filter, memoizing by the
// filter's canonical key
func (s *AnalyticsService) snapshotFor(f analytics.Filter) (*analytics.Snapshot, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	base := s.snapshot
	if base == nil {
		s.mu.RUnlock()
		return nil, ErrNotLoaded
	}
	if f.IsZero() {
		s.mu.RUnlock()
		return base, nil
	}
	if cached, ok := s.filtered[f.Key()]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	view := base.Filter(f)

	s.mu.Lock()
	// The snapshot may have been swapped while filtering; only memoize
	// views derived from the current one.
	if s.snapshot == base {
		s.filtered[f.Key()] = view
	}
	s.mu.Unlock()
	return view, nil
}

// Totals returns the summary record for the filtered view
func (s *AnalyticsService) Totals(ctx context.Context, f analytics.Filter) (analytics.Totals, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return analytics.Totals{}, err
	}
	return snap.Totals(), nil
}

// Revenue returns the per-dimension revenue breakdown
func (s *AnalyticsService) Revenue(ctx context.Context, f analytics.Filter, dim analytics.Dimension) ([]analytics.DimensionEntry, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return nil, err
	}
	return snap.RevenueByDimension(dim), nil
}

// Concentration returns the concentration curve and index for a dimension
func (s *AnalyticsService) Concentration(ctx context.Context, f analytics.Filter, dim analytics.Dimension) (Concentration, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return Concentration{}, err
	}
	return Concentration{
		Dimension: dim.String(),
		Curve:     snap.ConcentrationCurve(dim),
		Index:     snap.ConcentrationIndex(dim),
	}, nil
}

// StageDurations returns the per-order lifecycle stage durations
func (s *AnalyticsService) StageDurations(ctx context.Context, f analytics.Filter) ([]analytics.StageDurations, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return nil, err
	}
	return snap.StageDurations(), nil
}

// StageSummary returns mean and median hours per lifecycle stage
func (s *AnalyticsService) StageSummary(ctx context.Context, f analytics.Filter) ([]analytics.StageSummary, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return nil, err
	}
	return snap.StageSummary(), nil
}

// DelaySeverity returns the delay severity distribution
func (s *AnalyticsService) DelaySeverity(ctx context.Context, f analytics.Filter) ([]analytics.SeverityCount, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return nil, err
	}
	return snap.DelaySeverityDistribution(), nil
}

// DeliveryOverview returns delivery outcome counts and rates
func (s *AnalyticsService) DeliveryOverview(ctx context.Context, f analytics.Filter) (analytics.DeliveryOverview, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return analytics.DeliveryOverview{}, err
	}
	return snap.DeliveryOverview(), nil
}

// DelayHeatmap returns the delay cross-tabulation over two dimensions
func (s *AnalyticsService) DelayHeatmap(ctx context.Context, f analytics.Filter, rowDim, colDim analytics.HeatDimension) ([]analytics.HeatmapCell, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return nil, err
	}
	return snap.DelayHeatmap(rowDim, colDim), nil
}

// StatePerformance returns per-state delivery performance. minOrders below 1
// uses the configured low-confidence threshold.
func (s *AnalyticsService) StatePerformance(ctx context.Context, f analytics.Filter, minOrders int) ([]analytics.StatePerformance, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return nil, err
	}
	if minOrders < 1 {
		minOrders = s.minOrders
	}
	return snap.PerformanceByState(minOrders), nil
}

// SLACompliance returns SLA compliance for a scope: "global", "state" or
// "category"
func (s *AnalyticsService) SLACompliance(ctx context.Context, f analytics.Filter, scope string) ([]analytics.ScopedRate, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return nil, err
	}
	switch scope {
	case "", analytics.GlobalScope:
		return []analytics.ScopedRate{snap.SLAComplianceGlobal()}, nil
	case "state":
		return snap.SLAComplianceByState(), nil
	case "category":
		return snap.SLAComplianceByCategory(), nil
	default:
		return nil, fmt.Errorf("unknown SLA scope %q (expected global, state or category)", scope)
	}
}

// FreightEfficiency returns the freight efficiency summary
func (s *AnalyticsService) FreightEfficiency(ctx context.Context, f analytics.Filter) (analytics.FreightEfficiency, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return analytics.FreightEfficiency{}, err
	}
	return snap.FreightEfficiency(), nil
}

// FreightByCategory returns the per-category freight breakdown
func (s *AnalyticsService) FreightByCategory(ctx context.Context, f analytics.Filter) ([]analytics.CategoryFreight, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return nil, err
	}
	return snap.FreightByCategory(), nil
}

// Dashboard computes every metric family over the filtered view. The
// families are independent, so they are computed concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, f analytics.Filter) (*Dashboard, error) {
	snap, err := s.snapshotFor(f)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{GeneratedAt: time.Now().UTC()}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.Totals = snap.Totals()
		d.RevenueByCategory = snap.RevenueByDimension(analytics.DimensionCategory)
		d.RevenueBySeller = snap.RevenueByDimension(analytics.DimensionSeller)
		return nil
	})
	g.Go(func() error {
		d.CategorySpread = Concentration{
			Dimension: analytics.DimensionCategory.String(),
			Curve:     snap.ConcentrationCurve(analytics.DimensionCategory),
			Index:     snap.ConcentrationIndex(analytics.DimensionCategory),
		}
		d.SellerSpread = Concentration{
			Dimension: analytics.DimensionSeller.String(),
			Curve:     snap.ConcentrationCurve(analytics.DimensionSeller),
			Index:     snap.ConcentrationIndex(analytics.DimensionSeller),
		}
		return nil
	})
	g.Go(func() error {
		d.Stages = snap.StageSummary()
		d.DelaySeverity = snap.DelaySeverityDistribution()
		d.Delivery = snap.DeliveryOverview()
		return nil
	})
	g.Go(func() error {
		d.States = snap.PerformanceByState(s.minOrders)
		d.SLA = snap.SLAComplianceGlobal()
		return nil
	})
	g.Go(func() error {
		d.Freight = snap.FreightEfficiency()
		d.Quality = DataQuality{
			MissingOrders:   snap.MissingOrders(),
			MissingProducts: snap.MissingProducts(),
			AnomalousOrders: snap.AnomalousOrders(),
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
