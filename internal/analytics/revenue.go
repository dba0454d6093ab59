package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// DimensionEntry is one row of a per-dimension breakdown, ordered by
// descending value with ascending key as the tie-break
type DimensionEntry struct {
	Key       string          `json:"key"`
	Revenue   decimal.Decimal `json:"revenue"`
	ItemCount int             `json:"item_count"`
	Share     float64         `json:"share_of_total"`
}

// CurvePoint is one point of a concentration curve: cumulative share of
// ranked entities against cumulative share of revenue
type CurvePoint struct {
	EntityShare  float64 `json:"entity_share"`
	RevenueShare float64 `json:"revenue_share"`
}

// Totals summarizes the whole row-set
type Totals struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalFreight      decimal.Decimal `json:"total_freight"`
	GrossRevenue      decimal.Decimal `json:"gross_revenue"`
	OrderCount        int             `json:"order_count"`
	ItemCount         int             `json:"item_count"`
	AverageOrderValue Rate            `json:"average_order_value"`
	AvgItemsPerOrder  Rate            `json:"avg_items_per_order"`
}

func (r EnrichedRow) metricValue(metric Metric) decimal.Decimal {
	switch metric {
	case MetricFreight:
		return r.FreightValue
	case MetricGross:
		return r.Gross()
	default:
		return r.Price
	}
}

func (r EnrichedRow) dimensionKey(dim Dimension) string {
	if dim == DimensionSeller {
		return r.SellerID
	}
	return r.Category
}

// SumByDimension groups rows by the dimension and sums the chosen metric.
// Entries are ordered by descending value, then ascending key, so output is
// deterministic for equal values.
func (s *Snapshot) SumByDimension(dim Dimension, metric Metric) []DimensionEntry {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	total := decimal.Zero

	for _, row := range s.rows {
		key := row.dimensionKey(dim)
		v := row.metricValue(metric)
		sums[key] = sums[key].Add(v)
		counts[key]++
		total = total.Add(v)
	}

	entries := make([]DimensionEntry, 0, len(sums))
	for key, sum := range sums {
		entries = append(entries, DimensionEntry{
			Key:       key,
			Revenue:   sum,
			ItemCount: counts[key],
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		cmp := entries[i].Revenue.Cmp(entries[j].Revenue)
		if cmp != 0 {
			return cmp > 0
		}
		return entries[i].Key < entries[j].Key
	})

	if total.IsPositive() {
		totalF := total.InexactFloat64()
		for i := range entries {
			entries[i].Share = entries[i].Revenue.InexactFloat64() / totalF
		}
	}
	return entries
}

// RevenueByDimension groups rows by the dimension and sums item prices.
// Revenue excludes freight; the per-entry revenues partition the total
// exactly since amounts are decimal.
func (s *Snapshot) RevenueByDimension(dim Dimension) []DimensionEntry {
	return s.SumByDimension(dim, MetricPrice)
}

// TotalRevenue returns the sum of item prices over all rows
func (s *Snapshot) TotalRevenue() decimal.Decimal {
	total := decimal.Zero
	for _, row := range s.rows {
		total = total.Add(row.Price)
	}
	return total
}

// TotalFreight returns the sum of freight values over all rows
func (s *Snapshot) TotalFreight() decimal.Decimal {
	total := decimal.Zero
	for _, row := range s.rows {
		total = total.Add(row.FreightValue)
	}
	return total
}

// Totals computes the summary record for the row-set. Average order value is
// gross (price plus freight) per distinct order.
func (s *Snapshot) Totals() Totals {
	t := Totals{
		TotalRevenue: s.TotalRevenue(),
		TotalFreight: s.TotalFreight(),
		OrderCount:   len(s.orders),
		ItemCount:    len(s.rows),
	}
	t.GrossRevenue = t.TotalRevenue.Add(t.TotalFreight)
	if t.OrderCount > 0 {
		t.AverageOrderValue = DefinedRate(t.GrossRevenue.InexactFloat64() / float64(t.OrderCount))
		t.AvgItemsPerOrder = DefinedRate(float64(t.ItemCount) / float64(t.OrderCount))
	}
	return t
}

// ConcentrationCurve ranks entities of the dimension by descending revenue
// and returns the running (cumulative entity share, cumulative revenue share)
// pairs. The revenue share is non-decreasing and reaches 1.0 at the final
// point. An empty or zero-revenue row-set yields no points.
func (s *Snapshot) ConcentrationCurve(dim Dimension) []CurvePoint {
	entries := s.RevenueByDimension(dim)
	if len(entries) == 0 {
		return nil
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Revenue)
	}
	if !total.IsPositive() {
		return nil
	}
	totalF := total.InexactFloat64()

	points := make([]CurvePoint, len(entries))
	running := decimal.Zero
	for i, e := range entries {
		running = running.Add(e.Revenue)
		points[i] = CurvePoint{
			EntityShare:  float64(i+1) / float64(len(entries)),
			RevenueShare: running.InexactFloat64() / totalF,
		}
	}
	// The running decimal sum equals the total at the last entry, so the
	// final share is exactly 1.
	points[len(points)-1].RevenueShare = 1.0
	return points
}

// ConcentrationIndex computes a Gini-style index in [0,1] from the
// concentration curve by trapezoidal integration: 0 when every entity has
// identical revenue, approaching 1 as revenue concentrates in one entity.
func (s *Snapshot) ConcentrationIndex(dim Dimension) float64 {
	points := s.ConcentrationCurve(dim)
	if len(points) == 0 {
		return 0
	}

	// Area under the descending-ranked cumulative curve, from (0,0).
	area := 0.0
	prev := CurvePoint{}
	for _, p := range points {
		area += (p.EntityShare - prev.EntityShare) * (p.RevenueShare + prev.RevenueShare) / 2
		prev = p
	}

	idx := 2*area - 1
	if math.Abs(idx) < 1e-9 {
		return 0
	}
	if idx < 0 {
		return 0
	}
	if idx > 1 {
		return 1
	}
	return idx
}
