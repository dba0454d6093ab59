package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// StageDurations holds the elapsed hours between adjacent lifecycle
// timestamps of one order. A stage is nil when either endpoint timestamp is
// missing; the remaining stages are still computed independently. An order
// whose timestamps run backwards is flagged anomalous rather than silently
// reporting negative durations.
type StageDurations struct {
	OrderID string `json:"order_id"`

	ApprovalHours *float64 `json:"approval_hours"` // purchase -> approved
	HandlingHours *float64 `json:"handling_hours"` // approved -> carrier handoff
	ShippingHours *float64 `json:"shipping_hours"` // handoff -> delivered
	TotalHours    *float64 `json:"total_hours"`    // purchase -> delivered

	ApprovalShare Rate `json:"approval_share"`
	HandlingShare Rate `json:"handling_share"`
	ShippingShare Rate `json:"shipping_share"`

	Anomalous bool `json:"anomalous"`
}

// StageSummary aggregates one stage over all orders that have it
type StageSummary struct {
	Stage       string `json:"stage"`
	OrderCount  int    `json:"order_count"`
	MeanHours   Rate   `json:"mean_hours"`
	MedianHours Rate   `json:"median_hours"`
}

// SeverityCount is one bucket of the delay severity distribution
type SeverityCount struct {
	Severity string  `json:"severity"`
	Orders   int     `json:"orders"`
	Share    float64 `json:"share"`
}

// DeliveryOverview summarizes delivery outcomes over the row-set's orders
type DeliveryOverview struct {
	TotalOrders       int  `json:"total_orders"`
	DeliveredOrders   int  `json:"delivered_orders"`
	UndeliveredOrders int  `json:"undelivered_orders"`
	DeliveryRate      Rate `json:"delivery_rate"`
	OnTimeRate        Rate `json:"on_time_rate"`
}

// HeatDimension selects a categorical axis for the delay heatmap
type HeatDimension int

const (
	// HeatState groups by customer state
	HeatState HeatDimension = iota
	// HeatCategory groups by product category (an order with items in
	// several categories contributes to each)
	HeatCategory
	// HeatMonth groups by purchase month (YYYY-MM)
	HeatMonth
)

// String returns the string representation of the heat dimension
func (h HeatDimension) String() string {
	switch h {
	case HeatState:
		return "state"
	case HeatCategory:
		return "category"
	case HeatMonth:
		return "month"
	default:
		return "unknown"
	}
}

// ParseHeatDimension parses a heatmap dimension name
func ParseHeatDimension(s string) (HeatDimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "state":
		return HeatState, nil
	case "category":
		return HeatCategory, nil
	case "month":
		return HeatMonth, nil
	default:
		return 0, fmt.Errorf("unknown heatmap dimension %q (expected state, category or month)", s)
	}
}

// HeatmapCell is one supported cell of a delay cross-tabulation. Cells with
// zero supporting orders are omitted entirely, never reported as zero.
type HeatmapCell struct {
	Row           string  `json:"row"`
	Col           string  `json:"col"`
	Orders        int     `json:"orders"`
	MeanDelayDays float64 `json:"mean_delay_days"`
}

func hoursBetween(from time.Time, to *time.Time) *float64 {
	if to == nil {
		return nil
	}
	h := to.Sub(from).Hours()
	return &h
}

func hoursBetweenPtr(from, to *time.Time) *float64 {
	if from == nil || to == nil {
		return nil
	}
	h := to.Sub(*from).Hours()
	return &h
}

// StageDurations computes the three adjacent stage durations for every order
// with at least one enriched row, sorted by order ID.
func (s *Snapshot) StageDurations() []StageDurations {
	out := make([]StageDurations, 0, len(s.orders))
	for _, o := range s.orders {
		sd := StageDurations{
			OrderID:       o.OrderID,
			ApprovalHours: hoursBetween(o.PurchasedAt, o.ApprovedAt),
			HandlingHours: hoursBetweenPtr(o.ApprovedAt, o.CarrierHandoffAt),
			ShippingHours: hoursBetweenPtr(o.CarrierHandoffAt, o.DeliveredAt),
			TotalHours:    hoursBetween(o.PurchasedAt, o.DeliveredAt),
		}

		for _, h := range []*float64{sd.ApprovalHours, sd.HandlingHours, sd.ShippingHours, sd.TotalHours} {
			if h != nil && *h < 0 {
				sd.Anomalous = true
			}
		}

		if !sd.Anomalous && sd.TotalHours != nil && *sd.TotalHours > 0 &&
			sd.ApprovalHours != nil && sd.HandlingHours != nil && sd.ShippingHours != nil {
			sd.ApprovalShare = DefinedRate(*sd.ApprovalHours / *sd.TotalHours)
			sd.HandlingShare = DefinedRate(*sd.HandlingHours / *sd.TotalHours)
			sd.ShippingShare = DefinedRate(*sd.ShippingHours / *sd.TotalHours)
		}

		out = append(out, sd)
	}
	return out
}

// AnomalousOrders returns the count of orders whose lifecycle timestamps are
// non-monotonic
func (s *Snapshot) AnomalousOrders() int {
	count := 0
	for _, sd := range s.StageDurations() {
		if sd.Anomalous {
			count++
		}
	}
	return count
}

func summarize(stage string, values []float64) StageSummary {
	sum := StageSummary{Stage: stage, OrderCount: len(values)}
	if len(values) == 0 {
		return sum
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	sum.MeanHours = DefinedRate(total / float64(len(values)))

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		sum.MedianHours = DefinedRate((sorted[mid-1] + sorted[mid]) / 2)
	} else {
		sum.MedianHours = DefinedRate(sorted[mid])
	}
	return sum
}

// StageSummary aggregates mean and median hours per stage over orders with
// monotonic timestamps. Anomalous orders are excluded so a backwards
// timestamp never drags an average negative.
func (s *Snapshot) StageSummary() []StageSummary {
	stages := map[string][]float64{}
	for _, sd := range s.StageDurations() {
		if sd.Anomalous {
			continue
		}
		if sd.ApprovalHours != nil {
			stages["approval"] = append(stages["approval"], *sd.ApprovalHours)
		}
		if sd.HandlingHours != nil {
			stages["handling"] = append(stages["handling"], *sd.HandlingHours)
		}
		if sd.ShippingHours != nil {
			stages["shipping"] = append(stages["shipping"], *sd.ShippingHours)
		}
		if sd.TotalHours != nil {
			stages["total"] = append(stages["total"], *sd.TotalHours)
		}
	}
	out := make([]StageSummary, 0, 4)
	for _, stage := range []string{"approval", "handling", "shipping", "total"} {
		out = append(out, summarize(stage, stages[stage]))
	}
	return out
}

// DelaySeverityDistribution classifies every delivered order with a known
// estimate and returns the bucket counts. Undelivered orders are excluded,
// not classified.
func (s *Snapshot) DelaySeverityDistribution() []SeverityCount {
	counts := map[DelaySeverity]int{}
	total := 0
	for _, o := range s.orders {
		days, ok := o.DelayDays()
		if !ok {
			continue
		}
		counts[ClassifyDelay(days)]++
		total++
	}

	out := make([]SeverityCount, 0, 4)
	for _, sev := range []DelaySeverity{SeverityOnTime, SeverityMinor, SeverityModerate, SeveritySevere} {
		sc := SeverityCount{Severity: sev.String(), Orders: counts[sev]}
		if total > 0 {
			sc.Share = float64(sc.Orders) / float64(total)
		}
		out = append(out, sc)
	}
	return out
}

// DeliveryOverview summarizes delivery outcomes. The on-time rate covers
// delivered orders with a known estimate; it is undefined when none exist.
func (s *Snapshot) DeliveryOverview() DeliveryOverview {
	ov := DeliveryOverview{TotalOrders: len(s.orders)}
	judged, onTime := 0, 0
	for _, o := range s.orders {
		if o.Delivered() {
			ov.DeliveredOrders++
		} else {
			ov.UndeliveredOrders++
		}
		if days, ok := o.DelayDays(); ok {
			judged++
			if days <= 0 {
				onTime++
			}
		}
	}
	if ov.TotalOrders > 0 {
		ov.DeliveryRate = DefinedRate(float64(ov.DeliveredOrders) / float64(ov.TotalOrders))
	}
	if judged > 0 {
		ov.OnTimeRate = DefinedRate(float64(onTime) / float64(judged))
	}
	return ov
}

// heatKeys returns the axis values an order contributes to for a dimension.
// State and month are single-valued; category fans out over the order's
// distinct item categories.
func (s *Snapshot) heatKeys(o Order, dim HeatDimension, categories map[string][]string) []string {
	switch dim {
	case HeatCategory:
		return categories[o.OrderID]
	case HeatMonth:
		return []string{o.PurchasedAt.Format("2006-01")}
	default:
		return []string{o.CustomerState}
	}
}

// DelayHeatmap cross-tabulates the mean delivery delay over two categorical
// dimensions. Only cells with at least one supporting order appear, sorted by
// row then column.
func (s *Snapshot) DelayHeatmap(rowDim, colDim HeatDimension) []HeatmapCell {
	categories := make(map[string][]string)
	if rowDim == HeatCategory || colDim == HeatCategory {
		seen := make(map[string]map[string]bool)
		for _, r := range s.rows {
			if seen[r.OrderID] == nil {
				seen[r.OrderID] = make(map[string]bool)
			}
			if !seen[r.OrderID][r.Category] {
				seen[r.OrderID][r.Category] = true
				categories[r.OrderID] = append(categories[r.OrderID], r.Category)
			}
		}
	}

	type cellKey struct{ row, col string }
	sums := make(map[cellKey]float64)
	counts := make(map[cellKey]int)

	for _, o := range s.orders {
		days, ok := o.DelayDays()
		if !ok {
			continue
		}
		for _, row := range s.heatKeys(o, rowDim, categories) {
			for _, col := range s.heatKeys(o, colDim, categories) {
				k := cellKey{row, col}
				sums[k] += days
				counts[k]++
			}
		}
	}

	cells := make([]HeatmapCell, 0, len(counts))
	for k, n := range counts {
		cells = append(cells, HeatmapCell{
			Row:           k.row,
			Col:           k.col,
			Orders:        n,
			MeanDelayDays: sums[k] / float64(n),
		})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}
