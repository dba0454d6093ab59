package analytics

import (
	"context"
	"log/slog"
	"sort"
)

// Engine builds immutable snapshots from the three raw tables
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a new analytics engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Snapshot is an immutable enriched row-set plus the data-quality counters
// recorded while joining. All metric methods are pure functions of the
// snapshot, so concurrent invocation needs no locking.
type Snapshot struct {
	rows   []EnrichedRow
	orders []Order // distinct orders backing the rows, sorted by order ID

	missingOrders   int
	missingProducts int
}

// BuildSnapshot joins the three raw tables into an enriched row-set.
//
// Order items are left-joined to products (a missing product keeps the row
// with category "unknown" and nil dimensions) and inner-joined to orders (a
// missing order drops the row). Both gap kinds are counted on the snapshot
// so callers can surface a data-quality warning; neither aborts the build.
func (e *Engine) BuildSnapshot(ctx context.Context, items []OrderItem, products []Product, orders []Order) *Snapshot {
	productIdx := make(map[string]Product, len(products))
	for _, p := range products {
		productIdx[p.ProductID] = p
	}
	orderIdx := make(map[string]Order, len(orders))
	for _, o := range orders {
		orderIdx[o.OrderID] = o
	}

	snap := &Snapshot{rows: make([]EnrichedRow, 0, len(items))}
	seenOrders := make(map[string]bool)

	for _, item := range items {
		order, ok := orderIdx[item.OrderID]
		if !ok {
			snap.missingOrders++
			continue
		}

		row := EnrichedRow{
			OrderID:      item.OrderID,
			ProductID:    item.ProductID,
			SellerID:     item.SellerID,
			Price:        item.Price,
			FreightValue: item.FreightValue,

			Category: UnknownCategory,

			CustomerState:       order.CustomerState,
			PurchasedAt:         order.PurchasedAt,
			ApprovedAt:          order.ApprovedAt,
			CarrierHandoffAt:    order.CarrierHandoffAt,
			DeliveredAt:         order.DeliveredAt,
			EstimatedDeliveryAt: order.EstimatedDeliveryAt,
		}

		if product, ok := productIdx[item.ProductID]; ok {
			if product.Category != "" {
				row.Category = product.Category
			}
			row.WeightG = product.WeightG
			row.LengthCM = product.LengthCM
			row.HeightCM = product.HeightCM
			row.WidthCM = product.WidthCM
		} else {
			snap.missingProducts++
		}

		snap.rows = append(snap.rows, row)
		if !seenOrders[order.OrderID] {
			seenOrders[order.OrderID] = true
			snap.orders = append(snap.orders, order)
		}
	}

	sort.Slice(snap.orders, func(i, j int) bool {
		return snap.orders[i].OrderID < snap.orders[j].OrderID
	})

	if snap.missingOrders > 0 || snap.missingProducts > 0 {
		e.logger.WarnContext(ctx, "referential gaps during enrichment",
			"rows_dropped_missing_order", snap.missingOrders,
			"rows_missing_product", snap.missingProducts,
		)
	}
	e.logger.InfoContext(ctx, "snapshot built",
		"rows", len(snap.rows),
		"orders", len(snap.orders),
	)

	return snap
}

// RowCount returns the number of enriched rows
func (s *Snapshot) RowCount() int {
	return len(s.rows)
}

// OrderCount returns the number of distinct orders backing the rows
func (s *Snapshot) OrderCount() int {
	return len(s.orders)
}

// Rows returns a copy of the enriched rows
func (s *Snapshot) Rows() []EnrichedRow {
	out := make([]EnrichedRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// Orders returns a copy of the distinct orders backing the rows
func (s *Snapshot) Orders() []Order {
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// MissingOrders returns the count of order items dropped because their order
// did not resolve
func (s *Snapshot) MissingOrders() int {
	return s.missingOrders
}

// MissingProducts returns the count of order items whose product did not
// resolve (rows retained, category "unknown")
func (s *Snapshot) MissingProducts() int {
	return s.missingProducts
}
