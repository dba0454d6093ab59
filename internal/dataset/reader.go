package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shoppulse/internal/analytics"
)

// timestampLayout is the wire format of all order timestamps
const timestampLayout = "2006-01-02 15:04:05"

// Reader parses raw CSV tables into typed records. Malformed rows are
// skipped and logged; a missing required column aborts the whole read.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a Reader with the given logger
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ReadOrderItems parses the order items table
func (r *Reader) ReadOrderItems(ctx context.Context, src io.Reader) ([]analytics.OrderItem, error) {
	cr := newCSVReader(src)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read order items header: %w", err)
	}
	idx, err := indexColumns(TableOrderItems, header, orderItemColumns)
	if err != nil {
		return nil, err
	}

	var items []analytics.OrderItem
	skipped := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				skipped++
				r.logger.WarnContext(ctx, "skipping short order item row",
					slog.Int("line", line))
				continue
			}
			return nil, fmt.Errorf("failed to read order items row %d: %w", line, err)
		}

		price, perr := parseDecimal(record[idx["price"]])
		freight, ferr := parseDecimal(record[idx["freight_value"]])
		item := analytics.OrderItem{
			OrderID:      strings.TrimSpace(record[idx["order_id"]]),
			ProductID:    strings.TrimSpace(record[idx["product_id"]]),
			SellerID:     strings.TrimSpace(record[idx["seller_id"]]),
			Price:        price,
			FreightValue: freight,
		}
		if perr != nil || ferr != nil || !item.IsValid() {
			skipped++
			r.logger.WarnContext(ctx, "skipping malformed order item row",
				slog.Int("line", line),
				slog.String("order_id", item.OrderID))
			continue
		}
		items = append(items, item)
	}

	r.logger.InfoContext(ctx, "order items loaded",
		slog.Int("rows", len(items)),
		slog.Int("skipped", skipped))
	return items, nil
}

// ReadProducts parses the products table
func (r *Reader) ReadProducts(ctx context.Context, src io.Reader) ([]analytics.Product, error) {
	cr := newCSVReader(src)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read products header: %w", err)
	}
	idx, err := indexColumns(TableProducts, header, productColumns)
	if err != nil {
		return nil, err
	}

	var products []analytics.Product
	skipped := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				skipped++
				r.logger.WarnContext(ctx, "skipping short product row",
					slog.Int("line", line))
				continue
			}
			return nil, fmt.Errorf("failed to read products row %d: %w", line, err)
		}

		p := analytics.Product{
			ProductID: strings.TrimSpace(record[idx["product_id"]]),
			Category:  strings.TrimSpace(record[idx["category"]]),
			WeightG:   parseOptionalFloat(record[idx["weight_g"]]),
			LengthCM:  parseOptionalFloat(record[idx["length_cm"]]),
			HeightCM:  parseOptionalFloat(record[idx["height_cm"]]),
			WidthCM:   parseOptionalFloat(record[idx["width_cm"]]),
		}
		if p.ProductID == "" {
			skipped++
			r.logger.WarnContext(ctx, "skipping product row without product_id",
				slog.Int("line", line))
			continue
		}
		products = append(products, p)
	}

	r.logger.InfoContext(ctx, "products loaded",
		slog.Int("rows", len(products)),
		slog.Int("skipped", skipped))
	return products, nil
}

// ReadOrders parses the orders table
func (r *Reader) ReadOrders(ctx context.Context, src io.Reader) ([]analytics.Order, error) {
	cr := newCSVReader(src)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read orders header: %w", err)
	}
	idx, err := indexColumns(TableOrders, header, orderColumns)
	if err != nil {
		return nil, err
	}

	var orders []analytics.Order
	skipped := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				skipped++
				r.logger.WarnContext(ctx, "skipping short order row",
					slog.Int("line", line))
				continue
			}
			return nil, fmt.Errorf("failed to read orders row %d: %w", line, err)
		}

		purchased, perr := time.Parse(timestampLayout, strings.TrimSpace(record[idx["purchase_timestamp"]]))
		order := analytics.Order{
			OrderID:             strings.TrimSpace(record[idx["order_id"]]),
			CustomerState:       strings.ToUpper(strings.TrimSpace(record[idx["customer_state"]])),
			PurchasedAt:         purchased,
			ApprovedAt:          parseOptionalTime(record[idx["approved_timestamp"]]),
			CarrierHandoffAt:    parseOptionalTime(record[idx["carrier_timestamp"]]),
			DeliveredAt:         parseOptionalTime(record[idx["delivered_timestamp"]]),
			EstimatedDeliveryAt: parseOptionalTime(record[idx["estimated_timestamp"]]),
		}
		if perr != nil || order.OrderID == "" {
			skipped++
			r.logger.WarnContext(ctx, "skipping malformed order row",
				slog.Int("line", line),
				slog.String("order_id", order.OrderID))
			continue
		}
		orders = append(orders, order)
	}

	r.logger.InfoContext(ctx, "orders loaded",
		slog.Int("rows", len(orders)),
		slog.Int("skipped", skipped))
	return orders, nil
}

// newCSVReader configures a csv.Reader tolerant of ragged quoting
func newCSVReader(src io.Reader) *csv.Reader {
	cr := csv.NewReader(src)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value")
	}
	return decimal.NewFromString(s)
}

// parseOptionalFloat returns nil for blank or unparseable values
func parseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseOptionalTime returns nil for blank or unparseable timestamps
func parseOptionalTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
