package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Table names used in schema errors
const (
	TableOrderItems = "order_items"
	TableProducts   = "products"
	TableOrders     = "orders"
)

// SchemaError reports required columns missing from a raw table. It is
// fatal: no computation proceeds on a table with an incomplete schema.
type SchemaError struct {
	Table   string
	Missing []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s is missing required columns: %s",
		e.Table, strings.Join(e.Missing, ", "))
}

// Required columns per table. Column matching is case-insensitive and
// tolerates the long-form names of the upstream export.
var (
	orderItemColumns = map[string][]string{
		"order_id":      {"order_id"},
		"product_id":    {"product_id"},
		"seller_id":     {"seller_id"},
		"price":         {"price"},
		"freight_value": {"freight_value"},
	}

	productColumns = map[string][]string{
		"product_id": {"product_id"},
		"category":   {"category", "product_category_name"},
		"weight_g":   {"weight_g", "product_weight_g"},
		"length_cm":  {"length_cm", "product_length_cm"},
		"height_cm":  {"height_cm", "product_height_cm"},
		"width_cm":   {"width_cm", "product_width_cm"},
	}

	orderColumns = map[string][]string{
		"order_id":            {"order_id"},
		"customer_state":      {"customer_state"},
		"purchase_timestamp":  {"purchase_timestamp", "order_purchase_timestamp"},
		"approved_timestamp":  {"approved_timestamp", "order_approved_at"},
		"carrier_timestamp":   {"carrier_handoff_timestamp", "order_delivered_carrier_date"},
		"delivered_timestamp": {"delivered_timestamp", "order_delivered_customer_date"},
		"estimated_timestamp": {"estimated_delivery_timestamp", "order_estimated_delivery_date"},
	}
)

// columnIndex maps canonical column names to their position in the header
type columnIndex map[string]int

// indexColumns validates a header against the required column set and
// returns the canonical-name-to-position index. All missing columns are
// collected into a single SchemaError.
func indexColumns(table string, header []string, required map[string][]string) (columnIndex, error) {
	normalized := make(map[string]int, len(header))
	for i, col := range header {
		normalized[normalizeColumn(col)] = i
	}

	idx := make(columnIndex, len(required))
	var missing []string
	for canonical, aliases := range required {
		found := false
		for _, alias := range aliases {
			if pos, ok := normalized[alias]; ok {
				idx[canonical] = pos
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, canonical)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &SchemaError{Table: table, Missing: missing}
	}
	return idx, nil
}

// normalizeColumn strips BOM and zero-width characters and lowercases
func normalizeColumn(col string) string {
	col = strings.TrimSpace(col)
	col = strings.TrimPrefix(col, "\uFEFF")
	col = strings.TrimLeft(col, "\u200B\u200C\u200D\u2060\uFEFF")
	return strings.ToLower(strings.TrimSpace(col))
}
