package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Dimension selects the grouping key for revenue and concentration metrics
type Dimension int

const (
	// DimensionCategory groups by product category
	DimensionCategory Dimension = iota
	// DimensionSeller groups by seller
	DimensionSeller
)

// String returns the string representation of the dimension
func (d Dimension) String() string {
	switch d {
	case DimensionCategory:
		return "category"
	case DimensionSeller:
		return "seller"
	default:
		return "unknown"
	}
}

// ParseDimension parses a dimension name
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "category":
		return DimensionCategory, nil
	case "seller", "vendor":
		return DimensionSeller, nil
	default:
		return 0, fmt.Errorf("unknown dimension %q (expected category or seller)", s)
	}
}

// Metric selects which currency column a breakdown aggregates
type Metric int

const (
	// MetricPrice sums item prices (freight excluded)
	MetricPrice Metric = iota
	// MetricFreight sums freight values
	MetricFreight
	// MetricGross sums price plus freight
	MetricGross
)

// String returns the string representation of the metric
func (m Metric) String() string {
	switch m {
	case MetricPrice:
		return "price"
	case MetricFreight:
		return "freight"
	case MetricGross:
		return "gross"
	default:
		return "unknown"
	}
}

// DelaySeverity buckets how late a delivered order arrived relative to the
// estimated delivery date
type DelaySeverity int

const (
	SeverityOnTime DelaySeverity = iota
	SeverityMinor
	SeverityModerate
	SeveritySevere
)

// String returns the string representation of the severity bucket
func (ds DelaySeverity) String() string {
	switch ds {
	case SeverityOnTime:
		return "on_time"
	case SeverityMinor:
		return "minor"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	default:
		return "unknown"
	}
}

// Severity thresholds in days. Boundaries are closed on the upper end:
// a delay of exactly MinorDelayMaxDays classifies as minor.
const (
	MinorDelayMaxDays    = 3.0
	ModerateDelayMaxDays = 7.0
)

// DefaultLowConfidenceOrders is the minimum order count below which a state
// aggregate is flagged as a small sample.
const DefaultLowConfidenceOrders = 30

// UnknownCategory is assigned to order items whose product is missing from
// the catalog or carries no category.
const UnknownCategory = "unknown"

const hoursPerDay = 24.0

// ClassifyDelay classifies a delivery delay in days (negative = early) into
// a severity bucket.
func ClassifyDelay(days float64) DelaySeverity {
	switch {
	case days <= 0:
		return SeverityOnTime
	case days <= MinorDelayMaxDays:
		return SeverityMinor
	case days <= ModerateDelayMaxDays:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// Rate is a ratio that may be undefined when its denominator population is
// empty. An undefined rate marshals as JSON null so callers can distinguish
// "0%" from "no data".
type Rate struct {
	Value float64
	Valid bool
}

// DefinedRate returns a valid rate with the given value
func DefinedRate(v float64) Rate {
	return Rate{Value: v, Valid: true}
}

// UndefinedRate returns an undefined rate
func UndefinedRate() Rate {
	return Rate{}
}

// MarshalJSON implements json.Marshaler
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Rate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Rate{}
		return nil
	}
	r.Valid = true
	return json.Unmarshal(data, &r.Value)
}

// OrderItem is one sale line: a product sold by a seller within an order
type OrderItem struct {
	OrderID      string          `json:"order_id"`
	ProductID    string          `json:"product_id"`
	SellerID     string          `json:"seller_id"`
	Price        decimal.Decimal `json:"price"`
	FreightValue decimal.Decimal `json:"freight_value"`
}

// IsValid checks that the item carries the keys every join depends on
func (oi OrderItem) IsValid() bool {
	return oi.OrderID != "" && oi.ProductID != "" && oi.SellerID != "" &&
		!oi.Price.IsNegative() && !oi.FreightValue.IsNegative()
}

// Product is a catalog entry. Dimensional attributes are nil when the catalog
// does not record them; such products are excluded from dimensional ratios
// but never from revenue.
type Product struct {
	ProductID string   `json:"product_id"`
	Category  string   `json:"category"`
	WeightG   *float64 `json:"weight_g"`
	LengthCM  *float64 `json:"length_cm"`
	HeightCM  *float64 `json:"height_cm"`
	WidthCM   *float64 `json:"width_cm"`
}

// HasDimensions reports whether weight and all three linear dimensions are
// present and positive
func (p Product) HasDimensions() bool {
	for _, v := range []*float64{p.WeightG, p.LengthCM, p.HeightCM, p.WidthCM} {
		if v == nil || *v <= 0 {
			return false
		}
	}
	return true
}

// Order is one order lifecycle record. All timestamps after purchase are
// nullable; an order without a delivered timestamp is excluded from delay and
// SLA computations but still counts toward revenue.
type Order struct {
	OrderID             string     `json:"order_id"`
	CustomerState       string     `json:"customer_state"`
	PurchasedAt         time.Time  `json:"purchased_at"`
	ApprovedAt          *time.Time `json:"approved_at"`
	CarrierHandoffAt    *time.Time `json:"carrier_handoff_at"`
	DeliveredAt         *time.Time `json:"delivered_at"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at"`
}

// Delivered reports whether the order reached the customer
func (o Order) Delivered() bool {
	return o.DeliveredAt != nil
}

// DelayDays returns the delivery delay in days relative to the estimate
// (negative = early). The second return is false when the order is not yet
// delivered or has no estimate.
func (o Order) DelayDays() (float64, bool) {
	if o.DeliveredAt == nil || o.EstimatedDeliveryAt == nil {
		return 0, false
	}
	return o.DeliveredAt.Sub(*o.EstimatedDeliveryAt).Hours() / hoursPerDay, true
}

// DeliveryDays returns the purchase-to-delivery duration in days
func (o Order) DeliveryDays() (float64, bool) {
	if o.DeliveredAt == nil {
		return 0, false
	}
	return o.DeliveredAt.Sub(o.PurchasedAt).Hours() / hoursPerDay, true
}

// EnrichedRow is one order item joined with its product and order attributes.
// Every enriched row has a resolvable order; rows referencing a missing order
// are dropped during snapshot construction and surface as a gap count.
type EnrichedRow struct {
	OrderID      string          `json:"order_id"`
	ProductID    string          `json:"product_id"`
	SellerID     string          `json:"seller_id"`
	Price        decimal.Decimal `json:"price"`
	FreightValue decimal.Decimal `json:"freight_value"`

	Category string   `json:"category"`
	WeightG  *float64 `json:"weight_g"`
	LengthCM *float64 `json:"length_cm"`
	HeightCM *float64 `json:"height_cm"`
	WidthCM  *float64 `json:"width_cm"`

	CustomerState       string     `json:"customer_state"`
	PurchasedAt         time.Time  `json:"purchased_at"`
	ApprovedAt          *time.Time `json:"approved_at"`
	CarrierHandoffAt    *time.Time `json:"carrier_handoff_at"`
	DeliveredAt         *time.Time `json:"delivered_at"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at"`
}

// Gross returns price plus freight
func (r EnrichedRow) Gross() decimal.Decimal {
	return r.Price.Add(r.FreightValue)
}

// WeightKG returns the product weight in kilograms
func (r EnrichedRow) WeightKG() (float64, bool) {
	if r.WeightG == nil || *r.WeightG <= 0 {
		return 0, false
	}
	return *r.WeightG / 1000.0, true
}

// VolumeM3 returns the product volume in cubic meters
func (r EnrichedRow) VolumeM3() (float64, bool) {
	for _, v := range []*float64{r.LengthCM, r.HeightCM, r.WidthCM} {
		if v == nil || *v <= 0 {
			return 0, false
		}
	}
	return (*r.LengthCM) * (*r.HeightCM) * (*r.WidthCM) / 1_000_000.0, true
}

// HasDimensions reports whether the row supports freight-per-kg and
// freight-per-volume ratios
func (r EnrichedRow) HasDimensions() bool {
	_, wOK := r.WeightKG()
	_, vOK := r.VolumeM3()
	return wOK && vOK
}
