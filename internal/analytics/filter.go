package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Filter restricts the enriched row-set that every metric module consumes.
// Zero-value fields mean no restriction. Filtering happens once, upstream of
// all modules, so every metric on a view shares the same denominator
// population.
type Filter struct {
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	State    string     `json:"state" validate:"omitempty,len=2,alpha"`
	Category string     `json:"category"`
}

// IsZero reports whether the filter is the identity filter
func (f Filter) IsZero() bool {
	return f.DateFrom == nil && f.DateTo == nil && f.State == "" && f.Category == ""
}

// Validate checks the filter parameters
func (f Filter) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return fmt.Errorf("invalid filter: date_to %s precedes date_from %s",
			f.DateTo.Format("2006-01-02"), f.DateFrom.Format("2006-01-02"))
	}
	return nil
}

// Key returns a canonical cache key for the filter
func (f Filter) Key() string {
	var b strings.Builder
	if f.DateFrom != nil {
		b.WriteString(f.DateFrom.UTC().Format(time.RFC3339))
	}
	b.WriteByte('|')
	if f.DateTo != nil {
		b.WriteString(f.DateTo.UTC().Format(time.RFC3339))
	}
	b.WriteByte('|')
	b.WriteString(strings.ToUpper(f.State))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(f.Category))
	return b.String()
}

// matches reports whether a row passes the filter. Date bounds are inclusive
// and apply to the purchase timestamp.
func (f Filter) matches(r EnrichedRow) bool {
	if f.DateFrom != nil && r.PurchasedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.PurchasedAt.After(*f.DateTo) {
		return false
	}
	if f.State != "" && !strings.EqualFold(f.State, r.CustomerState) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, r.Category) {
		return false
	}
	return true
}

// Filter returns a snapshot restricted to the rows the filter admits. A
// filter admitting zero rows is a valid state: every module returns empty or
// undefined results for it. Gap counters carry over unchanged since they
// describe the underlying load, not the view.
func (s *Snapshot) Filter(f Filter) *Snapshot {
	if f.IsZero() {
		return s
	}

	out := &Snapshot{
		missingOrders:   s.missingOrders,
		missingProducts: s.missingProducts,
	}
	keep := make(map[string]bool)
	for _, row := range s.rows {
		if f.matches(row) {
			out.rows = append(out.rows, row)
			keep[row.OrderID] = true
		}
	}
	for _, o := range s.orders {
		if keep[o.OrderID] {
			out.orders = append(out.orders, o)
		}
	}
	return out
}
