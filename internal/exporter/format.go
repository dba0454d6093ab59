package exporter

import (
	"strconv"

	"github.com/shopspring/decimal"

	"shoppulse/internal/analytics"
)

// FormatDecimal renders a monetary amount with two fractional digits
func FormatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatRate renders a rate, or an empty cell when the rate is undefined.
// An undefined rate must stay distinguishable from zero in exports.
func FormatRate(r analytics.Rate) string {
	if !r.Valid {
		return ""
	}
	return strconv.FormatFloat(r.Value, 'f', 4, 64)
}

// FormatFloat renders a plain float with four fractional digits
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// FormatInt renders an integer count
func FormatInt(n int) string {
	return strconv.Itoa(n)
}

// FormatBool renders a boolean flag as true or false
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}
