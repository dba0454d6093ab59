package analytics

import "sort"

// GlobalScope is the scope label of the whole-population SLA rate
const GlobalScope = "global"

// ScopedRate is the SLA compliance rate of one scope. The rate is undefined,
// never zero, when the scope has no delivered orders with a known estimate.
type ScopedRate struct {
	Scope     string `json:"scope"`
	Delivered int    `json:"delivered"`
	Compliant int    `json:"compliant"`
	Rate      Rate   `json:"rate"`
}

func scopedRate(scope string, delivered, compliant int) ScopedRate {
	sr := ScopedRate{Scope: scope, Delivered: delivered, Compliant: compliant}
	if delivered > 0 {
		sr.Rate = DefinedRate(float64(compliant) / float64(delivered))
	}
	return sr
}

// SLAComplianceGlobal returns the fraction of delivered orders that arrived
// on or before the estimated delivery date.
func (s *Snapshot) SLAComplianceGlobal() ScopedRate {
	delivered, compliant := 0, 0
	for _, o := range s.orders {
		days, ok := o.DelayDays()
		if !ok {
			continue
		}
		delivered++
		if days <= 0 {
			compliant++
		}
	}
	return scopedRate(GlobalScope, delivered, compliant)
}

// SLAComplianceByState returns per-state SLA compliance, sorted by state
func (s *Snapshot) SLAComplianceByState() []ScopedRate {
	delivered := make(map[string]int)
	compliant := make(map[string]int)
	for _, o := range s.orders {
		days, ok := o.DelayDays()
		if !ok {
			continue
		}
		delivered[o.CustomerState]++
		if days <= 0 {
			compliant[o.CustomerState]++
		}
	}
	return sortedScopes(delivered, compliant)
}

// SLAComplianceByCategory returns per-category SLA compliance. An order with
// items in several categories counts toward each of them. Sorted by category.
func (s *Snapshot) SLAComplianceByCategory() []ScopedRate {
	orderCategories := make(map[string]map[string]bool)
	for _, r := range s.rows {
		if orderCategories[r.OrderID] == nil {
			orderCategories[r.OrderID] = make(map[string]bool)
		}
		orderCategories[r.OrderID][r.Category] = true
	}

	delivered := make(map[string]int)
	compliant := make(map[string]int)
	for _, o := range s.orders {
		days, ok := o.DelayDays()
		if !ok {
			continue
		}
		for category := range orderCategories[o.OrderID] {
			delivered[category]++
			if days <= 0 {
				compliant[category]++
			}
		}
	}
	return sortedScopes(delivered, compliant)
}

func sortedScopes(delivered, compliant map[string]int) []ScopedRate {
	out := make([]ScopedRate, 0, len(delivered))
	for scope, n := range delivered {
		out = append(out, scopedRate(scope, n, compliant[scope]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Scope < out[j].Scope })
	return out
}
