package analytics

import "sort"

// StatePerformance aggregates delivery performance for one customer state.
// States below the minimum order count are still reported, flagged as
// low-confidence rather than suppressed.
type StatePerformance struct {
	State     string `json:"state"`
	Orders    int    `json:"orders"`
	Delivered int    `json:"delivered"`

	MeanDeliveryDays Rate `json:"mean_delivery_days"`

	OnTime   int `json:"on_time"`
	Minor    int `json:"minor"`
	Moderate int `json:"moderate"`
	Severe   int `json:"severe"`

	SLARate       Rate `json:"sla_rate"`
	LowConfidence bool `json:"low_confidence"`
}

// PerformanceByState groups orders by customer state and computes order
// count, mean purchase-to-delivery duration, the delay severity distribution
// and the SLA compliance rate. minOrders below 1 falls back to
// DefaultLowConfidenceOrders. Output is sorted by descending order count,
// then ascending state.
func (s *Snapshot) PerformanceByState(minOrders int) []StatePerformance {
	if minOrders < 1 {
		minOrders = DefaultLowConfidenceOrders
	}

	perState := make(map[string]*StatePerformance)
	deliveryDays := make(map[string][]float64)
	judged := make(map[string]int)
	compliant := make(map[string]int)

	for _, o := range s.orders {
		sp, ok := perState[o.CustomerState]
		if !ok {
			sp = &StatePerformance{State: o.CustomerState}
			perState[o.CustomerState] = sp
		}
		sp.Orders++
		if o.Delivered() {
			sp.Delivered++
		}
		if days, ok := o.DeliveryDays(); ok {
			deliveryDays[o.CustomerState] = append(deliveryDays[o.CustomerState], days)
		}
		if days, ok := o.DelayDays(); ok {
			judged[o.CustomerState]++
			switch ClassifyDelay(days) {
			case SeverityOnTime:
				sp.OnTime++
			case SeverityMinor:
				sp.Minor++
			case SeverityModerate:
				sp.Moderate++
			case SeveritySevere:
				sp.Severe++
			}
			if days <= 0 {
				compliant[o.CustomerState]++
			}
		}
	}

	out := make([]StatePerformance, 0, len(perState))
	for state, sp := range perState {
		if days := deliveryDays[state]; len(days) > 0 {
			total := 0.0
			for _, d := range days {
				total += d
			}
			sp.MeanDeliveryDays = DefinedRate(total / float64(len(days)))
		}
		if judged[state] > 0 {
			sp.SLARate = DefinedRate(float64(compliant[state]) / float64(judged[state]))
		}
		sp.LowConfidence = sp.Orders < minOrders
		out = append(out, *sp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Orders != out[j].Orders {
			return out[i].Orders > out[j].Orders
		}
		return out[i].State < out[j].State
	})
	return out
}
