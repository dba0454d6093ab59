package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FreightEfficiency summarizes freight cost against product mass and volume.
// Rows lacking weight or dimensions are excluded from the ratios but still
// counted in the aggregate freight totals.
type FreightEfficiency struct {
	TotalFreight decimal.Decimal `json:"total_freight"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`

	FreightShareOfGross Rate `json:"freight_share_of_gross"`

	MeasuredItems   int `json:"measured_items"`
	UnmeasuredItems int `json:"unmeasured_items"`

	MeanFreightPerKg Rate `json:"mean_freight_per_kg"`
	MeanFreightPerM3 Rate `json:"mean_freight_per_m3"`
}

// CategoryFreight is the freight efficiency breakdown for one category
type CategoryFreight struct {
	Category         string          `json:"category"`
	Items            int             `json:"items"`
	MeasuredItems    int             `json:"measured_items"`
	TotalFreight     decimal.Decimal `json:"total_freight"`
	MeanFreightPerKg Rate            `json:"mean_freight_per_kg"`
	MeanFreightPerM3 Rate            `json:"mean_freight_per_m3"`
}

// FreightEfficiency computes freight-value-per-kilogram and
// freight-value-per-cubic-meter as the mean of per-row ratios over
// dimension-complete rows.
func (s *Snapshot) FreightEfficiency() FreightEfficiency {
	fe := FreightEfficiency{
		TotalFreight: s.TotalFreight(),
		TotalRevenue: s.TotalRevenue(),
	}
	gross := fe.TotalFreight.Add(fe.TotalRevenue)
	if gross.IsPositive() {
		fe.FreightShareOfGross = DefinedRate(fe.TotalFreight.InexactFloat64() / gross.InexactFloat64())
	}

	perKgSum, perM3Sum := 0.0, 0.0
	for _, r := range s.rows {
		kg, kgOK := r.WeightKG()
		m3, m3OK := r.VolumeM3()
		if !kgOK || !m3OK {
			fe.UnmeasuredItems++
			continue
		}
		fe.MeasuredItems++
		freight := r.FreightValue.InexactFloat64()
		perKgSum += freight / kg
		perM3Sum += freight / m3
	}
	if fe.MeasuredItems > 0 {
		fe.MeanFreightPerKg = DefinedRate(perKgSum / float64(fe.MeasuredItems))
		fe.MeanFreightPerM3 = DefinedRate(perM3Sum / float64(fe.MeasuredItems))
	}
	return fe
}

// FreightByCategory breaks freight efficiency down per category, sorted by
// descending total freight with ascending category as tie-break.
func (s *Snapshot) FreightByCategory() []CategoryFreight {
	type acc struct {
		items, measured  int
		freight          decimal.Decimal
		perKgSum, m3Sum  float64
	}
	byCategory := make(map[string]*acc)

	for _, r := range s.rows {
		a, ok := byCategory[r.Category]
		if !ok {
			a = &acc{freight: decimal.Zero}
			byCategory[r.Category] = a
		}
		a.items++
		a.freight = a.freight.Add(r.FreightValue)

		kg, kgOK := r.WeightKG()
		m3, m3OK := r.VolumeM3()
		if kgOK && m3OK {
			a.measured++
			freight := r.FreightValue.InexactFloat64()
			a.perKgSum += freight / kg
			a.m3Sum += freight / m3
		}
	}

	out := make([]CategoryFreight, 0, len(byCategory))
	for category, a := range byCategory {
		cf := CategoryFreight{
			Category:      category,
			Items:         a.items,
			MeasuredItems: a.measured,
			TotalFreight:  a.freight,
		}
		if a.measured > 0 {
			cf.MeanFreightPerKg = DefinedRate(a.perKgSum / float64(a.measured))
			cf.MeanFreightPerM3 = DefinedRate(a.m3Sum / float64(a.measured))
		}
		out = append(out, cf)
	}
	sort.Slice(out, func(i, j int) bool {
		cmp := out[i].TotalFreight.Cmp(out[j].TotalFreight)
		if cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
