package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freightFixture(t *testing.T) *Snapshot {
	t.Helper()
	items := []OrderItem{
		mkItem("o1", "p1", "s1", "100.00", "10.00"), // 2kg, 0.01m3
		mkItem("o1", "p2", "s1", "50.00", "20.00"),  // 4kg, 0.04m3
		mkItem("o2", "p3", "s2", "30.00", "5.00"),   // no dimensions
	}
	products := []Product{
		{ProductID: "p1", Category: "toys", WeightG: fp(2000), LengthCM: fp(10), HeightCM: fp(10), WidthCM: fp(100)},
		{ProductID: "p2", Category: "toys", WeightG: fp(4000), LengthCM: fp(20), HeightCM: fp(20), WidthCM: fp(100)},
		{ProductID: "p3", Category: "garden"},
	}
	orders := []Order{
		deliveredOrder("o1", "SP", "2018-01-01 00:00:00", "", ""),
		deliveredOrder("o2", "RJ", "2018-01-02 00:00:00", "", ""),
	}
	return testEngine().BuildSnapshot(context.Background(), items, products, orders)
}

func TestFreightEfficiency(t *testing.T) {
	snap := freightFixture(t)

	fe := snap.FreightEfficiency()
	assert.True(t, fe.TotalFreight.Equal(dec("35.00")))
	assert.True(t, fe.TotalRevenue.Equal(dec("180.00")))
	require.True(t, fe.FreightShareOfGross.Valid)
	assert.InDelta(t, 35.0/215.0, fe.FreightShareOfGross.Value, 1e-9)

	assert.Equal(t, 2, fe.MeasuredItems)
	assert.Equal(t, 1, fe.UnmeasuredItems, "rows without dimensions stay in totals but not ratios")

	// Mean of per-row ratios: (10/2 + 20/4) / 2 = 5.0 per kg;
	// (10/0.01 + 20/0.04) / 2 = 750 per m3.
	require.True(t, fe.MeanFreightPerKg.Valid)
	assert.InDelta(t, 5.0, fe.MeanFreightPerKg.Value, 1e-9)
	require.True(t, fe.MeanFreightPerM3.Valid)
	assert.InDelta(t, 750.0, fe.MeanFreightPerM3.Value, 1e-9)
}

func TestFreightEfficiencyNoMeasuredItems(t *testing.T) {
	items := []OrderItem{mkItem("o1", "p1", "s1", "10.00", "2.00")}
	orders := []Order{deliveredOrder("o1", "SP", "2018-01-01 00:00:00", "", "")}
	snap := testEngine().BuildSnapshot(context.Background(), items, nil, orders)

	fe := snap.FreightEfficiency()
	assert.Equal(t, 0, fe.MeasuredItems)
	assert.False(t, fe.MeanFreightPerKg.Valid, "no measured items means undefined, not zero")
	assert.False(t, fe.MeanFreightPerM3.Valid)
}

func TestFreightByCategory(t *testing.T) {
	snap := freightFixture(t)

	categories := snap.FreightByCategory()
	require.Len(t, categories, 2)

	// Sorted by descending total freight
	toys := categories[0]
	assert.Equal(t, "toys", toys.Category)
	assert.Equal(t, 2, toys.Items)
	assert.Equal(t, 2, toys.MeasuredItems)
	assert.True(t, toys.TotalFreight.Equal(dec("30.00")))
	require.True(t, toys.MeanFreightPerKg.Valid)
	assert.InDelta(t, 5.0, toys.MeanFreightPerKg.Value, 1e-9)

	garden := categories[1]
	assert.Equal(t, "garden", garden.Category)
	assert.Equal(t, 1, garden.Items)
	assert.Equal(t, 0, garden.MeasuredItems)
	assert.False(t, garden.MeanFreightPerKg.Valid)
}
