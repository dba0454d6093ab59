package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDelay(t *testing.T) {
	tests := []struct {
		name     string
		days     float64
		expected DelaySeverity
	}{
		{"ten days early", -10, SeverityOnTime},
		{"exactly on time", 0, SeverityOnTime},
		{"one day late", 1, SeverityMinor},
		{"boundary three days", 3, SeverityMinor},
		{"just past minor boundary", 3.0001, SeverityModerate},
		{"boundary seven days", 7, SeverityModerate},
		{"just past moderate boundary", 7.0001, SeveritySevere},
		{"very late", 30, SeveritySevere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyDelay(tt.days))
		})
	}
}

func TestDelaySeverityString(t *testing.T) {
	assert.Equal(t, "on_time", SeverityOnTime.String())
	assert.Equal(t, "minor", SeverityMinor.String())
	assert.Equal(t, "moderate", SeverityModerate.String())
	assert.Equal(t, "severe", SeveritySevere.String())
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		input    string
		expected Dimension
		wantErr  bool
	}{
		{"category", DimensionCategory, false},
		{"seller", DimensionSeller, false},
		{"vendor", DimensionSeller, false},
		{" Category ", DimensionCategory, false},
		{"warehouse", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dim, err := ParseDimension(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dim)
		})
	}
}

func TestRateJSON(t *testing.T) {
	t.Run("undefined marshals as null", func(t *testing.T) {
		data, err := json.Marshal(UndefinedRate())
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})

	t.Run("zero stays distinguishable from undefined", func(t *testing.T) {
		data, err := json.Marshal(DefinedRate(0))
		require.NoError(t, err)
		assert.Equal(t, "0", string(data))
	})

	t.Run("round trip", func(t *testing.T) {
		data, err := json.Marshal(DefinedRate(0.375))
		require.NoError(t, err)

		var r Rate
		require.NoError(t, json.Unmarshal(data, &r))
		assert.True(t, r.Valid)
		assert.Equal(t, 0.375, r.Value)

		require.NoError(t, json.Unmarshal([]byte("null"), &r))
		assert.False(t, r.Valid)
	})
}

func TestOrderDelayDays(t *testing.T) {
	t.Run("two days late", func(t *testing.T) {
		o := Order{
			PurchasedAt:         ts("2018-01-01 00:00:00"),
			DeliveredAt:         tp("2018-01-10 00:00:00"),
			EstimatedDeliveryAt: tp("2018-01-08 00:00:00"),
		}
		days, ok := o.DelayDays()
		require.True(t, ok)
		assert.InDelta(t, 2.0, days, 1e-9)
	})

	t.Run("early delivery is negative", func(t *testing.T) {
		o := Order{
			DeliveredAt:         tp("2018-01-05 00:00:00"),
			EstimatedDeliveryAt: tp("2018-01-08 00:00:00"),
		}
		days, ok := o.DelayDays()
		require.True(t, ok)
		assert.InDelta(t, -3.0, days, 1e-9)
	})

	t.Run("undefined without delivery or estimate", func(t *testing.T) {
		_, ok := Order{DeliveredAt: tp("2018-01-05 00:00:00")}.DelayDays()
		assert.False(t, ok)

		_, ok = Order{EstimatedDeliveryAt: tp("2018-01-08 00:00:00")}.DelayDays()
		assert.False(t, ok)
	})
}

func TestOrderItemIsValid(t *testing.T) {
	valid := mkItem("o1", "p1", "s1", "10.00", "0.00")
	assert.True(t, valid.IsValid())

	missingSeller := valid
	missingSeller.SellerID = ""
	assert.False(t, missingSeller.IsValid())

	negative := valid
	negative.Price = dec("-1.00")
	assert.False(t, negative.IsValid())
}

func TestProductHasDimensions(t *testing.T) {
	complete := Product{ProductID: "p1", WeightG: fp(500), LengthCM: fp(20), HeightCM: fp(10), WidthCM: fp(5)}
	assert.True(t, complete.HasDimensions())

	assert.False(t, Product{ProductID: "p2"}.HasDimensions())

	zeroWeight := complete
	zeroWeight.WeightG = fp(0)
	assert.False(t, zeroWeight.HasDimensions())
}

func TestEnrichedRowMeasures(t *testing.T) {
	row := EnrichedRow{
		FreightValue: dec("15.00"),
		WeightG:      fp(2000),
		LengthCM:     fp(50),
		HeightCM:     fp(40),
		WidthCM:      fp(10),
	}

	kg, ok := row.WeightKG()
	require.True(t, ok)
	assert.InDelta(t, 2.0, kg, 1e-9)

	m3, ok := row.VolumeM3()
	require.True(t, ok)
	assert.InDelta(t, 0.02, m3, 1e-9)

	row.LengthCM = nil
	assert.False(t, row.HasDimensions())
}
