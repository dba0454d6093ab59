package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timelineSnapshot wires one item per order so every order backs a row
func timelineSnapshot(t *testing.T, orders []Order) *Snapshot {
	t.Helper()
	items := make([]OrderItem, 0, len(orders))
	for _, o := range orders {
		items = append(items, mkItem(o.OrderID, "p1", "s1", "10.00", "1.00"))
	}
	return testEngine().BuildSnapshot(context.Background(), items, nil, orders)
}

func TestStageDurations(t *testing.T) {
	purchased := ts("2018-01-01 00:00:00")
	approved := purchased.Add(6 * time.Hour)
	handoff := purchased.Add(30 * time.Hour)
	delivered := purchased.Add(120 * time.Hour)

	orders := []Order{{
		OrderID:          "o1",
		CustomerState:    "SP",
		PurchasedAt:      purchased,
		ApprovedAt:       &approved,
		CarrierHandoffAt: &handoff,
		DeliveredAt:      &delivered,
	}}
	snap := timelineSnapshot(t, orders)

	durations := snap.StageDurations()
	require.Len(t, durations, 1)
	sd := durations[0]

	require.NotNil(t, sd.ApprovalHours)
	assert.InDelta(t, 6.0, *sd.ApprovalHours, 1e-9)
	require.NotNil(t, sd.HandlingHours)
	assert.InDelta(t, 24.0, *sd.HandlingHours, 1e-9)
	require.NotNil(t, sd.ShippingHours)
	assert.InDelta(t, 90.0, *sd.ShippingHours, 1e-9)
	require.NotNil(t, sd.TotalHours)
	assert.InDelta(t, 120.0, *sd.TotalHours, 1e-9)
	assert.False(t, sd.Anomalous)

	// Shares partition the total
	require.True(t, sd.ApprovalShare.Valid)
	sum := sd.ApprovalShare.Value + sd.HandlingShare.Value + sd.ShippingShare.Value
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestStageDurationsMissingTimestamps(t *testing.T) {
	purchased := ts("2018-01-01 00:00:00")
	approved := purchased.Add(2 * time.Hour)

	orders := []Order{{
		OrderID:       "o1",
		CustomerState: "SP",
		PurchasedAt:   purchased,
		ApprovedAt:    &approved,
		// never handed to carrier, never delivered
	}}
	snap := timelineSnapshot(t, orders)

	sd := snap.StageDurations()[0]
	require.NotNil(t, sd.ApprovalHours, "present stages are still computed")
	assert.Nil(t, sd.HandlingHours)
	assert.Nil(t, sd.ShippingHours)
	assert.Nil(t, sd.TotalHours)
	assert.False(t, sd.ApprovalShare.Valid, "shares need the full lifecycle")
	assert.False(t, sd.Anomalous)
}

func TestStageDurationsAnomalous(t *testing.T) {
	purchased := ts("2018-01-10 00:00:00")
	approved := purchased.Add(-5 * time.Hour) // approval before purchase

	orders := []Order{{
		OrderID:       "o1",
		CustomerState: "SP",
		PurchasedAt:   purchased,
		ApprovedAt:    &approved,
	}}
	snap := timelineSnapshot(t, orders)

	sd := snap.StageDurations()[0]
	assert.True(t, sd.Anomalous, "backwards timestamps flag the order, never silently negative")
	assert.Equal(t, 1, snap.AnomalousOrders())
}

func TestStageSummaryExcludesAnomalous(t *testing.T) {
	purchased := ts("2018-01-01 00:00:00")
	approvedOK := purchased.Add(10 * time.Hour)
	approvedBad := purchased.Add(-100 * time.Hour)

	orders := []Order{
		{OrderID: "o1", CustomerState: "SP", PurchasedAt: purchased, ApprovedAt: &approvedOK},
		{OrderID: "o2", CustomerState: "SP", PurchasedAt: purchased, ApprovedAt: &approvedBad},
	}
	snap := timelineSnapshot(t, orders)

	summary := snap.StageSummary()
	require.Len(t, summary, 4)

	byStage := make(map[string]StageSummary)
	for _, s := range summary {
		byStage[s.Stage] = s
	}
	approval := byStage["approval"]
	assert.Equal(t, 1, approval.OrderCount, "anomalous order excluded")
	require.True(t, approval.MeanHours.Valid)
	assert.InDelta(t, 10.0, approval.MeanHours.Value, 1e-9)
	assert.False(t, byStage["shipping"].MeanHours.Valid, "no shipping data at all")
}

func TestStageSummaryMedian(t *testing.T) {
	purchased := ts("2018-01-01 00:00:00")
	var orders []Order
	for i, hours := range []int{2, 4, 100} {
		approved := purchased.Add(time.Duration(hours) * time.Hour)
		orders = append(orders, Order{
			OrderID:       fmt.Sprintf("o%d", i),
			CustomerState: "SP",
			PurchasedAt:   purchased,
			ApprovedAt:    &approved,
		})
	}
	snap := timelineSnapshot(t, orders)

	for _, s := range snap.StageSummary() {
		if s.Stage != "approval" {
			continue
		}
		require.True(t, s.MedianHours.Valid)
		assert.InDelta(t, 4.0, s.MedianHours.Value, 1e-9, "median resists the outlier")
		assert.InDelta(t, 106.0/3, s.MeanHours.Value, 1e-9)
	}
}

func TestDelaySeverityDistribution(t *testing.T) {
	orders := []Order{
		deliveredOrder("o1", "SP", "2018-01-01 00:00:00", "2018-01-08 00:00:00", "2018-01-10 00:00:00"), // 2 days early
		deliveredOrder("o2", "SP", "2018-01-01 00:00:00", "2018-01-12 00:00:00", "2018-01-10 00:00:00"), // 2 days late
		deliveredOrder("o3", "SP", "2018-01-01 00:00:00", "2018-01-25 00:00:00", "2018-01-10 00:00:00"), // 15 days late
		deliveredOrder("o4", "SP", "2018-01-01 00:00:00", "", ""),                                       // undelivered
	}
	snap := timelineSnapshot(t, orders)

	dist := snap.DelaySeverityDistribution()
	require.Len(t, dist, 4, "every bucket is always present")

	byName := make(map[string]SeverityCount)
	for _, sc := range dist {
		byName[sc.Severity] = sc
	}
	assert.Equal(t, 1, byName["on_time"].Orders)
	assert.Equal(t, 1, byName["minor"].Orders)
	assert.Equal(t, 0, byName["moderate"].Orders)
	assert.Equal(t, 1, byName["severe"].Orders)
	assert.InDelta(t, 1.0/3, byName["minor"].Share, 1e-9, "undelivered orders are excluded from the denominator")
}

func TestDeliveryOverview(t *testing.T) {
	orders := []Order{
		deliveredOrder("o1", "SP", "2018-01-01 00:00:00", "2018-01-05 00:00:00", "2018-01-10 00:00:00"),
		deliveredOrder("o2", "SP", "2018-01-01 00:00:00", "2018-01-15 00:00:00", "2018-01-10 00:00:00"),
		deliveredOrder("o3", "SP", "2018-01-01 00:00:00", "", ""),
		deliveredOrder("o4", "SP", "2018-01-01 00:00:00", "2018-01-05 00:00:00", ""), // delivered, no estimate
	}
	snap := timelineSnapshot(t, orders)

	ov := snap.DeliveryOverview()
	assert.Equal(t, 4, ov.TotalOrders)
	assert.Equal(t, 3, ov.DeliveredOrders)
	assert.Equal(t, 1, ov.UndeliveredOrders)
	require.True(t, ov.DeliveryRate.Valid)
	assert.InDelta(t, 0.75, ov.DeliveryRate.Value, 1e-9)
	require.True(t, ov.OnTimeRate.Valid)
	assert.InDelta(t, 0.5, ov.OnTimeRate.Value, 1e-9, "only orders with an estimate are judged")
}

func TestParseHeatDimension(t *testing.T) {
	dim, err := ParseHeatDimension("State")
	require.NoError(t, err)
	assert.Equal(t, HeatState, dim)

	_, err = ParseHeatDimension("planet")
	assert.Error(t, err)
}

func TestDelayHeatmap(t *testing.T) {
	orders := []Order{
		deliveredOrder("o1", "SP", "2018-01-05 00:00:00", "2018-01-12 00:00:00", "2018-01-10 00:00:00"), // +2
		deliveredOrder("o2", "SP", "2018-01-20 00:00:00", "2018-01-26 00:00:00", "2018-01-22 00:00:00"), // +4
		deliveredOrder("o3", "RJ", "2018-02-05 00:00:00", "2018-02-10 00:00:00", "2018-02-12 00:00:00"), // -2
		deliveredOrder("o4", "MG", "2018-02-05 00:00:00", "", ""),                                       // unjudged
	}
	snap := timelineSnapshot(t, orders)

	cells := snap.DelayHeatmap(HeatState, HeatMonth)
	require.Len(t, cells, 2, "cells without supporting orders are omitted")

	assert.Equal(t, "RJ", cells[0].Row)
	assert.Equal(t, "2018-02", cells[0].Col)
	assert.InDelta(t, -2.0, cells[0].MeanDelayDays, 1e-9)

	assert.Equal(t, "SP", cells[1].Row)
	assert.Equal(t, "2018-01", cells[1].Col)
	assert.Equal(t, 2, cells[1].Orders)
	assert.InDelta(t, 3.0, cells[1].MeanDelayDays, 1e-9)
}

func TestDelayHeatmapCategoryFanOut(t *testing.T) {
	items := []OrderItem{
		mkItem("o1", "p1", "s1", "10.00", "1.00"),
		mkItem("o1", "p2", "s1", "10.00", "1.00"),
		mkItem("o1", "p1", "s1", "10.00", "1.00"), // duplicate category, counted once
	}
	products := []Product{
		{ProductID: "p1", Category: "toys"},
		{ProductID: "p2", Category: "garden"},
	}
	orders := []Order{
		deliveredOrder("o1", "SP", "2018-01-05 00:00:00", "2018-01-12 00:00:00", "2018-01-10 00:00:00"),
	}
	snap := testEngine().BuildSnapshot(context.Background(), items, products, orders)

	cells := snap.DelayHeatmap(HeatCategory, HeatState)
	require.Len(t, cells, 2, "one order with two categories contributes one cell per category")
	for _, c := range cells {
		assert.Equal(t, 1, c.Orders)
		assert.InDelta(t, 2.0, c.MeanDelayDays, 1e-9)
	}
}
