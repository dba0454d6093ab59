package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"shoppulse/internal/analytics"
	"shoppulse/internal/config"
	"shoppulse/internal/dataset"
	"shoppulse/internal/exporter"
	"shoppulse/internal/services"
)

func main() {
	dataDir := flag.String("data", "data", "directory holding the order_items, products and orders CSV files")
	outputDir := flag.String("out", "", "output directory for reports (defaults to data config)")
	from := flag.String("from", "", "include orders purchased on or after this date (YYYY-MM-DD)")
	to := flag.String("to", "", "include orders purchased on or before this date (YYYY-MM-DD)")
	state := flag.String("state", "", "restrict to one customer state (two-letter code)")
	category := flag.String("category", "", "restrict to one product category")
	minOrders := flag.Int("min-orders", 0, "low-confidence threshold for per-state aggregates (0 uses the default)")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg.Data.Dir = *dataDir
	if *outputDir != "" {
		cfg.Data.ReportsDir = *outputDir
	}

	paths, err := config.NewPaths(cfg.Data)
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureReportsDir(); err != nil {
		slog.Error("Failed to create reports directory", "error", err)
		os.Exit(1)
	}

	filter, err := buildFilter(*from, *to, *state, *category)
	if err != nil {
		slog.Error("Invalid filter", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	loader := dataset.NewLoader(paths, slog.Default())
	service := services.NewAnalyticsService(loader, slog.Default(), *minOrders)

	slog.Info("Loading dataset", "data_dir", paths.DataDir)
	if err := service.Reload(ctx); err != nil {
		slog.Error("Failed to load dataset", "error", err)
		os.Exit(1)
	}

	slog.Info("Computing reports")
	reports, err := service.BuildAllReports(ctx, filter)
	if err != nil {
		slog.Error("Failed to compute reports", "error", err)
		os.Exit(1)
	}

	// One CSV per report plus a combined workbook
	timestamp := time.Now().Format("20060102")
	writer := exporter.NewCSVWriter(paths)
	for _, report := range reports {
		filename := fmt.Sprintf("%s_%s.csv", report.Name, timestamp)
		if err := writer.WriteReport(filename, report); err != nil {
			slog.Error("Failed to write report", "report", report.Name, "error", err)
			os.Exit(1)
		}
	}

	workbookPath := paths.GetReportPath(fmt.Sprintf("shoppulse_report_%s.xlsx", timestamp))
	if err := exporter.WriteWorkbook(workbookPath, reports); err != nil {
		slog.Error("Failed to write workbook", "error", err)
		os.Exit(1)
	}

	slog.Info("Reports generated",
		"reports", len(reports),
		"workbook", workbookPath,
		"dir", paths.ReportsDir)

	printHighlights(ctx, service, filter)
}

func buildFilter(from, to, state, category string) (analytics.Filter, error) {
	var f analytics.Filter
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return f, fmt.Errorf("parse from date: %w", err)
		}
		f.DateFrom = &t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return f, fmt.Errorf("parse to date: %w", err)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.DateTo = &end
	}
	f.State = state
	f.Category = category
	return f, f.Validate()
}

func printHighlights(ctx context.Context, service *services.AnalyticsService, filter analytics.Filter) {
	totals, err := service.Totals(ctx, filter)
	if err != nil {
		return
	}
	overview, err := service.DeliveryOverview(ctx, filter)
	if err != nil {
		return
	}
	categories, err := service.Revenue(ctx, filter, analytics.DimensionCategory)
	if err != nil {
		return
	}

	fmt.Println("\n=== MARKETPLACE SUMMARY ===")
	fmt.Printf("Revenue:      %s\n", totals.TotalRevenue.StringFixed(2))
	fmt.Printf("Freight:      %s\n", totals.TotalFreight.StringFixed(2))
	fmt.Printf("Orders:       %d\n", totals.OrderCount)
	fmt.Printf("Items:        %d\n", totals.ItemCount)
	if totals.AverageOrderValue.Valid {
		fmt.Printf("Avg order:    %.2f\n", totals.AverageOrderValue.Value)
	}
	if overview.OnTimeRate.Valid {
		fmt.Printf("On-time rate: %.1f%%\n", overview.OnTimeRate.Value*100)
	}

	limit := 10
	if len(categories) < limit {
		limit = len(categories)
	}
	if limit > 0 {
		fmt.Println("\n=== TOP CATEGORIES BY REVENUE ===")
		fmt.Println("Category                       | Revenue      | Items  | Share")
		fmt.Println("-------------------------------|--------------|--------|------")
		for _, e := range categories[:limit] {
			fmt.Printf("%-30s | %12s | %6d | %4.1f%%\n",
				e.Key, e.Revenue.StringFixed(2), e.ItemCount, e.Share*100)
		}
	}
}
