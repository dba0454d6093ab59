package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"shoppulse/internal/analytics"
	"shoppulse/internal/config"
)

// Tables holds the three parsed source tables
type Tables struct {
	Items    []analytics.OrderItem
	Products []analytics.Product
	Orders   []analytics.Order
}

// Loader reads the configured CSV exports from disk
type Loader struct {
	paths  *config.Paths
	reader *Reader
	logger *slog.Logger
}

// NewLoader creates a Loader for the given paths
func NewLoader(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		paths:  paths,
		reader: NewReader(logger),
		logger: logger,
	}
}

// LoadAll reads all three tables. Any schema or I/O failure aborts the
// load; a partially loaded dataset is never returned.
func (l *Loader) LoadAll(ctx context.Context) (*Tables, error) {
	start := time.Now()

	items, err := l.loadOrderItems(ctx)
	if err != nil {
		return nil, err
	}
	products, err := l.loadProducts(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := l.loadOrders(ctx)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("order_items", len(items)),
		slog.Int("products", len(products)),
		slog.Int("orders", len(orders)),
		slog.Duration("duration", time.Since(start)))

	return &Tables{Items: items, Products: products, Orders: orders}, nil
}

func (l *Loader) loadOrderItems(ctx context.Context) ([]analytics.OrderItem, error) {
	f, err := os.Open(l.paths.OrderItemsCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to open order items file: %w", err)
	}
	defer f.Close()
	return l.reader.ReadOrderItems(ctx, f)
}

func (l *Loader) loadProducts(ctx context.Context) ([]analytics.Product, error) {
	f, err := os.Open(l.paths.ProductsCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to open products file: %w", err)
	}
	defer f.Close()
	return l.reader.ReadProducts(ctx, f)
}

func (l *Loader) loadOrders(ctx context.Context) ([]analytics.Order, error) {
	f, err := os.Open(l.paths.OrdersCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file: %w", err)
	}
	defer f.Close()
	return l.reader.ReadOrders(ctx, f)
}
