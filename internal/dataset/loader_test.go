package dataset

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppulse/internal/config"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func testPaths(t *testing.T, dir string) *config.Paths {
	t.Helper()
	paths, err := config.NewPaths(config.DataConfig{
		Dir:            dir,
		OrderItemsFile: "order_items.csv",
		ProductsFile:   "products.csv",
		OrdersFile:     "orders.csv",
		ReportsDir:     filepath.Join(dir, "reports"),
	})
	require.NoError(t, err)
	return paths
}

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "order_items.csv",
		"order_id,product_id,seller_id,price,freight_value\no1,p1,s1,10.00,1.00\n")
	writeFixture(t, dir, "products.csv",
		"product_id,product_category_name,product_weight_g,product_length_cm,product_height_cm,product_width_cm\np1,toys,500,10,10,10\n")
	writeFixture(t, dir, "orders.csv",
		"order_id,customer_state,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date\no1,SP,2018-01-01 10:00:00,,,,\n")

	loader := NewLoader(testPaths(t, dir), slog.New(slog.NewTextHandler(io.Discard, nil)))
	tables, err := loader.LoadAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, tables.Items, 1)
	assert.Len(t, tables.Products, 1)
	assert.Len(t, tables.Orders, 1)
}

func TestLoaderMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "order_items.csv",
		"order_id,product_id,seller_id,price,freight_value\n")
	// products.csv and orders.csv absent

	loader := NewLoader(testPaths(t, dir), slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := loader.LoadAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "products")
}

func TestLoaderSchemaFailureAbortsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "order_items.csv",
		"order_id,product_id,seller_id,price,freight_value\no1,p1,s1,10.00,1.00\n")
	writeFixture(t, dir, "products.csv", "product_id\np1\n") // missing columns
	writeFixture(t, dir, "orders.csv",
		"order_id,customer_state,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date\n")

	loader := NewLoader(testPaths(t, dir), slog.New(slog.NewTextHandler(io.Discard, nil)))
	tables, err := loader.LoadAll(context.Background())
	require.Error(t, err)
	assert.Nil(t, tables, "a partially loaded dataset is never returned")

	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}
