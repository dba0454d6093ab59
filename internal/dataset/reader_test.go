package dataset

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReader() *Reader {
	return NewReader(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestReadOrderItems(t *testing.T) {
	csv := strings.Join([]string{
		"order_id,product_id,seller_id,price,freight_value",
		"o1,p1,s1,58.90,13.29",
		"o2,p2,s2,239.90,19.93",
	}, "\n")

	items, err := testReader().ReadOrderItems(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "o1", items[0].OrderID)
	assert.Equal(t, "s1", items[0].SellerID)
	assert.Equal(t, "58.9", items[0].Price.String())
	assert.Equal(t, "13.29", items[0].FreightValue.String())
}

func TestReadOrderItemsSkipsMalformedRows(t *testing.T) {
	csv := strings.Join([]string{
		"order_id,product_id,seller_id,price,freight_value",
		"o1,p1,s1,58.90,13.29",
		"o2,p2,s2,not-a-number,19.93", // bad price
		",p3,s3,10.00,1.00",           // missing order id
		"o4,p4,s4,10.00,1.00,extra,extra", // wrong field count
		"o5,p5,s5,10.00,1.00",
	}, "\n")

	items, err := testReader().ReadOrderItems(context.Background(), strings.NewReader(csv))
	require.NoError(t, err, "malformed rows are skipped, not fatal")
	require.Len(t, items, 2)
	assert.Equal(t, "o1", items[0].OrderID)
	assert.Equal(t, "o5", items[1].OrderID)
}

func TestReadOrderItemsSchemaError(t *testing.T) {
	csv := "order_id,price\no1,58.90\n"

	_, err := testReader().ReadOrderItems(context.Background(), strings.NewReader(csv))
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, TableOrderItems, schemaErr.Table)
	assert.Equal(t, []string{"freight_value", "product_id", "seller_id"}, schemaErr.Missing,
		"every missing column is reported at once")
}

func TestReadOrderItemsBOMAndCase(t *testing.T) {
	csv := "\uFEFFOrder_ID,Product_ID,Seller_ID,Price,Freight_Value\no1,p1,s1,10.00,1.00\n"

	items, err := testReader().ReadOrderItems(context.Background(), strings.NewReader(csv))
	require.NoError(t, err, "headers match case-insensitively with a BOM prefix")
	require.Len(t, items, 1)
	assert.Equal(t, "o1", items[0].OrderID)
}

func TestReadProducts(t *testing.T) {
	csv := strings.Join([]string{
		"product_id,product_category_name,product_weight_g,product_length_cm,product_height_cm,product_width_cm",
		"p1,perfumaria,225,16,10,14",
		"p2,,,,,", // category and dimensions all absent
	}, "\n")

	products, err := testReader().ReadProducts(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "perfumaria", products[0].Category)
	require.NotNil(t, products[0].WeightG)
	assert.Equal(t, 225.0, *products[0].WeightG)
	assert.True(t, products[0].HasDimensions())

	assert.Equal(t, "", products[1].Category)
	assert.Nil(t, products[1].WeightG)
	assert.False(t, products[1].HasDimensions())
}

func TestReadOrders(t *testing.T) {
	csv := strings.Join([]string{
		"order_id,customer_state,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date",
		"o1,sp,2017-10-02 10:56:33,2017-10-02 11:07:15,2017-10-04 19:55:00,2017-10-10 21:25:13,2017-10-18 00:00:00",
		"o2,RJ,2018-07-24 20:41:37,2018-07-26 03:24:27,,,2018-08-13 00:00:00",
	}, "\n")

	orders, err := testReader().ReadOrders(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, orders, 2)

	o1 := orders[0]
	assert.Equal(t, "SP", o1.CustomerState, "state is normalized to upper case")
	assert.Equal(t, "2017-10-02 10:56:33", o1.PurchasedAt.Format("2006-01-02 15:04:05"))
	require.NotNil(t, o1.DeliveredAt)
	assert.True(t, o1.Delivered())

	o2 := orders[1]
	assert.Nil(t, o2.CarrierHandoffAt)
	assert.Nil(t, o2.DeliveredAt)
	assert.False(t, o2.Delivered())
	require.NotNil(t, o2.EstimatedDeliveryAt)
}

func TestReadOrdersSkipsBadPurchaseTimestamp(t *testing.T) {
	csv := strings.Join([]string{
		"order_id,customer_state,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date",
		"o1,SP,garbage,,,,",
		"o2,SP,2018-01-01 00:00:00,,,,",
	}, "\n")

	orders, err := testReader().ReadOrders(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, orders, 1, "a row without a parseable purchase timestamp is skipped")
	assert.Equal(t, "o2", orders[0].OrderID)
}
