package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

func TestGet_AllCategories(t *testing.T) {
	for _, cat := range types.Categories() {
		def, err := Get(cat)
		require.NoError(t, err, "category %s", cat)
		assert.Equal(t, cat, def.Category)
		assert.NotEmpty(t, def.Required(), "every category has required columns")
	}
}

func TestGet_UnknownCategory(t *testing.T) {
	_, err := Get(types.Category("returns"))
	assert.ErrorIs(t, err, types.ErrUnknownCategory)
}

func TestSalesDefinition(t *testing.T) {
	def := MustGet(types.CategorySales)

	assert.Equal(t, []string{"date", "sku", "quantity", "revenue"}, def.Required())
	assert.Equal(t, []string{"customer_name", "region", "category"}, def.Optional())

	cons := def.Constraints()
	assert.Equal(t, float64(0), cons["quantity"])
	assert.Equal(t, float64(0), cons["revenue"])
	_, hasDate := cons["date"]
	assert.False(t, hasDate, "date has no numeric bound")

	assert.Equal(t, []string{"date"}, def.DateColumns())
}

func TestInventoryDefinition(t *testing.T) {
	def := MustGet(types.CategoryInventory)
	assert.Equal(t, []string{"sku", "qty_on_hand", "reorder_point"}, def.Required())

	cons := def.Constraints()
	assert.Contains(t, cons, "qty_on_hand")
	assert.Contains(t, cons, "reorder_point")
	assert.Empty(t, def.DateColumns())
}

func TestSupplierDefinition(t *testing.T) {
	def := MustGet(types.CategorySupplier)
	assert.Equal(t, []string{"supplier_id", "supplier_name", "lead_time"}, def.Required())
	assert.Equal(t, float64(0), def.Constraints()["lead_time"])
}

func TestPurchaseOrderDefinition(t *testing.T) {
	def := MustGet(types.CategoryPurchaseOrder)
	assert.Equal(t, []string{"po_number", "sku", "quantity"}, def.Required())
	assert.Equal(t, []string{"order_date", "delivery_date"}, def.DateColumns())
}

func TestCreateTableSQL(t *testing.T) {
	def := MustGet(types.CategorySales)
	sql := def.CreateTableSQL()

	if !strings.HasPrefix(sql, "CREATE TABLE IF NOT EXISTS sales_data (") {
		t.Fatalf("unexpected DDL prefix: %s", sql)
	}
	// Dates are stored as ISO text
	assert.Contains(t, sql, "date TEXT")
	assert.Contains(t, sql, "quantity INTEGER")
	assert.Contains(t, sql, "revenue REAL")
	assert.NotContains(t, sql, "DATE,", "DATE is not a storage type")
}

func TestDescribe(t *testing.T) {
	desc, err := Describe(types.CategoryInventory)
	require.NoError(t, err)
	assert.Equal(t, types.CategoryInventory, desc.Category)
	assert.Equal(t, []string{"sku", "qty_on_hand", "reorder_point"}, desc.RequiredColumns)
	assert.Contains(t, desc.OptionalColumns, "unit_cost")

	_, err = Describe(types.Category("nope"))
	assert.ErrorIs(t, err, types.ErrUnknownCategory)
}
