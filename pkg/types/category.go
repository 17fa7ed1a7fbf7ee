// Package types provides the core data types shared across the
// supply-chain analytics pipeline.
package types

import "fmt"

// Category identifies one of the fixed dataset categories the
// pipeline accepts.
type Category string

const (
	// CategorySales holds transactional sales rows
	CategorySales Category = "sales"

	// CategoryInventory holds stock-on-hand rows
	CategoryInventory Category = "inventory"

	// CategorySupplier holds supplier master-data rows
	CategorySupplier Category = "supplier"

	// CategoryPurchaseOrder holds purchase-order rows
	CategoryPurchaseOrder Category = "purchase_order"
)

// Categories returns all supported categories in canonical order.
func Categories() []Category {
	return []Category{CategorySales, CategoryInventory, CategorySupplier, CategoryPurchaseOrder}
}

// ParseCategory validates a category string supplied by a caller.
// Returns ErrUnknownCategory wrapped with the offending value.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategorySales, CategoryInventory, CategorySupplier, CategoryPurchaseOrder:
		return Category(s), nil
	}
	return "", fmt.Errorf("types: %q: %w", s, ErrUnknownCategory)
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }

// DataTable returns the analytical table name backing this category.
func (c Category) DataTable() string { return string(c) + "_data" }
