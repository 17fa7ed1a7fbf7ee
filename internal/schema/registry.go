// Package schema holds the fixed dataset definitions for the four
// supported categories and validates uploaded tables against them.
package schema

import (
	"fmt"
	"sort"

	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// ColumnType is the SQLite storage type for a column.
type ColumnType string

const (
	TypeText    ColumnType = "TEXT"
	TypeInteger ColumnType = "INTEGER"
	TypeReal    ColumnType = "REAL"

	// TypeDate is stored as TEXT but participates in date parsing
	// and future-date checks.
	TypeDate ColumnType = "DATE"
)

// SQLiteType returns the type keyword to use in DDL. Dates are stored
// as ISO-8601 text.
func (t ColumnType) SQLiteType() string {
	if t == TypeDate {
		return "TEXT"
	}
	return string(t)
}

// Column describes one column of a category's expected schema.
type Column struct {
	// Name is the normalized column name
	Name string

	// Type is the storage type for the analytical table
	Type ColumnType

	// Required marks columns that must be present in every upload
	Required bool

	// Min, when set, is the inclusive lower bound enforced by the
	// quality checker
	Min *float64
}

// Definition is the expected schema for one category.
type Definition struct {
	Category types.Category
	Columns  []Column
}

// Required returns the names of required columns in declaration order.
func (d Definition) Required() []string {
	var out []string
	for _, c := range d.Columns {
		if c.Required {
			out = append(out, c.Name)
		}
	}
	return out
}

// Optional returns the names of optional columns in declaration order.
func (d Definition) Optional() []string {
	var out []string
	for _, c := range d.Columns {
		if !c.Required {
			out = append(out, c.Name)
		}
	}
	return out
}

// Constraints returns the minimum-bound constraints keyed by column.
func (d Definition) Constraints() map[string]float64 {
	out := make(map[string]float64)
	for _, c := range d.Columns {
		if c.Min != nil {
			out[c.Name] = *c.Min
		}
	}
	return out
}

// DateColumns returns the names of date-typed columns.
func (d Definition) DateColumns() []string {
	var out []string
	for _, c := range d.Columns {
		if c.Type == TypeDate {
			out = append(out, c.Name)
		}
	}
	return out
}

// Column looks up a column by normalized name.
func (d Definition) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func minBound(v float64) *float64 { return &v }

// registry holds the fixed definitions. The set of categories is not
// extensible at runtime.
var registry = map[types.Category]Definition{
	types.CategorySales: {
		Category: types.CategorySales,
		Columns: []Column{
			{Name: "date", Type: TypeDate, Required: true},
			{Name: "sku", Type: TypeText, Required: true},
			{Name: "quantity", Type: TypeInteger, Required: true, Min: minBound(0)},
			{Name: "revenue", Type: TypeReal, Required: true, Min: minBound(0)},
			{Name: "customer_name", Type: TypeText},
			{Name: "region", Type: TypeText},
			{Name: "category", Type: TypeText},
		},
	},
	types.CategoryInventory: {
		Category: types.CategoryInventory,
		Columns: []Column{
			{Name: "sku", Type: TypeText, Required: true},
			{Name: "qty_on_hand", Type: TypeInteger, Required: true, Min: minBound(0)},
			{Name: "reorder_point", Type: TypeInteger, Required: true, Min: minBound(0)},
			{Name: "location", Type: TypeText},
			{Name: "unit_cost", Type: TypeReal},
			{Name: "supplier_id", Type: TypeText},
		},
	},
	types.CategorySupplier: {
		Category: types.CategorySupplier,
		Columns: []Column{
			{Name: "supplier_id", Type: TypeText, Required: true},
			{Name: "supplier_name", Type: TypeText, Required: true},
			{Name: "lead_time", Type: TypeInteger, Required: true, Min: minBound(0)},
			{Name: "contact_email", Type: TypeText},
			{Name: "rating", Type: TypeReal},
			{Name: "country", Type: TypeText},
		},
	},
	types.CategoryPurchaseOrder: {
		Category: types.CategoryPurchaseOrder,
		Columns: []Column{
			{Name: "po_number", Type: TypeText, Required: true},
			{Name: "sku", Type: TypeText, Required: true},
			{Name: "quantity", Type: TypeInteger, Required: true, Min: minBound(0)},
			{Name: "order_date", Type: TypeDate},
			{Name: "delivery_date", Type: TypeDate},
			{Name: "supplier_id", Type: TypeText},
		},
	},
}

// Get returns the definition for a category.
func Get(category types.Category) (Definition, error) {
	def, ok := registry[category]
	if !ok {
		return Definition{}, fmt.Errorf("schema: %q: %w", category, types.ErrUnknownCategory)
	}
	return def, nil
}

// MustGet returns the definition for a known-valid category and
// panics otherwise. For use after ParseCategory has succeeded.
func MustGet(category types.Category) Definition {
	def, err := Get(category)
	if err != nil {
		panic(err)
	}
	return def
}

// Describe returns the introspection view of a category's schema:
// required columns, optional columns, and constraint bounds.
type Description struct {
	Category        types.Category     `json:"category"`
	RequiredColumns []string           `json:"required_columns"`
	OptionalColumns []string           `json:"optional_columns"`
	Constraints     map[string]float64 `json:"constraints"`
	DateColumns     []string           `json:"date_columns"`
}

// Describe returns the schema description for a category.
func Describe(category types.Category) (Description, error) {
	def, err := Get(category)
	if err != nil {
		return Description{}, err
	}
	return Description{
		Category:        category,
		RequiredColumns: def.Required(),
		OptionalColumns: def.Optional(),
		Constraints:     def.Constraints(),
		DateColumns:     def.DateColumns(),
	}, nil
}

// CreateTableSQL builds the DDL for the category's analytical table.
// Column order follows the definition; all columns are nullable since
// quality filtering happens before load, not in the database.
func (d Definition) CreateTableSQL() string {
	cols := ""
	for i, c := range d.Columns {
		if i > 0 {
			cols += ", "
		}
		cols += c.Name + " " + c.Type.SQLiteType()
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.Category.DataTable(), cols)
}

// SortedNames returns a sorted copy of names, for stable reports.
func SortedNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}
