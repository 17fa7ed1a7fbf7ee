package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayusingh-54/supply-chain-analytics/internal/errors"
)

// SalesFilter narrows the sales summary. Zero values mean no filter.
type SalesFilter struct {
	StartDate string `json:"start_date,omitempty"` // inclusive, YYYY-MM-DD
	EndDate   string `json:"end_date,omitempty"`   // inclusive, YYYY-MM-DD
	SKU       string `json:"sku,omitempty"`
}

// SalesSummary aggregates the sales table.
type SalesSummary struct {
	TotalRevenue  float64       `json:"total_revenue"`
	TotalQuantity int64         `json:"total_quantity"`
	OrderCount    int64         `json:"order_count"`
	UniqueSKUs    int64         `json:"unique_skus"`
	AvgOrderValue float64       `json:"avg_order_value"`
	TopProducts   []ProductRank `json:"top_products"`
}

// ProductRank is one line of the top-products ranking.
type ProductRank struct {
	SKU      string  `json:"sku"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// GetSalesSummary aggregates sales, optionally filtered by date range
// and SKU. Filters bind as parameters.
func (s *Store) GetSalesSummary(ctx context.Context, f SalesFilter) (SalesSummary, error) {
	where, args := salesWhere(f)

	var sum SalesSummary
	err := s.readDB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(revenue), 0), COALESCE(SUM(quantity), 0), COUNT(*), COUNT(DISTINCT sku)
		 FROM sales_data`+where, args...,
	).Scan(&sum.TotalRevenue, &sum.TotalQuantity, &sum.OrderCount, &sum.UniqueSKUs)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("store: sales summary failed: %w", err)
	}
	if sum.OrderCount > 0 {
		sum.AvgOrderValue = sum.TotalRevenue / float64(sum.OrderCount)
	}

	rows, err := s.readDB.QueryContext(ctx,
		`SELECT sku, COALESCE(SUM(quantity), 0), COALESCE(SUM(revenue), 0)
		 FROM sales_data`+where+`
		 GROUP BY sku ORDER BY SUM(revenue) DESC LIMIT 10`, args...,
	)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("store: top products failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p ProductRank
		if err := rows.Scan(&p.SKU, &p.Quantity, &p.Revenue); err != nil {
			return SalesSummary{}, fmt.Errorf("store: failed to scan product rank: %w", err)
		}
		sum.TopProducts = append(sum.TopProducts, p)
	}
	return sum, rows.Err()
}

func salesWhere(f SalesFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.StartDate != "" {
		conds = append(conds, "date >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		conds = append(conds, "date <= ?")
		args = append(args, f.EndDate)
	}
	if f.SKU != "" {
		conds = append(conds, "sku = ?")
		args = append(args, f.SKU)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// InventoryItem is one SKU's stock position with its reorder band.
type InventoryItem struct {
	SKU          string   `json:"sku"`
	QtyOnHand    int64    `json:"qty_on_hand"`
	ReorderPoint int64    `json:"reorder_point"`
	Location     string   `json:"location,omitempty"`
	UnitCost     *float64 `json:"unit_cost,omitempty"`
	Status       string   `json:"status"`
}

// InventoryStatus is the reorder picture of the inventory table.
type InventoryStatus struct {
	Items        []InventoryItem `json:"items"`
	ReorderCount int64           `json:"reorder_count"`
	WarningCount int64           `json:"warning_count"`
	OKCount      int64           `json:"ok_count"`
}

// GetInventoryStatus bands every SKU by how its stock compares to the
// reorder point: at or below is "reorder", within twenty percent is
// "warning", anything above is "ok".
func (s *Store) GetInventoryStatus(ctx context.Context) (InventoryStatus, error) {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT sku, qty_on_hand, reorder_point, COALESCE(location, ''), unit_cost,
		        CASE
		            WHEN qty_on_hand <= reorder_point THEN 'reorder'
		            WHEN qty_on_hand <= reorder_point * 1.2 THEN 'warning'
		            ELSE 'ok'
		        END AS status
		 FROM inventory_data
		 ORDER BY qty_on_hand - reorder_point ASC`,
	)
	if err != nil {
		return InventoryStatus{}, fmt.Errorf("store: inventory status failed: %w", err)
	}
	defer rows.Close()

	var st InventoryStatus
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.SKU, &it.QtyOnHand, &it.ReorderPoint, &it.Location, &it.UnitCost, &it.Status); err != nil {
			return InventoryStatus{}, fmt.Errorf("store: failed to scan inventory row: %w", err)
		}
		switch it.Status {
		case "reorder":
			st.ReorderCount++
		case "warning":
			st.WarningCount++
		default:
			st.OKCount++
		}
		st.Items = append(st.Items, it)
	}
	return st, rows.Err()
}

// SupplierStats joins suppliers with their purchase orders.
type SupplierStats struct {
	SupplierID    string   `json:"supplier_id"`
	SupplierName  string   `json:"supplier_name"`
	LeadTime      int64    `json:"lead_time"`
	Rating        *float64 `json:"rating,omitempty"`
	Country       string   `json:"country,omitempty"`
	OrderCount    int64    `json:"order_count"`
	TotalQuantity int64    `json:"total_quantity"`
}

// GetSupplierAnalysis reports each supplier's purchase-order load.
// Suppliers with no purchase orders appear with zero counts.
func (s *Store) GetSupplierAnalysis(ctx context.Context) ([]SupplierStats, error) {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT sp.supplier_id, sp.supplier_name, sp.lead_time, sp.rating, COALESCE(sp.country, ''),
		        COUNT(po.po_number), COALESCE(SUM(po.quantity), 0)
		 FROM supplier_data sp
		 LEFT JOIN purchase_order_data po ON po.supplier_id = sp.supplier_id
		 GROUP BY sp.supplier_id, sp.supplier_name, sp.lead_time, sp.rating, sp.country
		 ORDER BY COUNT(po.po_number) DESC, sp.supplier_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: supplier analysis failed: %w", err)
	}
	defer rows.Close()

	var out []SupplierStats
	for rows.Next() {
		var ss SupplierStats
		if err := rows.Scan(&ss.SupplierID, &ss.SupplierName, &ss.LeadTime, &ss.Rating,
			&ss.Country, &ss.OrderCount, &ss.TotalQuantity); err != nil {
			return nil, fmt.Errorf("store: failed to scan supplier row: %w", err)
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

// KPISet is the dashboard headline view across the four tables.
type KPISet struct {
	Sales struct {
		TotalRevenue float64 `json:"total_revenue"`
		TotalOrders  int64   `json:"total_orders"`
		UniqueSKUs   int64   `json:"unique_skus"`
	} `json:"sales"`
	Inventory struct {
		TotalSKUs    int64 `json:"total_skus"`
		TotalUnits   int64 `json:"total_units"`
		BelowReorder int64 `json:"below_reorder"`
	} `json:"inventory"`
	Suppliers struct {
		Count       int64    `json:"count"`
		AvgLeadTime *float64 `json:"avg_lead_time,omitempty"`
	} `json:"suppliers"`
	PurchaseOrders struct {
		Count         int64 `json:"count"`
		TotalQuantity int64 `json:"total_quantity"`
	} `json:"purchase_orders"`
}

// GetKPIs computes the headline numbers for every category.
func (s *Store) GetKPIs(ctx context.Context) (KPISet, error) {
	var k KPISet

	if err := s.readDB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(revenue), 0), COUNT(*), COUNT(DISTINCT sku) FROM sales_data",
	).Scan(&k.Sales.TotalRevenue, &k.Sales.TotalOrders, &k.Sales.UniqueSKUs); err != nil {
		return KPISet{}, fmt.Errorf("store: sales kpis failed: %w", err)
	}

	if err := s.readDB.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT sku), COALESCE(SUM(qty_on_hand), 0),
		        COALESCE(SUM(CASE WHEN qty_on_hand <= reorder_point THEN 1 ELSE 0 END), 0)
		 FROM inventory_data`,
	).Scan(&k.Inventory.TotalSKUs, &k.Inventory.TotalUnits, &k.Inventory.BelowReorder); err != nil {
		return KPISet{}, fmt.Errorf("store: inventory kpis failed: %w", err)
	}

	if err := s.readDB.QueryRowContext(ctx,
		"SELECT COUNT(*), AVG(lead_time) FROM supplier_data",
	).Scan(&k.Suppliers.Count, &k.Suppliers.AvgLeadTime); err != nil {
		return KPISet{}, fmt.Errorf("store: supplier kpis failed: %w", err)
	}

	if err := s.readDB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM purchase_order_data",
	).Scan(&k.PurchaseOrders.Count, &k.PurchaseOrders.TotalQuantity); err != nil {
		return KPISet{}, fmt.Errorf("store: purchase order kpis failed: %w", err)
	}

	return k, nil
}

// forbiddenQueryWords rejects anything that could mutate state
// through the ad-hoc query endpoint.
var forbiddenQueryWords = []string{
	"insert", "update", "delete", "drop", "create", "alter",
	"attach", "detach", "pragma", "vacuum", "reindex", "replace",
}

// RunSelect executes a caller-supplied read-only query against the
// read connection. Only single SELECT statements pass the guard.
func (s *Store) RunSelect(ctx context.Context, query string) ([]string, []map[string]interface{}, error) {
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "select") {
		return nil, nil, errors.New(errors.ErrCategoryStore, errors.CodeQueryRejected, "only SELECT statements are allowed")
	}
	if strings.Contains(trimmed, ";") {
		return nil, nil, errors.New(errors.ErrCategoryStore, errors.CodeQueryRejected, "multiple statements are not allowed")
	}
	for _, word := range forbiddenQueryWords {
		for _, field := range strings.FieldsFunc(lower, func(r rune) bool {
			return r == ' ' || r == '\t' || r == '\n' || r == '(' || r == ')'
		}) {
			if field == word {
				return nil, nil, errors.New(errors.ErrCategoryStore, errors.CodeQueryRejected,
					fmt.Sprintf("keyword %q is not allowed", word))
			}
		}
	}
	return s.queryGeneric(ctx, trimmed)
}
