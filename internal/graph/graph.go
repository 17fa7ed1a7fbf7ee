// Package graph maintains a best-effort mirror of the supply-chain
// relationships for network queries. Synchronization never blocks or
// fails an upload: callers receive an explicit result instead of an
// error they might be tempted to propagate.
package graph

import "context"

// Snapshot carries the four category tables as generic rows, as read
// from the analytical store.
type Snapshot struct {
	Sales          []map[string]interface{}
	Inventory      []map[string]interface{}
	Suppliers      []map[string]interface{}
	PurchaseOrders []map[string]interface{}
}

// SupplierNode is a supplier with its outgoing SUPPLIES edges.
type SupplierNode struct {
	SupplierID   string   `json:"supplier_id"`
	SupplierName string   `json:"supplier_name"`
	LeadTime     int64    `json:"lead_time"`
	Country      string   `json:"country,omitempty"`
	Products     []string `json:"products"`
}

// NetworkView is the whole supply-chain graph summarized.
type NetworkView struct {
	Suppliers          []SupplierNode `json:"suppliers"`
	ProductCount       int            `json:"product_count"`
	PurchaseOrderCount int            `json:"purchase_order_count"`
	EdgeCount          int            `json:"edge_count"`
}

// SupplierDeps answers "what depends on this supplier".
type SupplierDeps struct {
	SupplierID   string   `json:"supplier_id"`
	SupplierName string   `json:"supplier_name"`
	Products     []string `json:"products"`
	OrderNumbers []string `json:"order_numbers"`
}

// ProductTrace answers "where does this product come from".
type ProductTrace struct {
	SKU          string   `json:"sku"`
	SupplierIDs  []string `json:"supplier_ids"`
	OrderNumbers []string `json:"order_numbers"`
}

// SyncResult is the outcome of a mirror synchronization. Status is
// "ok" when the mirror was rebuilt, "failed" when it was not; in
// either case the upload that triggered the sync already succeeded.
type SyncResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
}

// Mirror is a rebuildable view of the supply-chain graph.
type Mirror interface {
	// ReplaceAll rebuilds the graph from a snapshot, returning the
	// node and edge counts of the new graph.
	ReplaceAll(ctx context.Context, snap Snapshot) (nodes, edges int, err error)

	// Network returns the full network view.
	Network(ctx context.Context) (NetworkView, error)

	// SupplierDependencies lists what hangs off one supplier.
	SupplierDependencies(ctx context.Context, supplierID string) (SupplierDeps, error)

	// ProductTrace lists the suppliers and orders behind one SKU.
	ProductTrace(ctx context.Context, sku string) (ProductTrace, error)
}
