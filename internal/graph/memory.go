package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type supplier struct {
	id       string
	name     string
	leadTime int64
	country  string
}

type purchaseOrder struct {
	number     string
	sku        string
	supplierID string
}

// MemoryMirror is an in-process graph mirror. The graph is rebuilt
// wholesale on every sync, so reads only need a consistent snapshot
// under the read lock.
type MemoryMirror struct {
	mu sync.RWMutex

	suppliers map[string]supplier
	products  map[string]bool
	orders    map[string]purchaseOrder

	// supplies maps supplier id to the set of SKUs it supplies
	supplies map[string]map[string]bool
}

// NewMemoryMirror creates an empty in-memory mirror.
func NewMemoryMirror() *MemoryMirror {
	m := &MemoryMirror{}
	m.reset()
	return m
}

func (m *MemoryMirror) reset() {
	m.suppliers = make(map[string]supplier)
	m.products = make(map[string]bool)
	m.orders = make(map[string]purchaseOrder)
	m.supplies = make(map[string]map[string]bool)
}

// ReplaceAll rebuilds the graph from the snapshot. Supplier nodes
// come from supplier rows, product nodes from every SKU seen, order
// nodes from purchase orders. SUPPLIES edges come from inventory rows
// naming a supplier, ORDERS and FROM_SUPPLIER edges from purchase
// orders.
func (m *MemoryMirror) ReplaceAll(ctx context.Context, snap Snapshot) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()

	for _, row := range snap.Suppliers {
		id := asString(row["supplier_id"])
		if id == "" {
			continue
		}
		m.suppliers[id] = supplier{
			id:       id,
			name:     asString(row["supplier_name"]),
			leadTime: asInt(row["lead_time"]),
			country:  asString(row["country"]),
		}
	}

	for _, row := range snap.Sales {
		if sku := asString(row["sku"]); sku != "" {
			m.products[sku] = true
		}
	}
	for _, row := range snap.Inventory {
		sku := asString(row["sku"])
		if sku == "" {
			continue
		}
		m.products[sku] = true
		if supID := asString(row["supplier_id"]); supID != "" {
			if m.supplies[supID] == nil {
				m.supplies[supID] = make(map[string]bool)
			}
			m.supplies[supID][sku] = true
		}
	}

	for _, row := range snap.PurchaseOrders {
		num := asString(row["po_number"])
		if num == "" {
			continue
		}
		sku := asString(row["sku"])
		if sku != "" {
			m.products[sku] = true
		}
		m.orders[num] = purchaseOrder{
			number:     num,
			sku:        sku,
			supplierID: asString(row["supplier_id"]),
		}
	}

	return m.nodeCount(), m.edgeCount(), nil
}

func (m *MemoryMirror) nodeCount() int {
	return len(m.suppliers) + len(m.products) + len(m.orders)
}

func (m *MemoryMirror) edgeCount() int {
	edges := 0
	for _, skus := range m.supplies {
		edges += len(skus)
	}
	for _, po := range m.orders {
		if po.sku != "" {
			edges++ // ORDERS
		}
		if po.supplierID != "" {
			edges++ // FROM_SUPPLIER
		}
	}
	return edges
}

// Network returns every supplier with the products it supplies.
func (m *MemoryMirror) Network(ctx context.Context) (NetworkView, error) {
	if err := ctx.Err(); err != nil {
		return NetworkView{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	view := NetworkView{
		ProductCount:       len(m.products),
		PurchaseOrderCount: len(m.orders),
		EdgeCount:          m.edgeCount(),
	}
	for id, sup := range m.suppliers {
		node := SupplierNode{
			SupplierID:   sup.id,
			SupplierName: sup.name,
			LeadTime:     sup.leadTime,
			Country:      sup.country,
			Products:     sortedKeys(m.supplies[id]),
		}
		view.Suppliers = append(view.Suppliers, node)
	}
	sort.Slice(view.Suppliers, func(i, j int) bool {
		return view.Suppliers[i].SupplierID < view.Suppliers[j].SupplierID
	})
	return view, nil
}

// SupplierDependencies lists the products and orders tied to one supplier.
func (m *MemoryMirror) SupplierDependencies(ctx context.Context, supplierID string) (SupplierDeps, error) {
	if err := ctx.Err(); err != nil {
		return SupplierDeps{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	sup, ok := m.suppliers[supplierID]
	if !ok {
		return SupplierDeps{}, fmt.Errorf("graph: supplier %q not in mirror", supplierID)
	}

	deps := SupplierDeps{
		SupplierID:   sup.id,
		SupplierName: sup.name,
		Products:     sortedKeys(m.supplies[supplierID]),
		OrderNumbers: []string{},
	}
	for num, po := range m.orders {
		if po.supplierID == supplierID {
			deps.OrderNumbers = append(deps.OrderNumbers, num)
		}
	}
	sort.Strings(deps.OrderNumbers)
	return deps, nil
}

// ProductTrace lists the suppliers and purchase orders behind one SKU.
func (m *MemoryMirror) ProductTrace(ctx context.Context, sku string) (ProductTrace, error) {
	if err := ctx.Err(); err != nil {
		return ProductTrace{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.products[sku] {
		return ProductTrace{}, fmt.Errorf("graph: product %q not in mirror", sku)
	}

	trace := ProductTrace{SKU: sku, SupplierIDs: []string{}, OrderNumbers: []string{}}
	for supID, skus := range m.supplies {
		if skus[sku] {
			trace.SupplierIDs = append(trace.SupplierIDs, supID)
		}
	}
	for num, po := range m.orders {
		if po.sku == sku {
			trace.OrderNumbers = append(trace.OrderNumbers, num)
		}
	}
	sort.Strings(trace.SupplierIDs)
	sort.Strings(trace.OrderNumbers)
	return trace, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}

func asInt(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
