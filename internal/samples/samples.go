// Package samples generates reproducible sample data files for the
// four supply-chain categories.
package samples

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	regions    = []string{"North America", "Europe", "Asia Pacific", "Latin America", "Middle East"}
	categories = []string{"Electronics", "Packaging", "Raw Materials", "Components", "Finished Goods"}
	locations  = []string{"Warehouse-A", "Warehouse-B", "Warehouse-C", "DC-East", "DC-West"}
	countries  = []string{"USA", "China", "Germany", "Japan", "India", "Mexico", "UK", "South Korea"}

	supplierNames = []string{
		"Apex Manufacturing", "BlueWave Components", "CrystalTech Industries",
		"Delta Supply Co", "EcoSource Materials", "Frontier Electronics",
		"GlobalParts Inc", "Horizon Raw Ltd", "InnoSupply Corp", "JetStream Logistics",
		"KeyStone Materials", "LightPath Components", "MetalWorks International",
		"NovaTech Supplies", "OmniSource Trading", "PrimeParts Global",
		"QuickShip Solutions", "ReliSource Inc", "SteadyFlow Materials", "TechBridge Supply",
	}

	firstNames = []string{
		"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry",
		"Iris", "Jack", "Karen", "Leo", "Maria", "Nate", "Olivia", "Paul",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
		"Davis", "Rodriguez", "Martinez", "Anderson", "Taylor", "Thomas", "Moore",
	}
)

// Generator produces sample CSV data. The same seed always yields the
// same bytes.
type Generator struct {
	rng       *rand.Rand
	skus      []string
	suppliers []string
	startDate time.Time
}

// NewGenerator creates a generator with 50 SKUs and 20 suppliers.
func NewGenerator(seed int64) *Generator {
	skus := make([]string, 50)
	for i := range skus {
		skus[i] = fmt.Sprintf("SKU-%04d", i+1)
	}
	suppliers := make([]string, 20)
	for i := range suppliers {
		suppliers[i] = fmt.Sprintf("SUP-%03d", i+1)
	}

	return &Generator{
		rng:       rand.New(rand.NewSource(seed)),
		skus:      skus,
		suppliers: suppliers,
		startDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

// between returns a random integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) price(lo, hi float64) float64 {
	v := lo + g.rng.Float64()*(hi-lo)
	return float64(int(v*100)) / 100
}

func writeCSV(records [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.WriteAll(records)
	return buf.Bytes()
}

// Sales generates n sales rows over a 180-day window.
func (g *Generator) Sales(n int) []byte {
	records := [][]string{
		{"date", "sku", "quantity", "revenue", "customer_name", "region", "category"},
	}
	for i := 0; i < n; i++ {
		date := g.startDate.AddDate(0, 0, g.between(0, 180)).Format("2006-01-02")
		quantity := g.between(1, 200)
		revenue := float64(int(float64(quantity)*g.price(5, 500)*100)) / 100
		customer := g.pick(firstNames) + " " + g.pick(lastNames)

		records = append(records, []string{
			date,
			g.pick(g.skus),
			strconv.Itoa(quantity),
			strconv.FormatFloat(revenue, 'f', 2, 64),
			customer,
			g.pick(regions),
			g.pick(categories),
		})
	}
	return writeCSV(records)
}

// Inventory generates one row per SKU. Roughly a third of the items
// sit at or below their reorder point.
func (g *Generator) Inventory() []byte {
	records := [][]string{
		{"sku", "qty_on_hand", "reorder_point", "location", "unit_cost", "supplier_id"},
	}
	for _, sku := range g.skus {
		reorderPoint := g.between(10, 100)
		var qtyOnHand int
		if g.rng.Float64() < 0.3 {
			qtyOnHand = g.between(0, reorderPoint)
		} else {
			qtyOnHand = g.between(reorderPoint, reorderPoint*3)
		}

		records = append(records, []string{
			sku,
			strconv.Itoa(qtyOnHand),
			strconv.Itoa(reorderPoint),
			g.pick(locations),
			strconv.FormatFloat(g.price(2, 250), 'f', 2, 64),
			g.pick(g.suppliers),
		})
	}
	return writeCSV(records)
}

// Suppliers generates one row per supplier.
func (g *Generator) Suppliers() []byte {
	records := [][]string{
		{"supplier_id", "supplier_name", "lead_time", "contact_email", "rating", "country"},
	}
	for i, id := range g.suppliers {
		name := supplierNames[i%len(supplierNames)]
		domain := strings.ReplaceAll(strings.ToLower(name), " ", "")
		rating := float64(g.between(20, 50)) / 10

		records = append(records, []string{
			id,
			name,
			strconv.Itoa(g.between(3, 45)),
			"contact@" + domain + ".com",
			strconv.FormatFloat(rating, 'f', 1, 64),
			g.pick(countries),
		})
	}
	return writeCSV(records)
}

// PurchaseOrders generates n purchase-order rows with delivery dates
// derived from the order date plus a lead time.
func (g *Generator) PurchaseOrders(n int) []byte {
	records := [][]string{
		{"po_number", "sku", "quantity", "order_date", "delivery_date", "supplier_id"},
	}
	for i := 0; i < n; i++ {
		orderDate := g.startDate.AddDate(0, 0, g.between(0, 150))
		deliveryDate := orderDate.AddDate(0, 0, g.between(5, 30))

		records = append(records, []string{
			fmt.Sprintf("PO-%06d", 10000+i),
			g.pick(g.skus),
			strconv.Itoa(g.between(50, 1000)),
			orderDate.Format("2006-01-02"),
			deliveryDate.Format("2006-01-02"),
			g.pick(g.suppliers),
		})
	}
	return writeCSV(records)
}

// WriteAll writes all four sample files into dir and returns the file
// paths keyed by category.
func (g *Generator) WriteAll(dir string, salesRows, poRows int) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("samples: failed to create output dir: %w", err)
	}

	files := map[string][]byte{
		"sales":          g.Sales(salesRows),
		"inventory":      g.Inventory(),
		"supplier":       g.Suppliers(),
		"purchase_order": g.PurchaseOrders(poRows),
	}

	paths := make(map[string]string, len(files))
	for category, data := range files {
		path := filepath.Join(dir, category+"_data.csv")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("samples: failed to write %s: %w", path, err)
		}
		paths[category] = path
	}
	return paths, nil
}
