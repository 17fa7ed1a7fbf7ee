package quality

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// genSalesTable builds a sales table from generated row tuples. Some
// rows are deliberately degenerate (null sku, negative quantity) so
// the checks have material to work on.
func genSalesTable() gopter.Gen {
	return gen.SliceOf(gopter.CombineGens(
		gen.IntRange(0, 27),  // day offset
		gen.IntRange(0, 5),   // sku index, small range to force duplicates
		gen.IntRange(-3, 20), // quantity, negatives violate the bound
		gen.IntRange(0, 3),   // 0 => null sku
	)).Map(func(rows [][]interface{}) *types.Table {
		tbl := types.NewTable([]string{"date", "sku", "quantity", "revenue"})
		for _, r := range rows {
			day := r[0].(int)
			skuIdx := r[1].(int)
			qty := r[2].(int)
			nullPick := r[3].(int)

			sku := types.Text(fmt.Sprintf("SKU-%04d", skuIdx))
			if nullPick == 0 {
				sku = types.Null()
			}
			tbl.Rows = append(tbl.Rows, types.Row{
				"date":     types.Text(fmt.Sprintf("2025-01-%02d", day+1)),
				"sku":      sku,
				"quantity": types.Number(float64(qty)),
				"revenue":  types.Number(float64(qty) * 9.99),
			})
		}
		return tbl
	})
}

// TestProperty_ScoreBounds validates that every computed score lies
// within [0, 100] for arbitrary generated uploads.
func TestProperty_ScoreBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("score is always within [0, 100]", prop.ForAll(
		func(tbl *types.Table) bool {
			res, err := NewCheckerAt(now).Check(tbl, types.CategorySales)
			if err != nil {
				return false
			}
			score := Score(res.OriginalRows, res.CleanedRows, res.Issues)
			return score >= 0 && score <= 100
		},
		genSalesTable(),
	))

	properties.TestingRun(t)
}

// TestProperty_CheckDeterminism validates that running the checks
// twice over the same input produces identical issues and row counts.
func TestProperty_CheckDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("checking is deterministic", prop.ForAll(
		func(tbl *types.Table) bool {
			a, err := NewCheckerAt(now).Check(tbl, types.CategorySales)
			if err != nil {
				return false
			}
			b, err := NewCheckerAt(now).Check(tbl, types.CategorySales)
			if err != nil {
				return false
			}
			if a.CleanedRows != b.CleanedRows || len(a.Issues) != len(b.Issues) {
				return false
			}
			for i := range a.Issues {
				if a.Issues[i] != b.Issues[i] {
					return false
				}
			}
			return true
		},
		genSalesTable(),
	))

	properties.TestingRun(t)
}

// TestProperty_CleanedTableIsStable validates that re-checking an
// already cleaned table drops nothing further: the checks are
// idempotent over their own output.
func TestProperty_CleanedTableIsStable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("re-checking cleaned output drops no rows", prop.ForAll(
		func(tbl *types.Table) bool {
			first, err := NewCheckerAt(now).Check(tbl, types.CategorySales)
			if err != nil {
				return false
			}
			second, err := NewCheckerAt(now).Check(first.Cleaned, types.CategorySales)
			if err != nil {
				return false
			}
			return second.CleanedRows == first.CleanedRows
		},
		genSalesTable(),
	))

	properties.TestingRun(t)
}
