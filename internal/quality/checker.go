// Package quality runs the data-quality checks on a schema-valid
// table and computes the upload's quality score.
package quality

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/ayusingh-54/supply-chain-analytics/internal/schema"
	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// Issue severities.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Issue types, in the order the checks run.
const (
	IssueDuplicateRows       = "duplicate_rows"
	IssueNullRequiredField   = "null_required_field"
	IssueConstraintViolation = "constraint_violation"
	IssueFutureDates         = "future_dates"
)

// Issue describes one class of problem found in an upload. Resolved
// issues had their rows dropped; unresolved issues are flagged and
// the rows kept.
type Issue struct {
	Type         string `json:"type"`
	Severity     string `json:"severity"`
	Count        int    `json:"count"`
	Column       string `json:"column,omitempty"`
	AutoResolved bool   `json:"auto_resolved"`
	Message      string `json:"message"`
}

// Result is the outcome of running the checks: the cleaned table and
// every issue found, in check order.
type Result struct {
	Cleaned      *types.Table
	Issues       []Issue
	OriginalRows int
	CleanedRows  int
}

// Checker runs the fixed sequence of quality checks. The zero value
// uses the current wall clock for the future-date check.
type Checker struct {
	// now is overridable for tests
	now func() time.Time
}

// NewChecker creates a checker using the system clock.
func NewChecker() *Checker {
	return &Checker{now: time.Now}
}

// NewCheckerAt creates a checker with a fixed notion of "now".
func NewCheckerAt(now time.Time) *Checker {
	return &Checker{now: func() time.Time { return now }}
}

// Check runs the four checks in order, each operating on the output
// of the previous: duplicate removal, null removal in required
// columns, minimum-bound removal, and the sales future-date flag.
// The input table is not modified.
func (c *Checker) Check(table *types.Table, category types.Category) (Result, error) {
	def, err := schema.Get(category)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Issues:       []Issue{},
		OriginalRows: table.NumRows(),
	}

	cur := table.Clone()
	cur = c.dropDuplicates(cur, &res)
	cur = c.dropNulls(cur, def, &res)
	cur = c.dropConstraintViolations(cur, def, &res)
	c.flagFutureDates(cur, category, &res)

	res.Cleaned = cur
	res.CleanedRows = cur.NumRows()
	return res, nil
}

// fingerprint hashes a row's cells in column order. Two rows collide
// only when every cell is equal kind-and-value.
func fingerprint(row types.Row, columns []string) [2]uint64 {
	h := murmur3.New128()
	var kind [1]byte
	var num [8]byte
	for _, col := range columns {
		v := row.Get(col)
		kind[0] = byte(v.Kind)
		h.Write(kind[:])
		switch v.Kind {
		case types.KindNumber:
			f, _ := v.Float()
			binary.LittleEndian.PutUint64(num[:], math.Float64bits(f))
			h.Write(num[:])
		case types.KindText, types.KindTime:
			s, _ := v.Text()
			h.Write([]byte(s))
		}
		h.Write([]byte{0xff})
	}
	h1, h2 := h.Sum128()
	return [2]uint64{h1, h2}
}

func (c *Checker) dropDuplicates(tbl *types.Table, res *Result) *types.Table {
	seen := make(map[[2]uint64]bool, len(tbl.Rows))
	kept := tbl.Rows[:0]
	dropped := 0
	for _, row := range tbl.Rows {
		fp := fingerprint(row, tbl.Columns)
		if seen[fp] {
			dropped++
			continue
		}
		seen[fp] = true
		kept = append(kept, row)
	}
	tbl.Rows = kept
	if dropped > 0 {
		res.Issues = append(res.Issues, Issue{
			Type:         IssueDuplicateRows,
			Severity:     SeverityWarning,
			Count:        dropped,
			AutoResolved: true,
			Message:      fmt.Sprintf("removed %d exact duplicate rows", dropped),
		})
	}
	return tbl
}

func (c *Checker) dropNulls(tbl *types.Table, def schema.Definition, res *Result) *types.Table {
	for _, col := range def.Required() {
		kept := tbl.Rows[:0]
		dropped := 0
		for _, row := range tbl.Rows {
			if row.Get(col).IsNull() {
				dropped++
				continue
			}
			kept = append(kept, row)
		}
		tbl.Rows = kept
		if dropped > 0 {
			res.Issues = append(res.Issues, Issue{
				Type:         IssueNullRequiredField,
				Severity:     SeverityError,
				Count:        dropped,
				Column:       col,
				AutoResolved: true,
				Message:      fmt.Sprintf("removed %d rows with null %s", dropped, col),
			})
		}
	}
	return tbl
}

func (c *Checker) dropConstraintViolations(tbl *types.Table, def schema.Definition, res *Result) *types.Table {
	for _, col := range def.Columns {
		if col.Min == nil || !tbl.HasColumn(col.Name) {
			continue
		}
		kept := tbl.Rows[:0]
		dropped := 0
		for _, row := range tbl.Rows {
			v := row.Get(col.Name)
			if v.IsNull() {
				// Nulls in optional constrained columns are allowed;
				// required columns were already filtered.
				kept = append(kept, row)
				continue
			}
			f, ok := v.Float()
			if !ok || f < *col.Min {
				// Non-numeric text in a bounded column cannot satisfy
				// the bound and cannot load into a numeric column.
				dropped++
				continue
			}
			kept = append(kept, row)
		}
		tbl.Rows = kept
		if dropped > 0 {
			res.Issues = append(res.Issues, Issue{
				Type:         IssueConstraintViolation,
				Severity:     SeverityError,
				Count:        dropped,
				Column:       col.Name,
				AutoResolved: true,
				Message:      fmt.Sprintf("removed %d rows where %s < %v", dropped, col.Name, *col.Min),
			})
		}
	}
	return tbl
}

// flagFutureDates flags sales rows whose date is after "now". Rows
// are kept; the issue stays unresolved and lowers the score. Cells
// that do not parse as dates are skipped.
func (c *Checker) flagFutureDates(tbl *types.Table, category types.Category, res *Result) {
	if category != types.CategorySales || !tbl.HasColumn("date") {
		return
	}
	now := c.now()
	flagged := 0
	for _, row := range tbl.Rows {
		t, ok := row.Get("date").ParseDate()
		if !ok {
			continue
		}
		if t.After(now) {
			flagged++
		}
	}
	if flagged > 0 {
		res.Issues = append(res.Issues, Issue{
			Type:         IssueFutureDates,
			Severity:     SeverityWarning,
			Count:        flagged,
			Column:       "date",
			AutoResolved: false,
			Message:      fmt.Sprintf("%d rows have sale dates in the future", flagged),
		})
	}
}
