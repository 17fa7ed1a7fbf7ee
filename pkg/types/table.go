package types

// Row maps normalized column names to cell values.
type Row map[string]Value

// Get returns the cell for a column, or the null value when the
// column is absent from the row.
func (r Row) Get(col string) Value {
	if v, ok := r[col]; ok {
		return v
	}
	return Null()
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	cp := make(Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// Table is an in-memory tabular dataset as produced by the ingestion
// reader. Columns preserves the normalized header order of the source
// file; rows may omit columns, which reads as null.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTable returns an empty table with the given column order.
func NewTable(columns []string) *Table {
	return &Table{Columns: columns, Rows: []Row{}}
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// HasColumn reports whether the table declares the column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a copy of the table whose row slice can be mutated
// without affecting the original.
func (t *Table) Clone() *Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	return &Table{Columns: cols, Rows: rows}
}
