// Package ingest turns uploaded file bytes into in-memory tables.
// It accepts .csv and .xlsx uploads and normalizes header names so
// downstream validation sees a single canonical spelling.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// Reader parses uploaded files into tables.
type Reader struct{}

// NewReader creates a file reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses the file content according to the filename's extension.
// Returns types.ErrUnsupportedFormat for extensions other than .csv
// and .xlsx, and a parse error when the bytes cannot be read as a
// tabular file of that format.
func (r *Reader) Read(filename string, data []byte) (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return r.readCSV(data)
	case ".xlsx":
		return r.readXLSX(data)
	}
	return nil, fmt.Errorf("ingest: %q: %w", filename, types.ErrUnsupportedFormat)
}

// NormalizeColumn canonicalizes a header cell: trim surrounding
// whitespace, lowercase, and replace interior spaces with underscores.
func NormalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// parseCell interprets a raw cell string. Empty and whitespace-only
// cells read as null; cells that parse as numbers become numeric.
func parseCell(raw string) types.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return types.Null()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return types.Number(f)
	}
	return types.Text(s)
}

// buildTable assembles a table from a header record and data records.
// Duplicate normalized header names keep their first position in the
// column order; the last occurrence's cell wins within each row.
func buildTable(header []string, records [][]string) *types.Table {
	cols := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))
	norm := make([]string, len(header))
	for i, h := range header {
		n := NormalizeColumn(h)
		norm[i] = n
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		cols = append(cols, n)
	}

	tbl := types.NewTable(cols)
	for _, rec := range records {
		row := make(types.Row, len(cols))
		for i, cell := range rec {
			if i >= len(norm) || norm[i] == "" {
				continue
			}
			row[norm[i]] = parseCell(cell)
		}
		// Columns missing from a short record read as null.
		for _, c := range cols {
			if _, ok := row[c]; !ok {
				row[c] = types.Null()
			}
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

func (r *Reader) readCSV(data []byte) (*types.Table, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("ingest: csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: read csv header: %w", err)
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read csv row: %w", err)
		}
		records = append(records, rec)
	}
	return buildTable(header, records), nil
}

func (r *Reader) readXLSX(data []byte) (*types.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ingest: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ingest: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ingest: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ingest: sheet %q has no header row", sheets[0])
	}
	return buildTable(rows[0], rows[1:]), nil
}
