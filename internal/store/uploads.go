package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ayusingh-54/supply-chain-analytics/internal/quality"
	"github.com/ayusingh-54/supply-chain-analytics/internal/schema"
	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// Mode selects how an upload's rows combine with existing data.
type Mode string

const (
	// ModeReplace archives the current active upload and replaces the
	// category's data rows
	ModeReplace Mode = "replace"

	// ModeAppend adds rows to the category's data and folds the new
	// row count into the existing active record
	ModeAppend Mode = "append"
)

// ParseMode validates a mode string, defaulting empty to replace.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeReplace):
		return ModeReplace, nil
	case string(ModeAppend):
		return ModeAppend, nil
	}
	return "", fmt.Errorf("store: unknown mode %q", s)
}

// UploadRecord is the metadata row for one accepted upload.
type UploadRecord struct {
	ID           string         `json:"id"`
	Category     types.Category `json:"category"`
	Filename     string         `json:"filename"`
	StoredPath   string         `json:"stored_path"`
	FileSize     int64          `json:"file_size_bytes"`
	UploadedBy   string         `json:"uploaded_by,omitempty"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	RowCount     int            `json:"row_count"`
	QualityScore float64        `json:"quality_score"`
	Active       bool           `json:"active"`
}

// HistoryEntry is one line of a category's version history. Version
// is zero for the active record and the archive version otherwise.
type HistoryEntry struct {
	Record     UploadRecord `json:"record"`
	Version    int          `json:"version"`
	ArchivedAt *time.Time   `json:"archived_at,omitempty"`
}

// CategoryStatus reports whether a category currently has data.
type CategoryStatus struct {
	Category types.Category `json:"category"`
	HasData  bool           `json:"has_data"`
	Active   *UploadRecord  `json:"active,omitempty"`
}

// IssueRecord is a persisted quality issue.
type IssueRecord struct {
	UploadID     string    `json:"upload_id"`
	Type         string    `json:"type"`
	Severity     string    `json:"severity"`
	Column       string    `json:"column,omitempty"`
	Count        int       `json:"count"`
	AutoResolved bool      `json:"auto_resolved"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

const timeLayout = time.RFC3339

// CommitUpload atomically applies one cleaned upload: archive the
// previous active record (replace mode), write the data rows, record
// the upload and its issues. Everything happens inside a single
// transaction under the category's lock, so a failure leaves the
// previous state untouched.
//
// The returned record is the category's active record after the
// commit. For append mode with an existing active record that is the
// prior record with its row count increased.
func (s *Store) CommitUpload(ctx context.Context, rec UploadRecord, tbl *types.Table, mode Mode, issues []quality.Issue) (UploadRecord, error) {
	mu := s.lock(rec.Category)
	mu.Lock()
	defer mu.Unlock()

	def, err := schema.Get(rec.Category)
	if err != nil {
		return UploadRecord{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UploadRecord{}, fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	active, err := getActiveTx(ctx, tx, rec.Category)
	hasActive := err == nil
	if err != nil && err != sql.ErrNoRows {
		return UploadRecord{}, fmt.Errorf("store: failed to load active record: %w", err)
	}

	var result UploadRecord
	switch {
	case mode == ModeAppend && hasActive:
		if err := insertRowsTx(ctx, tx, def, tbl); err != nil {
			return UploadRecord{}, err
		}
		active.RowCount += tbl.NumRows()
		if _, err := tx.ExecContext(ctx,
			"UPDATE file_uploads SET row_count = ? WHERE id = ?",
			active.RowCount, active.ID,
		); err != nil {
			return UploadRecord{}, fmt.Errorf("store: failed to update row count: %w", err)
		}
		result = active

	default:
		if hasActive {
			if err := archiveTx(ctx, tx, active); err != nil {
				return UploadRecord{}, err
			}
		}
		if mode == ModeReplace {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+rec.Category.DataTable()); err != nil {
				return UploadRecord{}, fmt.Errorf("store: failed to clear %s: %w", rec.Category.DataTable(), err)
			}
		}
		if err := insertRowsTx(ctx, tx, def, tbl); err != nil {
			return UploadRecord{}, err
		}
		rec.Active = true
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO file_uploads (id, category, filename, stored_path, file_size_bytes, uploaded_by, uploaded_at, row_count, quality_score, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
			rec.ID, string(rec.Category), rec.Filename, rec.StoredPath, rec.FileSize, rec.UploadedBy,
			rec.UploadedAt.UTC().Format(timeLayout), rec.RowCount, rec.QualityScore,
		); err != nil {
			return UploadRecord{}, fmt.Errorf("store: failed to insert upload record: %w", err)
		}
		result = rec
	}

	if err := insertIssuesTx(ctx, tx, result.ID, issues); err != nil {
		return UploadRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return UploadRecord{}, fmt.Errorf("store: failed to commit upload: %w", err)
	}
	return result, nil
}

// archiveTx deactivates the active record and assigns it the next
// version number for its category.
func archiveTx(ctx context.Context, tx *sql.Tx, active UploadRecord) error {
	var next int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(v.version_number), 0) + 1
		 FROM file_versions v
		 JOIN file_uploads u ON v.upload_id = u.id
		 WHERE u.category = ?`,
		string(active.Category),
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("store: failed to compute next version: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE file_uploads SET is_active = 0 WHERE id = ?", active.ID,
	); err != nil {
		return fmt.Errorf("store: failed to deactivate record: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO file_versions (upload_id, version_number, archived_at) VALUES (?, ?, ?)",
		active.ID, next, time.Now().UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("store: failed to insert version row: %w", err)
	}
	return nil
}

// insertRowsTx loads the table's rows into the category data table.
// Only columns the category schema declares are loaded; extra columns
// were reported during validation and are dropped here.
func insertRowsTx(ctx context.Context, tx *sql.Tx, def schema.Definition, tbl *types.Table) error {
	if tbl == nil || tbl.NumRows() == 0 {
		return nil
	}

	var cols []schema.Column
	for _, c := range def.Columns {
		if tbl.HasColumn(c.Name) {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil
	}

	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		marks[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		def.Category.DataTable(), strings.Join(names, ", "), strings.Join(marks, ", "),
	))
	if err != nil {
		return fmt.Errorf("store: failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(cols))
	for _, row := range tbl.Rows {
		for i, c := range cols {
			args[i] = bindValue(c, row.Get(c.Name))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("store: failed to insert row into %s: %w", def.Category.DataTable(), err)
		}
	}
	return nil
}

// bindValue converts a cell to the SQL argument matching the column's
// declared type. Dates normalize to ISO-8601 text when parseable.
func bindValue(col schema.Column, v types.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch col.Type {
	case schema.TypeInteger:
		if f, ok := v.Float(); ok {
			return int64(f)
		}
	case schema.TypeReal:
		if f, ok := v.Float(); ok {
			return f
		}
	case schema.TypeDate:
		if t, ok := v.ParseDate(); ok {
			return t.Format("2006-01-02")
		}
	}
	if s, ok := v.Text(); ok {
		return s
	}
	return nil
}

func insertIssuesTx(ctx context.Context, tx *sql.Tx, uploadID string, issues []quality.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(timeLayout)
	for _, is := range issues {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO data_quality_issues (upload_id, issue_type, severity, column_name, row_count, auto_resolved, message, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uploadID, is.Type, is.Severity, is.Column, is.Count, is.AutoResolved, is.Message, now,
		); err != nil {
			return fmt.Errorf("store: failed to insert quality issue: %w", err)
		}
	}
	return nil
}

const uploadColumns = "id, category, filename, stored_path, file_size_bytes, uploaded_by, uploaded_at, row_count, quality_score, is_active"

func scanUpload(row interface{ Scan(...interface{}) error }) (UploadRecord, error) {
	var rec UploadRecord
	var cat, uploadedAt string
	var uploadedBy sql.NullString
	var active int
	if err := row.Scan(&rec.ID, &cat, &rec.Filename, &rec.StoredPath, &rec.FileSize, &uploadedBy,
		&uploadedAt, &rec.RowCount, &rec.QualityScore, &active); err != nil {
		return UploadRecord{}, err
	}
	rec.Category = types.Category(cat)
	rec.UploadedBy = uploadedBy.String
	rec.Active = active == 1
	if t, err := time.Parse(timeLayout, uploadedAt); err == nil {
		rec.UploadedAt = t
	}
	return rec, nil
}

func getActiveTx(ctx context.Context, tx *sql.Tx, category types.Category) (UploadRecord, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+uploadColumns+" FROM file_uploads WHERE category = ? AND is_active = 1",
		string(category),
	)
	return scanUpload(row)
}

// GetActive returns the active upload record for a category, or
// types.ErrNoActiveRecord when the category has no data.
func (s *Store) GetActive(ctx context.Context, category types.Category) (UploadRecord, error) {
	row := s.readDB.QueryRowContext(ctx,
		"SELECT "+uploadColumns+" FROM file_uploads WHERE category = ? AND is_active = 1",
		string(category),
	)
	rec, err := scanUpload(row)
	if err == sql.ErrNoRows {
		return UploadRecord{}, fmt.Errorf("store: %s: %w", category, types.ErrNoActiveRecord)
	}
	if err != nil {
		return UploadRecord{}, fmt.Errorf("store: failed to load active record: %w", err)
	}
	return rec, nil
}

// History returns the active record followed by up to ten archived
// versions, newest first.
func (s *Store) History(ctx context.Context, category types.Category) ([]HistoryEntry, error) {
	var entries []HistoryEntry

	if active, err := s.GetActive(ctx, category); err == nil {
		entries = append(entries, HistoryEntry{Record: active})
	}

	rows, err := s.readDB.QueryContext(ctx,
		`SELECT u.id, u.category, u.filename, u.stored_path, u.file_size_bytes, u.uploaded_by, u.uploaded_at,
		        u.row_count, u.quality_score, u.is_active, v.version_number, v.archived_at
		 FROM file_versions v
		 JOIN file_uploads u ON v.upload_id = u.id
		 WHERE u.category = ?
		 ORDER BY v.version_number DESC
		 LIMIT 10`,
		string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec UploadRecord
		var cat, uploadedAt, archivedAt string
		var uploadedBy sql.NullString
		var active, version int
		if err := rows.Scan(&rec.ID, &cat, &rec.Filename, &rec.StoredPath, &rec.FileSize, &uploadedBy,
			&uploadedAt, &rec.RowCount, &rec.QualityScore, &active, &version, &archivedAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan history row: %w", err)
		}
		rec.Category = types.Category(cat)
		rec.UploadedBy = uploadedBy.String
		rec.Active = active == 1
		if t, err := time.Parse(timeLayout, uploadedAt); err == nil {
			rec.UploadedAt = t
		}
		entry := HistoryEntry{Record: rec, Version: version}
		if t, err := time.Parse(timeLayout, archivedAt); err == nil {
			entry.ArchivedAt = &t
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: history iteration failed: %w", err)
	}
	return entries, nil
}

// StatusAll reports every category's active record, marking
// categories with no data as missing.
func (s *Store) StatusAll(ctx context.Context) ([]CategoryStatus, error) {
	statuses := make([]CategoryStatus, 0, len(types.Categories()))
	for _, cat := range types.Categories() {
		rec, err := s.GetActive(ctx, cat)
		if err != nil {
			if isNoActive(err) {
				statuses = append(statuses, CategoryStatus{Category: cat})
				continue
			}
			return nil, err
		}
		statuses = append(statuses, CategoryStatus{Category: cat, HasData: true, Active: &rec})
	}
	return statuses, nil
}

func isNoActive(err error) bool {
	return errors.Is(err, types.ErrNoActiveRecord)
}

// Issues returns the persisted quality issues for an upload.
func (s *Store) Issues(ctx context.Context, uploadID string) ([]IssueRecord, error) {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT upload_id, issue_type, severity, column_name, row_count, auto_resolved, message, created_at
		 FROM data_quality_issues WHERE upload_id = ? ORDER BY id`,
		uploadID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query issues: %w", err)
	}
	defer rows.Close()

	var out []IssueRecord
	for rows.Next() {
		var ir IssueRecord
		var column sql.NullString
		var autoResolved int
		var createdAt string
		if err := rows.Scan(&ir.UploadID, &ir.Type, &ir.Severity, &column,
			&ir.Count, &autoResolved, &ir.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan issue: %w", err)
		}
		ir.Column = column.String
		ir.AutoResolved = autoResolved == 1
		if t, err := time.Parse(timeLayout, createdAt); err == nil {
			ir.CreatedAt = t
		}
		out = append(out, ir)
	}
	return out, rows.Err()
}

// Preview returns up to limit rows of a category's data table in
// insertion order.
func (s *Store) Preview(ctx context.Context, category types.Category, limit int) ([]string, []map[string]interface{}, error) {
	def, err := schema.Get(category)
	if err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf("SELECT rowid, * FROM %s ORDER BY rowid LIMIT %d", def.Category.DataTable(), limit)
	cols, data, err := s.queryGeneric(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	// Drop the rowid ordering column from the result.
	for _, row := range data {
		delete(row, "rowid")
	}
	if len(cols) > 0 && cols[0] == "rowid" {
		cols = cols[1:]
	}
	return cols, data, nil
}

// RowCount returns the number of rows in a category's data table.
func (s *Store) RowCount(ctx context.Context, category types.Category) (int64, error) {
	def, err := schema.Get(category)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+def.Category.DataTable()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: failed to count rows: %w", err)
	}
	return n, nil
}

// Rows returns every row of a category's data table. Used by the
// graph syncer to snapshot a category.
func (s *Store) Rows(ctx context.Context, category types.Category) ([]map[string]interface{}, error) {
	def, err := schema.Get(category)
	if err != nil {
		return nil, err
	}
	_, data, err := s.queryGeneric(ctx, "SELECT * FROM "+def.Category.DataTable())
	return data, err
}

// queryGeneric runs a read query and scans every row into maps.
func (s *Store) queryGeneric(ctx context.Context, query string, args ...interface{}) ([]string, []map[string]interface{}, error) {
	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("store: query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("store: failed to read columns: %w", err)
	}

	var out []map[string]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("store: failed to scan row: %w", err)
		}
		row := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[c] = v
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
