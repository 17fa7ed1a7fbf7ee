package http

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	pipeerrors "github.com/ayusingh-54/supply-chain-analytics/internal/errors"
	"github.com/ayusingh-54/supply-chain-analytics/internal/schema"
	"github.com/ayusingh-54/supply-chain-analytics/internal/store"
	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// FilesHandler serves upload status, history, previews, schema
// introspection, and download templates.
type FilesHandler struct {
	store       *store.Store
	previewRows int
}

// NewFilesHandler creates a new files handler. previewRows is the
// default row count for data previews.
func NewFilesHandler(st *store.Store, previewRows int) *FilesHandler {
	return &FilesHandler{
		store:       st,
		previewRows: previewRows,
	}
}

// StatusResponse is the per-category upload status with issues for the
// active record.
type StatusResponse struct {
	Category types.Category      `json:"category"`
	HasData  bool                `json:"has_data"`
	Active   *store.UploadRecord `json:"active,omitempty"`
	Issues   []store.IssueRecord `json:"issues,omitempty"`
}

// Status handles GET /v1/files/status and GET /v1/files/status/{category}.
func (h *FilesHandler) Status(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/files/status"), "/")
	if rest == "" {
		statuses, err := h.store.StatusAll(r.Context())
		if err != nil {
			writePipelineError(w, err, requestID)
			return
		}
		writeJSON(w, http.StatusOK, statuses)
		return
	}

	category, err := types.ParseCategory(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	resp := StatusResponse{Category: category}
	rec, err := h.store.GetActive(r.Context(), category)
	switch {
	case err == nil:
		resp.HasData = true
		resp.Active = &rec
		issues, err := h.store.Issues(r.Context(), rec.ID)
		if err != nil {
			writePipelineError(w, err, requestID)
			return
		}
		resp.Issues = issues
	case errors.Is(err, types.ErrNoActiveRecord):
		// Empty category: reported, not an error.
	default:
		writePipelineError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /v1/files/history/{category}: the active record
// followed by up to ten archived versions, newest first.
func (h *FilesHandler) History(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	category, ok := h.pathCategory(w, r, "/v1/files/history/")
	if !ok {
		return
	}

	entries, err := h.store.History(r.Context(), category)
	if err != nil {
		writePipelineError(w, err, requestID)
		return
	}
	if entries == nil {
		entries = []store.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// PreviewResponse carries a page of active data rows.
type PreviewResponse struct {
	Category types.Category           `json:"category"`
	Columns  []string                 `json:"columns"`
	Rows     []map[string]interface{} `json:"rows"`
}

// Preview handles GET /v1/files/preview/{category}?limit=N.
func (h *FilesHandler) Preview(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	category, ok := h.pathCategory(w, r, "/v1/files/preview/")
	if !ok {
		return
	}

	limit := h.previewRows
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000", requestID)
			return
		}
		limit = n
	}

	// The data tables exist from startup, so an empty category has to
	// be detected through its active record.
	if _, err := h.store.GetActive(r.Context(), category); err != nil {
		writePipelineError(w, pipeerrors.NewStoreError(
			pipeerrors.CodeNoActiveRecord,
			fmt.Sprintf("no active upload for category %s", category), err), requestID)
		return
	}

	columns, rows, err := h.store.Preview(r.Context(), category, limit)
	if err != nil {
		writePipelineError(w, err, requestID)
		return
	}
	if rows == nil {
		rows = []map[string]interface{}{}
	}

	writeJSON(w, http.StatusOK, PreviewResponse{
		Category: category,
		Columns:  columns,
		Rows:     rows,
	})
}

// Schema handles GET /v1/files/schema/{category}: the expected columns,
// types, and constraints for a category.
func (h *FilesHandler) Schema(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	category, ok := h.pathCategory(w, r, "/v1/files/schema/")
	if !ok {
		return
	}

	desc, err := schema.Describe(category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	writeJSON(w, http.StatusOK, desc)
}

// Template handles GET /v1/templates/{category}?format=csv|xlsx: an
// empty file with the category's expected header row.
func (h *FilesHandler) Template(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	category, ok := h.pathCategory(w, r, "/v1/templates/")
	if !ok {
		return
	}

	def, err := schema.Get(category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	headers := make([]string, 0, len(def.Columns))
	for _, col := range def.Columns {
		headers = append(headers, col.Name)
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "csv":
		var buf bytes.Buffer
		cw := csv.NewWriter(&buf)
		cw.Write(headers)
		cw.Flush()

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s_template.csv"`, category))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())

	case "xlsx":
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to build template", requestID)
			return
		}
		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to build template", requestID)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s_template.xlsx"`, category))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())

	default:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported template format: %s", format), requestID)
	}
}

// pathCategory extracts and validates the category path segment after
// the given prefix.
func (h *FilesHandler) pathCategory(w http.ResponseWriter, r *http.Request, prefix string) (types.Category, bool) {
	requestID := GetRequestID(r.Context())

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, http.StatusBadRequest, "category is required", requestID)
		return "", false
	}

	category, err := types.ParseCategory(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return "", false
	}
	return category, true
}
