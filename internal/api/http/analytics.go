package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ayusingh-54/supply-chain-analytics/internal/store"
)

// AnalyticsHandler serves the aggregate analytics endpoints over the
// active category data.
type AnalyticsHandler struct {
	store *store.Store
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(st *store.Store) *AnalyticsHandler {
	return &AnalyticsHandler{store: st}
}

// KPIs handles GET /v1/database/kpis.
func (h *AnalyticsHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	kpis, err := h.store.GetKPIs(r.Context())
	if err != nil {
		writePipelineError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, kpis)
}

// SalesSummary handles GET /v1/database/sales-summary with optional
// start_date, end_date, and sku query parameters.
func (h *AnalyticsHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	q := r.URL.Query()
	filter := store.SalesFilter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		SKU:       q.Get("sku"),
	}

	summary, err := h.store.GetSalesSummary(r.Context(), filter)
	if err != nil {
		writePipelineError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// InventoryStatus handles GET /v1/database/inventory-status.
func (h *AnalyticsHandler) InventoryStatus(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	status, err := h.store.GetInventoryStatus(r.Context())
	if err != nil {
		writePipelineError(w, err, requestID)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// SupplierAnalysis handles GET /v1/database/supplier-analysis.
func (h *AnalyticsHandler) SupplierAnalysis(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	stats, err := h.store.GetSupplierAnalysis(r.Context())
	if err != nil {
		writePipelineError(w, err, requestID)
		return
	}
	if stats == nil {
		stats = []store.SupplierStats{}
	}

	writeJSON(w, http.StatusOK, stats)
}

// QueryRequest represents an ad-hoc query request.
type QueryRequest struct {
	SQL string `json:"sql"`
}

// QueryResponse represents the query response.
type QueryResponse struct {
	Columns   []string                 `json:"columns"`
	Rows      []map[string]interface{} `json:"rows"`
	RowCount  int                      `json:"row_count"`
	RequestID string                   `json:"request_id"`
}

// Query handles POST /v1/database/query. Only single SELECT statements
// are accepted.
func (h *AnalyticsHandler) Query(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}

	if req.SQL == "" {
		writeError(w, http.StatusBadRequest, "sql is required", requestID)
		return
	}

	columns, rows, err := h.store.RunSelect(r.Context(), req.SQL)
	if err != nil {
		writePipelineError(w, err, requestID)
		return
	}

	resp := QueryResponse{
		Columns:   columns,
		Rows:      rows,
		RowCount:  len(rows),
		RequestID: requestID,
	}
	if resp.Rows == nil {
		resp.Rows = []map[string]interface{}{}
	}
	if resp.Columns == nil {
		resp.Columns = []string{}
	}

	writeJSON(w, http.StatusOK, resp)
}
