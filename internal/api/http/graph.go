package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/ayusingh-54/supply-chain-analytics/internal/events"
	"github.com/ayusingh-54/supply-chain-analytics/internal/graph"
)

// GraphHandler serves the graph mirror: manual refresh plus network,
// dependency, and trace queries.
type GraphHandler struct {
	syncer *graph.Syncer
	mirror graph.Mirror
	bus    *events.Bus
}

// NewGraphHandler creates a new graph handler. syncer may be nil when
// the mirror is disabled; bus may be nil.
func NewGraphHandler(syncer *graph.Syncer, mirror graph.Mirror, bus *events.Bus) *GraphHandler {
	return &GraphHandler{
		syncer: syncer,
		mirror: mirror,
		bus:    bus,
	}
}

// Refresh handles POST /v1/database/refresh: a full rebuild of the
// graph mirror from the active category data. Failures are reported in
// the result, never as an HTTP error.
func (h *GraphHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	if h.syncer == nil {
		writeError(w, http.StatusServiceUnavailable, "graph mirror is disabled", requestID)
		return
	}

	result := h.syncer.Sync(r.Context())
	if h.bus != nil {
		h.bus.Publish(events.Event{
			Type:       events.GraphSynced,
			SyncStatus: result.Status,
			Timestamp:  time.Now().UTC(),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

// Network handles GET /v1/graph/network: the full supplier network
// view.
func (h *GraphHandler) Network(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	if h.mirror == nil {
		writeError(w, http.StatusServiceUnavailable, "graph mirror is disabled", requestID)
		return
	}

	view, err := h.mirror.Network(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), requestID)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// SupplierDependencies handles GET /v1/graph/supplier/{id}.
func (h *GraphHandler) SupplierDependencies(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	if h.mirror == nil {
		writeError(w, http.StatusServiceUnavailable, "graph mirror is disabled", requestID)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/graph/supplier/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "supplier id is required", requestID)
		return
	}

	deps, err := h.mirror.SupplierDependencies(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), requestID)
		return
	}

	writeJSON(w, http.StatusOK, deps)
}

// ProductTrace handles GET /v1/graph/product/{sku}.
func (h *GraphHandler) ProductTrace(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	if h.mirror == nil {
		writeError(w, http.StatusServiceUnavailable, "graph mirror is disabled", requestID)
		return
	}

	sku := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/graph/product/"), "/")
	if sku == "" {
		writeError(w, http.StatusBadRequest, "sku is required", requestID)
		return
	}

	trace, err := h.mirror.ProductTrace(r.Context(), sku)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), requestID)
		return
	}

	writeJSON(w, http.StatusOK, trace)
}
