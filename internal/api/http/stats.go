package http

import (
	"net/http"

	"github.com/ayusingh-54/supply-chain-analytics/internal/observability"
)

// StatsHandler serves GET /v1/stats: per-category upload counters
// since startup.
type StatsHandler struct {
	stats *observability.UploadStats
}

// NewStatsHandler creates a stats handler. stats may be nil when
// tracking is disabled.
func NewStatsHandler(stats *observability.UploadStats) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// StatsResponse is the upload counter snapshot.
type StatsResponse struct {
	Categories []observability.CategoryStats `json:"categories"`
	Totals     observability.Totals          `json:"totals"`
}

// ServeHTTP handles the stats HTTP request.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	if h.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "upload statistics are disabled", requestID)
		return
	}

	resp := StatsResponse{
		Categories: h.stats.Snapshot(),
		Totals:     h.stats.TotalStats(),
	}
	if resp.Categories == nil {
		resp.Categories = []observability.CategoryStats{}
	}

	writeJSON(w, http.StatusOK, resp)
}
