package http

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayusingh-54/supply-chain-analytics/internal/events"
	"github.com/ayusingh-54/supply-chain-analytics/internal/graph"
	"github.com/ayusingh-54/supply-chain-analytics/internal/observability"
	"github.com/ayusingh-54/supply-chain-analytics/internal/pipeline"
	"github.com/ayusingh-54/supply-chain-analytics/internal/store"
)

// RouterConfig carries the dependencies for the API router.
type RouterConfig struct {
	Orchestrator *pipeline.Orchestrator
	Store        *store.Store
	Syncer       *graph.Syncer
	Mirror       graph.Mirror
	Stats        *observability.UploadStats
	Bus          *events.Bus
	Logger       *zap.Logger

	// MaxUploadBytes caps the accepted upload request body size.
	MaxUploadBytes int64
	// PreviewRows is the default preview page size.
	PreviewRows int
}

// NewRouter builds the API routing table with the default middleware
// chain applied to every endpoint.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	upload := NewUploadHandler(cfg.Orchestrator, cfg.MaxUploadBytes)
	validate := NewValidateHandler(cfg.Orchestrator, cfg.MaxUploadBytes)
	files := NewFilesHandler(cfg.Store, cfg.PreviewRows)
	analytics := NewAnalyticsHandler(cfg.Store)
	graphAPI := NewGraphHandler(cfg.Syncer, cfg.Mirror, cfg.Bus)

	middleware := DefaultMiddleware(logger)

	mux := http.NewServeMux()
	mux.Handle("/v1/files/upload", middleware(upload))
	mux.Handle("/v1/files/validate", middleware(validate))
	mux.Handle("/v1/files/status", middleware(http.HandlerFunc(files.Status)))
	mux.Handle("/v1/files/status/", middleware(http.HandlerFunc(files.Status)))
	mux.Handle("/v1/files/history/", middleware(http.HandlerFunc(files.History)))
	mux.Handle("/v1/files/preview/", middleware(http.HandlerFunc(files.Preview)))
	mux.Handle("/v1/files/schema/", middleware(http.HandlerFunc(files.Schema)))
	mux.Handle("/v1/templates/", middleware(http.HandlerFunc(files.Template)))

	mux.Handle("/v1/database/refresh", middleware(http.HandlerFunc(graphAPI.Refresh)))
	mux.Handle("/v1/database/kpis", middleware(http.HandlerFunc(analytics.KPIs)))
	mux.Handle("/v1/database/sales-summary", middleware(http.HandlerFunc(analytics.SalesSummary)))
	mux.Handle("/v1/database/inventory-status", middleware(http.HandlerFunc(analytics.InventoryStatus)))
	mux.Handle("/v1/database/supplier-analysis", middleware(http.HandlerFunc(analytics.SupplierAnalysis)))
	mux.Handle("/v1/database/query", middleware(http.HandlerFunc(analytics.Query)))

	mux.Handle("/v1/stats", middleware(NewStatsHandler(cfg.Stats)))

	mux.Handle("/v1/graph/network", middleware(http.HandlerFunc(graphAPI.Network)))
	mux.Handle("/v1/graph/supplier/", middleware(http.HandlerFunc(graphAPI.SupplierDependencies)))
	mux.Handle("/v1/graph/product/", middleware(http.HandlerFunc(graphAPI.ProductTrace)))

	mux.HandleFunc("/health", healthHandler)

	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"healthy","service":"supplychain-api"}`)
}
