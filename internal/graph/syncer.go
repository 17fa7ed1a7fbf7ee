package graph

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// RowSource provides the category snapshots the syncer mirrors.
// *store.Store satisfies this.
type RowSource interface {
	Rows(ctx context.Context, category types.Category) ([]map[string]interface{}, error)
}

// Syncer rebuilds a mirror from the analytical store. Failures are
// reported in the SyncResult and logged as warnings; they never
// surface as errors to the upload path.
type Syncer struct {
	source RowSource
	mirror Mirror
	logger *zap.Logger
}

// NewSyncer creates a syncer.
func NewSyncer(source RowSource, mirror Mirror, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{source: source, mirror: mirror, logger: logger}
}

// Sync snapshots the four category tables in parallel and rebuilds
// the mirror from them.
func (s *Syncer) Sync(ctx context.Context) SyncResult {
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.source.Rows(gctx, types.CategorySales)
		snap.Sales = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.source.Rows(gctx, types.CategoryInventory)
		snap.Inventory = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.source.Rows(gctx, types.CategorySupplier)
		snap.Suppliers = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.source.Rows(gctx, types.CategoryPurchaseOrder)
		snap.PurchaseOrders = rows
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("graph sync: snapshot failed", zap.Error(err))
		return SyncResult{Status: "failed", Message: err.Error()}
	}

	nodes, edges, err := s.mirror.ReplaceAll(ctx, snap)
	if err != nil {
		s.logger.Warn("graph sync: rebuild failed", zap.Error(err))
		return SyncResult{Status: "failed", Message: err.Error()}
	}

	s.logger.Info("graph sync: mirror rebuilt",
		zap.Int("nodes", nodes),
		zap.Int("edges", edges),
	)
	return SyncResult{Status: "ok", Nodes: nodes, Edges: edges}
}
