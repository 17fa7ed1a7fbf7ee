package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipeerrors "github.com/ayusingh-54/supply-chain-analytics/internal/errors"
	"github.com/ayusingh-54/supply-chain-analytics/internal/events"
	"github.com/ayusingh-54/supply-chain-analytics/internal/graph"
	"github.com/ayusingh-54/supply-chain-analytics/internal/observability"
	"github.com/ayusingh-54/supply-chain-analytics/internal/quality"
	"github.com/ayusingh-54/supply-chain-analytics/internal/storage"
	"github.com/ayusingh-54/supply-chain-analytics/internal/store"
	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

func newTestPipeline(t *testing.T) (*Orchestrator, *store.Store, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.New(filepath.Join(dir, "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	files, err := storage.NewLocalStorage(filepath.Join(dir, "files"))
	require.NoError(t, err)

	mirror := graph.NewMemoryMirror()
	syncer := graph.NewSyncer(st, mirror, nil)

	o := New(st, files, syncer, nil)
	o.now = func() time.Time {
		return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	}
	return o, st, files
}

const goodSalesCSV = "date,sku,quantity,revenue\n" +
	"2025-01-10,SKU-A,2,20\n" +
	"2025-01-10,SKU-A,2,20\n" + // exact duplicate
	"2025-01-11,,1,10\n" + // null sku
	"2025-01-12,SKU-B,-5,10\n" + // negative quantity
	"2025-01-13,SKU-C,3,30\n"

func TestProcessUpload_MixedQualityFile(t *testing.T) {
	o, _, files := newTestPipeline(t)
	ctx := context.Background()

	resp, err := o.ProcessUpload(ctx, UploadRequest{
		Category:   "sales",
		Filename:   "january.csv",
		Content:    []byte(goodSalesCSV),
		UploadedBy: "ops",
	})
	require.NoError(t, err)

	assert.Equal(t, StateRecorded, resp.State)
	assert.NotEmpty(t, resp.UploadID)
	assert.Equal(t, 5, resp.OriginalRows)
	assert.Equal(t, 2, resp.CleanedRows)
	assert.Equal(t, quality.Score(5, 2, resp.Issues), resp.QualityScore)
	assert.Len(t, resp.Issues, 3)
	assert.Contains(t, resp.Message, "2 rows")

	// The raw bytes are archived under the active prefix, verbatim.
	assert.Equal(t, "uploads/active/sales_20250310_093000_january.csv", resp.StoredPath)
	raw, err := files.Read(ctx, resp.StoredPath)
	require.NoError(t, err)
	assert.Equal(t, goodSalesCSV, string(raw))
}

func TestProcessUpload_RecordsFileSize(t *testing.T) {
	o, st, _ := newTestPipeline(t)
	ctx := context.Background()

	content := []byte(goodSalesCSV)
	_, err := o.ProcessUpload(ctx, UploadRequest{
		Category: "sales",
		Filename: "january.csv",
		Content:  content,
	})
	require.NoError(t, err)

	active, err := st.GetActive(ctx, types.CategorySales)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), active.FileSize)
}

func TestProcessUpload_SchemaRejection(t *testing.T) {
	o, st, files := newTestPipeline(t)
	ctx := context.Background()

	resp, err := o.ProcessUpload(ctx, UploadRequest{
		Category: "sales",
		Filename: "broken.csv",
		Content:  []byte("date,sku\n2025-01-01,SKU-A\n"),
	})
	require.NoError(t, err, "a schema rejection is a response, not an error")

	assert.Equal(t, StateRejected, resp.State)
	assert.Empty(t, resp.UploadID)
	assert.False(t, resp.Schema.SchemaValid)
	assert.Equal(t, []string{"quantity", "revenue"}, resp.Schema.MissingColumns)
	assert.Contains(t, resp.Message, "quantity")

	// Raw bytes are quarantined, nothing reaches the store.
	assert.Equal(t, "uploads/rejected/sales_20250310_093000_broken.csv", resp.StoredPath)
	exists, err := files.Exists(ctx, resp.StoredPath)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = st.GetActive(ctx, types.CategorySales)
	assert.ErrorIs(t, err, types.ErrNoActiveRecord)

	n, err := st.RowCount(ctx, types.CategorySales)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestProcessUpload_ReplaceVersioning(t *testing.T) {
	o, st, _ := newTestPipeline(t)
	ctx := context.Background()

	good := "date,sku,quantity,revenue\n2025-01-10,SKU-A,2,20\n"
	first, err := o.ProcessUpload(ctx, UploadRequest{Category: "sales", Filename: "v1.csv", Content: []byte(good)})
	require.NoError(t, err)

	second, err := o.ProcessUpload(ctx, UploadRequest{Category: "sales", Filename: "v2.csv", Content: []byte(good + "2025-01-11,SKU-B,1,10\n")})
	require.NoError(t, err)

	active, err := st.GetActive(ctx, types.CategorySales)
	require.NoError(t, err)
	assert.Equal(t, second.UploadID, active.ID)

	history, err := st.History(ctx, types.CategorySales)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.UploadID, history[1].Record.ID)
	assert.Equal(t, 1, history[1].Version)

	n, err := st.RowCount(ctx, types.CategorySales)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "replace clears the previous rows")
}

func TestProcessUpload_AppendMode(t *testing.T) {
	o, st, _ := newTestPipeline(t)
	ctx := context.Background()

	base := "date,sku,quantity,revenue\n2025-01-10,SKU-A,2,20\n"
	first, err := o.ProcessUpload(ctx, UploadRequest{Category: "sales", Filename: "base.csv", Content: []byte(base)})
	require.NoError(t, err)

	resp, err := o.ProcessUpload(ctx, UploadRequest{
		Category: "sales",
		Filename: "more.csv",
		Content:  []byte("date,sku,quantity,revenue\n2025-01-11,SKU-B,1,10\n"),
		Mode:     "append",
	})
	require.NoError(t, err)
	assert.Equal(t, first.UploadID, resp.UploadID, "append folds into the active record")

	active, err := st.GetActive(ctx, types.CategorySales)
	require.NoError(t, err)
	assert.Equal(t, 2, active.RowCount)

	n, err := st.RowCount(ctx, types.CategorySales)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestProcessUpload_UnknownCategory(t *testing.T) {
	o, _, _ := newTestPipeline(t)

	_, err := o.ProcessUpload(context.Background(), UploadRequest{
		Category: "returns",
		Filename: "r.csv",
		Content:  []byte("a,b\n1,2\n"),
	})
	require.Error(t, err)
	assert.Equal(t, pipeerrors.CodeUnknownCategory, pipeerrors.GetCode(err))
}

func TestProcessUpload_UnsupportedFormat(t *testing.T) {
	o, _, _ := newTestPipeline(t)

	_, err := o.ProcessUpload(context.Background(), UploadRequest{
		Category: "sales",
		Filename: "sales.json",
		Content:  []byte("{}"),
	})
	require.Error(t, err)
	assert.Equal(t, pipeerrors.CodeUnsupportedFormat, pipeerrors.GetCode(err))
}

func TestProcessUpload_BadMode(t *testing.T) {
	o, _, _ := newTestPipeline(t)

	_, err := o.ProcessUpload(context.Background(), UploadRequest{
		Category: "sales",
		Filename: "s.csv",
		Content:  []byte("date,sku,quantity,revenue\n"),
		Mode:     "merge",
	})
	require.Error(t, err)
}

func TestProcessUpload_GraphSyncReported(t *testing.T) {
	o, _, _ := newTestPipeline(t)

	resp, err := o.ProcessUpload(context.Background(), UploadRequest{
		Category: "sales",
		Filename: "s.csv",
		Content:  []byte("date,sku,quantity,revenue\n2025-01-10,SKU-A,2,20\n"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.GraphSync)
	assert.Equal(t, "ok", resp.GraphSync.Status)
	assert.Greater(t, resp.GraphSync.Nodes, 0)
}

func TestValidate_DryRunHasNoSideEffects(t *testing.T) {
	o, st, files := newTestPipeline(t)
	ctx := context.Background()

	resp, err := o.Validate(ctx, UploadRequest{
		Category: "sales",
		Filename: "january.csv",
		Content:  []byte(goodSalesCSV),
	})
	require.NoError(t, err)

	assert.True(t, resp.SchemaValid)
	assert.Equal(t, 5, resp.OriginalRows)
	assert.Equal(t, 2, resp.CleanedRows)
	require.Len(t, resp.Preview, 2)
	assert.Equal(t, "SKU-A", resp.Preview[0]["sku"])

	// Nothing was written anywhere.
	active, err := files.List(ctx, storage.ActivePrefix)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = st.GetActive(ctx, types.CategorySales)
	assert.ErrorIs(t, err, types.ErrNoActiveRecord)
}

func TestValidate_InvalidSchema(t *testing.T) {
	o, _, files := newTestPipeline(t)
	ctx := context.Background()

	resp, err := o.Validate(ctx, UploadRequest{
		Category: "inventory",
		Filename: "inv.csv",
		Content:  []byte("sku\nSKU-1\n"),
	})
	require.NoError(t, err)
	assert.False(t, resp.SchemaValid)
	assert.Equal(t, []string{"qty_on_hand", "reorder_point"}, resp.Schema.MissingColumns)
	assert.Empty(t, resp.Preview)

	// Validation never quarantines.
	rejected, err := files.List(ctx, storage.RejectedPrefix)
	require.NoError(t, err)
	assert.Empty(t, rejected)
}

func TestProcessUpload_PublishesEventsAndStats(t *testing.T) {
	o, _, _ := newTestPipeline(t)
	ctx := context.Background()

	bus := events.NewBus(4)
	stats := observability.NewUploadStats(time.Hour)
	WithEventBus(bus)(o)
	WithStats(stats)(o)

	sub := bus.Subscribe()

	resp, err := o.ProcessUpload(ctx, UploadRequest{
		Category: "sales",
		Filename: "january.csv",
		Content:  []byte(goodSalesCSV),
	})
	require.NoError(t, err)

	evt := <-sub.Ch
	assert.Equal(t, events.UploadAccepted, evt.Type)
	assert.Equal(t, types.CategorySales, evt.Category)
	assert.Equal(t, resp.UploadID, evt.UploadID)
	assert.Equal(t, 2, evt.RowCount)

	// The graph sync that follows a commit publishes its outcome.
	evt = <-sub.Ch
	assert.Equal(t, events.GraphSynced, evt.Type)
	assert.Equal(t, resp.UploadID, evt.UploadID)
	assert.Equal(t, "ok", evt.SyncStatus)

	// A schema rejection publishes too and counts separately.
	_, err = o.ProcessUpload(ctx, UploadRequest{
		Category: "sales",
		Filename: "bad.csv",
		Content:  []byte("sku\nSKU-1\n"),
	})
	require.NoError(t, err)

	evt = <-sub.Ch
	assert.Equal(t, events.UploadRejected, evt.Type)

	snap := stats.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(1), snap[0].Uploads)
	assert.Equal(t, int64(1), snap[0].Rejected)
	assert.Equal(t, int64(2), snap[0].RowsLoaded)
	assert.Equal(t, int64(3), snap[0].RowsDropped)
}
