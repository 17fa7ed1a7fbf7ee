// Package pipeline orchestrates the upload flow: read, validate
// schema, run quality checks, persist the raw file, commit to the
// versioned store, and kick the best-effort graph sync.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/google/uuid"
	"go.uber.org/zap"

	pipeerrors "github.com/ayusingh-54/supply-chain-analytics/internal/errors"
	"github.com/ayusingh-54/supply-chain-analytics/internal/events"
	"github.com/ayusingh-54/supply-chain-analytics/internal/graph"
	"github.com/ayusingh-54/supply-chain-analytics/internal/ingest"
	"github.com/ayusingh-54/supply-chain-analytics/internal/observability"
	"github.com/ayusingh-54/supply-chain-analytics/internal/quality"
	"github.com/ayusingh-54/supply-chain-analytics/internal/schema"
	"github.com/ayusingh-54/supply-chain-analytics/internal/storage"
	"github.com/ayusingh-54/supply-chain-analytics/internal/store"
	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// State is the upload's position in the pipeline.
type State string

const (
	StateReceived       State = "received"
	StateParsed         State = "parsed"
	StateSchemaChecked  State = "schema_checked"
	StateQualityChecked State = "quality_checked"
	StateStored         State = "stored"
	StateRecorded       State = "recorded"
	StateRejected       State = "rejected"
)

// UploadRequest is one file heading into the pipeline.
type UploadRequest struct {
	Category   string
	Filename   string
	Content    []byte
	UploadedBy string
	Mode       string // "replace" (default) or "append"
}

// UploadResponse reports the pipeline outcome. A schema rejection is
// a response with StateRejected, not an error.
type UploadResponse struct {
	UploadID     string            `json:"upload_id,omitempty"`
	Category     types.Category    `json:"category"`
	State        State             `json:"state"`
	Filename     string            `json:"filename"`
	StoredPath   string            `json:"stored_path,omitempty"`
	OriginalRows int               `json:"original_rows"`
	CleanedRows  int               `json:"cleaned_rows"`
	QualityScore float64           `json:"quality_score"`
	Schema       schema.Report     `json:"schema"`
	Issues       []quality.Issue   `json:"issues"`
	Message      string            `json:"message"`
	GraphSync    *graph.SyncResult `json:"graph_sync,omitempty"`
}

// ValidationResponse is the dry-run outcome: the same checks with no
// side effects plus a preview of the cleaned rows.
type ValidationResponse struct {
	Category     types.Category           `json:"category"`
	Filename     string                   `json:"filename"`
	SchemaValid  bool                     `json:"schema_valid"`
	Schema       schema.Report            `json:"schema"`
	OriginalRows int                      `json:"original_rows"`
	CleanedRows  int                      `json:"cleaned_rows"`
	QualityScore float64                  `json:"quality_score"`
	Issues       []quality.Issue          `json:"issues"`
	Preview      []map[string]interface{} `json:"preview"`
}

// Orchestrator drives uploads through the pipeline stages.
type Orchestrator struct {
	reader  *ingest.Reader
	checker *quality.Checker
	store   *store.Store
	files   storage.ObjectStorage
	syncer  *graph.Syncer
	logger  *zap.Logger
	bus     *events.Bus
	stats   *observability.UploadStats
	now     func() time.Time
}

// Option configures optional orchestrator behavior.
type Option func(*Orchestrator)

// WithEventBus publishes upload lifecycle events on the given bus.
func WithEventBus(bus *events.Bus) Option {
	return func(o *Orchestrator) { o.bus = bus }
}

// WithStats records per-category upload counters.
func WithStats(stats *observability.UploadStats) Option {
	return func(o *Orchestrator) { o.stats = stats }
}

// New creates an orchestrator. syncer may be nil to disable the graph
// mirror; logger may be nil.
func New(st *store.Store, files storage.ObjectStorage, syncer *graph.Syncer, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		reader:  ingest.NewReader(),
		checker: quality.NewChecker(),
		store:   st,
		files:   files,
		syncer:  syncer,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// storedName builds the archival object name for an upload:
// <category>_<yyyymmdd_hhmmss>_<original filename>.
func (o *Orchestrator) storedName(category types.Category, filename string, ts time.Time) string {
	return fmt.Sprintf("%s_%s_%s", category, ts.UTC().Format("20060102_150405"), filepath.Base(filename))
}

// prepare runs the side-effect-free stages shared by uploads and
// validation dry runs.
func (o *Orchestrator) prepare(req UploadRequest) (types.Category, schema.Report, quality.Result, error) {
	category, err := types.ParseCategory(req.Category)
	if err != nil {
		return "", schema.Report{}, quality.Result{}, pipeerrors.Wrap(
			pipeerrors.ErrCategoryIngest, pipeerrors.CodeUnknownCategory,
			fmt.Sprintf("category %q is not supported", req.Category), err)
	}

	tbl, err := o.reader.Read(req.Filename, req.Content)
	if err != nil {
		code := pipeerrors.CodeParseError
		if errors.Is(err, types.ErrUnsupportedFormat) {
			code = pipeerrors.CodeUnsupportedFormat
		}
		return "", schema.Report{}, quality.Result{}, pipeerrors.Wrap(
			pipeerrors.ErrCategoryIngest, code, "could not read uploaded file", err)
	}

	report, err := schema.Validate(tbl, category)
	if err != nil {
		return "", schema.Report{}, quality.Result{}, pipeerrors.NewInternalError("schema validation failed", err)
	}
	if !report.SchemaValid {
		return category, report, quality.Result{OriginalRows: tbl.NumRows(), Issues: []quality.Issue{}}, nil
	}

	qres, err := o.checker.Check(tbl, category)
	if err != nil {
		return "", schema.Report{}, quality.Result{}, pipeerrors.NewInternalError("quality checks failed", err)
	}
	return category, report, qres, nil
}

// ProcessUpload runs the full pipeline for one upload.
func (o *Orchestrator) ProcessUpload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	mode, err := store.ParseMode(req.Mode)
	if err != nil {
		return nil, pipeerrors.Wrap(pipeerrors.ErrCategoryIngest, pipeerrors.CodeParseError, "invalid upload mode", err)
	}

	category, report, qres, err := o.prepare(req)
	if err != nil {
		return nil, err
	}

	ts := o.now()
	if !report.SchemaValid {
		return o.reject(ctx, category, req, report, qres, ts), nil
	}

	score := quality.Score(qres.OriginalRows, qres.CleanedRows, qres.Issues)
	storedPath := storage.ActivePrefix + "/" + o.storedName(category, req.Filename, ts)

	if err := o.files.Write(ctx, storedPath, req.Content); err != nil {
		return nil, pipeerrors.NewStorageError(pipeerrors.CodeWriteFailed, "could not persist raw upload", err)
	}

	rec := store.UploadRecord{
		ID:           uuid.NewString(),
		Category:     category,
		Filename:     filepath.Base(req.Filename),
		StoredPath:   storedPath,
		FileSize:     int64(len(req.Content)),
		UploadedBy:   req.UploadedBy,
		UploadedAt:   ts.UTC(),
		RowCount:     qres.CleanedRows,
		QualityScore: score,
	}

	committed, err := o.store.CommitUpload(ctx, rec, qres.Cleaned, mode, qres.Issues)
	if err != nil {
		return nil, pipeerrors.NewStoreError(pipeerrors.CodeStoreError, "could not commit upload", err)
	}

	resp := &UploadResponse{
		UploadID:     committed.ID,
		Category:     category,
		State:        StateRecorded,
		Filename:     rec.Filename,
		StoredPath:   storedPath,
		OriginalRows: qres.OriginalRows,
		CleanedRows:  qres.CleanedRows,
		QualityScore: score,
		Schema:       report,
		Issues:       qres.Issues,
		Message: fmt.Sprintf("loaded %s into %s (quality score %.2f)",
			english.Plural(qres.CleanedRows, "row", ""), category, score),
	}

	if o.syncer != nil {
		sync := o.syncer.Sync(ctx)
		resp.GraphSync = &sync
	}

	if o.stats != nil {
		o.stats.RecordUpload(category, qres.OriginalRows, qres.CleanedRows, score)
	}
	if o.bus != nil {
		o.bus.Publish(events.Event{
			Type:         events.UploadAccepted,
			Category:     category,
			UploadID:     committed.ID,
			Filename:     rec.Filename,
			RowCount:     qres.CleanedRows,
			QualityScore: score,
			Timestamp:    ts.UTC(),
		})
		if resp.GraphSync != nil {
			o.bus.Publish(events.Event{
				Type:       events.GraphSynced,
				Category:   category,
				UploadID:   committed.ID,
				SyncStatus: resp.GraphSync.Status,
				Timestamp:  ts.UTC(),
			})
		}
	}

	o.logger.Info("upload processed",
		zap.String("upload_id", committed.ID),
		zap.String("category", string(category)),
		zap.String("mode", string(mode)),
		zap.Int("original_rows", qres.OriginalRows),
		zap.Int("cleaned_rows", qres.CleanedRows),
		zap.Float64("quality_score", score),
	)
	return resp, nil
}

// reject quarantines the raw bytes and reports the failure. The
// quarantine write is best effort; a reject must not fail because the
// quarantine area is unavailable.
func (o *Orchestrator) reject(ctx context.Context, category types.Category, req UploadRequest, report schema.Report, qres quality.Result, ts time.Time) *UploadResponse {
	rejectedPath := storage.RejectedPrefix + "/" + o.storedName(category, req.Filename, ts)
	if err := o.files.Write(ctx, rejectedPath, req.Content); err != nil {
		o.logger.Warn("failed to quarantine rejected upload",
			zap.String("path", rejectedPath), zap.Error(err))
		rejectedPath = ""
	}

	if o.stats != nil {
		o.stats.RecordRejection(category)
	}
	if o.bus != nil {
		o.bus.Publish(events.Event{
			Type:      events.UploadRejected,
			Category:  category,
			Filename:  filepath.Base(req.Filename),
			Timestamp: ts.UTC(),
		})
	}

	o.logger.Info("upload rejected",
		zap.String("category", string(category)),
		zap.Strings("missing_columns", report.MissingColumns),
	)
	return &UploadResponse{
		Category:     category,
		State:        StateRejected,
		Filename:     filepath.Base(req.Filename),
		StoredPath:   rejectedPath,
		OriginalRows: qres.OriginalRows,
		Schema:       report,
		Issues:       []quality.Issue{},
		Message: fmt.Sprintf("schema invalid: missing %s",
			english.WordSeries(report.MissingColumns, "and")),
	}
}

// Validate runs the pipeline checks without side effects and returns
// a preview of the first rows that would be loaded.
func (o *Orchestrator) Validate(ctx context.Context, req UploadRequest) (*ValidationResponse, error) {
	category, report, qres, err := o.prepare(req)
	if err != nil {
		return nil, err
	}

	resp := &ValidationResponse{
		Category:     category,
		Filename:     filepath.Base(req.Filename),
		SchemaValid:  report.SchemaValid,
		Schema:       report,
		OriginalRows: qres.OriginalRows,
		Issues:       qres.Issues,
		Preview:      []map[string]interface{}{},
	}
	if !report.SchemaValid {
		return resp, nil
	}

	resp.CleanedRows = qres.CleanedRows
	resp.QualityScore = quality.Score(qres.OriginalRows, qres.CleanedRows, qres.Issues)

	limit := 10
	if qres.Cleaned.NumRows() < limit {
		limit = qres.Cleaned.NumRows()
	}
	for _, row := range qres.Cleaned.Rows[:limit] {
		preview := make(map[string]interface{}, len(qres.Cleaned.Columns))
		for _, col := range qres.Cleaned.Columns {
			preview[col] = row.Get(col).Native()
		}
		resp.Preview = append(resp.Preview, preview)
	}
	return resp, nil
}
