package store

import (
	"github.com/ayusingh-54/supply-chain-analytics/internal/schema"
	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// CreateFileUploadsTableSQL defines the upload records table. The
// partial unique index enforces at most one active record per
// category at the database level.
const CreateFileUploadsTableSQL = `
CREATE TABLE IF NOT EXISTS file_uploads (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    filename TEXT NOT NULL,
    stored_path TEXT NOT NULL,
    file_size_bytes INTEGER NOT NULL DEFAULT 0,
    uploaded_by TEXT,
    uploaded_at TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    quality_score REAL NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1
)`

const CreateActiveUploadIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_file_uploads_active
ON file_uploads(category) WHERE is_active = 1`

// CreateFileVersionsTableSQL defines the archive history. Version
// numbers increase per category; the row exists only for archived
// uploads.
const CreateFileVersionsTableSQL = `
CREATE TABLE IF NOT EXISTS file_versions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    upload_id TEXT NOT NULL REFERENCES file_uploads(id),
    version_number INTEGER NOT NULL,
    archived_at TEXT NOT NULL
)`

const CreateVersionsUploadIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_file_versions_upload
ON file_versions(upload_id)`

// CreateQualityIssuesTableSQL records every issue found during an
// upload, resolved or not.
const CreateQualityIssuesTableSQL = `
CREATE TABLE IF NOT EXISTS data_quality_issues (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    upload_id TEXT NOT NULL REFERENCES file_uploads(id),
    issue_type TEXT NOT NULL,
    severity TEXT NOT NULL,
    column_name TEXT,
    row_count INTEGER NOT NULL,
    auto_resolved INTEGER NOT NULL,
    message TEXT NOT NULL,
    created_at TEXT NOT NULL
)`

const CreateIssuesUploadIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_quality_issues_upload
ON data_quality_issues(upload_id)`

// AllSchemaSQL returns all SQL statements needed to initialize the
// analytics database, including one data table per category.
func AllSchemaSQL() []string {
	stmts := []string{
		CreateFileUploadsTableSQL,
		CreateActiveUploadIndexSQL,
		CreateFileVersionsTableSQL,
		CreateVersionsUploadIndexSQL,
		CreateQualityIssuesTableSQL,
		CreateIssuesUploadIndexSQL,
	}
	for _, cat := range types.Categories() {
		stmts = append(stmts, schema.MustGet(cat).CreateTableSQL())
	}
	return stmts
}
