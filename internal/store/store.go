// Package store persists upload records, version history, quality
// issues, and the analytical tables in an embedded SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// Store manages the analytics database. Writes go through a single
// connection guarded by per-category locks so replace and append for
// one category are serialized while different categories proceed in
// parallel. Reads use a separate read-only pool.
type Store struct {
	db     *sql.DB // Write connection (single writer)
	readDB *sql.DB // Read connection pool (concurrent readers)
	dbPath string

	// catMu serializes upload transactions per category.
	catMu map[types.Category]*sync.Mutex

	// mu guards schema changes and the write connection for
	// operations outside a category transaction.
	mu sync.Mutex
}

// New opens (or creates) the analytics database at dbPath.
func New(dbPath string) (*Store, error) {
	// Write connection: single writer with WAL mode
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // Single writer
	db.SetMaxIdleConns(1)

	// Read connection pool: concurrent readers
	readDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(4)
	readDB.SetMaxIdleConns(4)
	readDB.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{
		db:     db,
		readDB: readDB,
		dbPath: dbPath,
		catMu:  make(map[types.Category]*sync.Mutex, len(types.Categories())),
	}
	for _, cat := range types.Categories() {
		s.catMu[cat] = &sync.Mutex{}
	}

	if err := s.initSchema(); err != nil {
		readDB.Close()
		db.Close()
		return nil, fmt.Errorf("store: failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates all required tables and indexes.
func (s *Store) initSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range AllSchemaSQL() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// lock returns the mutex serializing writes for a category.
func (s *Store) lock(category types.Category) *sync.Mutex {
	if mu, ok := s.catMu[category]; ok {
		return mu
	}
	// Unknown categories share the store-wide mutex; callers validate
	// categories before reaching the store.
	return &s.mu
}

// Close closes both database connections.
func (s *Store) Close() error {
	var firstErr error
	if err := s.readDB.Close(); err != nil {
		firstErr = err
	}
	if err := s.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
