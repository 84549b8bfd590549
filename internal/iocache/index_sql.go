package iocache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

const (
	indexTable = "reposcope_index"
	indexKey   = "default"
)

// SQLIndexStore keeps the repository index as a single JSON row.
type SQLIndexStore struct {
	mu        sync.Mutex
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.IndexStore = &SQLIndexStore{} // Compile-time check

// NewSQLIndexStore opens the index table on the given backend. NoneBackend
// yields a store that never persists anything.
func NewSQLIndexStore(backend schema.DatabaseBackend, connStr string) (*SQLIndexStore, error) {
	if backend == schema.NoneBackend {
		return &SQLIndexStore{tableName: indexTable, backend: backend}, nil
	}
	db, err := openDB(backend, connStr, contract.GetIndexDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize index store: %w", err)
	}
	if _, err := db.Exec(getCreateIndexTableQuery(indexTable, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", indexTable, err)
	}
	return &SQLIndexStore{
		db:        db,
		tableName: indexTable,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

func getCreateIndexTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				doc_key VARCHAR(64) PRIMARY KEY,
				document LONGTEXT NOT NULL,
				updated_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				doc_key TEXT PRIMARY KEY,
				document TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				doc_key TEXT PRIMARY KEY,
				document TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// Load reads the stored document, or (nil, nil) when none was saved.
func (s *SQLIndexStore) Load() (*schema.RepositoryIndex, error) {
	if s.db == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`SELECT document FROM %s WHERE doc_key = %s`,
		quoteTableName(s.tableName, s.backend), placeholders(s.backend, 1)[0])
	var doc string
	err := s.db.QueryRow(query, indexKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	var idx schema.RepositoryIndex
	if err := json.Unmarshal([]byte(doc), &idx); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}
	return &idx, nil
}

// Save upserts the whole document.
func (s *SQLIndexStore) Save(index *schema.RepositoryIndex) error {
	if s.db == nil {
		return nil
	}
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(s.getUpsertQuery(), indexKey, string(data), formatTime(time.Now(), s.backend)); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

func (s *SQLIndexStore) getUpsertQuery() string {
	quotedTableName := quoteTableName(s.tableName, s.backend)
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (doc_key, document, updated_at) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE document = new.document, updated_at = new.updated_at`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (doc_key, document, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (doc_key) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (doc_key, document, updated_at) VALUES (?, ?, ?)`, quotedTableName)
	}
}

// GetStatus reports whether a document exists and when it was last written.
func (s *SQLIndexStore) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
		Location:  s.location(),
	}
	if s.db == nil {
		return status, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	quotedTableName := quoteTableName(s.tableName, s.backend)
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)).Scan(&status.Documents); err != nil {
		return status, fmt.Errorf("failed to count documents: %w", err)
	}
	if status.Documents == 0 {
		return status, nil
	}

	st := scanTime{backend: s.backend}
	if err := s.db.QueryRow(fmt.Sprintf("SELECT MAX(updated_at) FROM %s", quotedTableName)).Scan(st.dest()); err != nil {
		return status, fmt.Errorf("failed to get last write time: %w", err)
	}
	last, err := st.value()
	if err != nil {
		return status, err
	}
	if last != nil {
		status.LastWriteTime = *last
	}
	status.TableSizeBytes = tableSizeBytes(s.db, s.backend, s.connStr, s.tableName, int64(status.Documents))
	return status, nil
}

func (s *SQLIndexStore) location() string {
	if s.backend == schema.SQLiteBackend && s.connStr == "" {
		return contract.GetIndexDBFilePath()
	}
	if s.backend == schema.SQLiteBackend {
		return s.connStr
	}
	return s.tableName
}

// Close closes the underlying DB connection.
func (s *SQLIndexStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// clear deletes the stored document.
func (s *SQLIndexStore) clear() error {
	if s.db == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", quoteTableName(s.tableName, s.backend)))
	return err
}
