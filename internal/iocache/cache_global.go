package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// StoreOptions selects a backend and connection per store. An empty backend
// leaves that store unopened.
type StoreOptions struct {
	IndexBackend   schema.DatabaseBackend
	IndexConnStr   string // Database connection, or the JSON path for the file backend
	ResultBackend  schema.DatabaseBackend
	ResultConnStr  string
	MetricsBackend schema.DatabaseBackend
	MetricsConnStr string
}

// StoreOptionsFromConfig maps the CLI configuration onto StoreOptions.
func StoreOptionsFromConfig(cfg *contract.Config) StoreOptions {
	opts := StoreOptions{
		IndexBackend:   cfg.IndexBackend,
		IndexConnStr:   cfg.IndexDBConnect,
		ResultBackend:  cfg.ResultBackend,
		ResultConnStr:  cfg.ResultDBConnect,
		MetricsBackend: cfg.CacheBackend,
		MetricsConnStr: cfg.CacheDBConnect,
	}
	if opts.IndexBackend == schema.FileBackend {
		opts.IndexConnStr = cfg.IndexFile
	}
	return opts
}

// OpenIndexStore opens an IndexStore for the backend.
func OpenIndexStore(backend schema.DatabaseBackend, connStr string) (contract.IndexStore, error) {
	if backend == schema.FileBackend {
		store, err := NewFileIndexStore(connStr)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := NewSQLIndexStore(backend, connStr)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// InitStores initializes the global store manager.
func InitStores(opts StoreOptions) error {
	var initErr error

	initOnce.Do(func() {
		stores, err := openStores(opts)
		if err != nil {
			initErr = err
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.index = stores.index
		Manager.results = stores.results
		Manager.metrics = stores.metrics
	})

	return initErr
}

// openStores opens each configured store and closes the earlier ones when a
// later one fails.
func openStores(opts StoreOptions) (*StoreManager, error) {
	stores := &StoreManager{}
	if opts.IndexBackend != "" {
		index, err := OpenIndexStore(opts.IndexBackend, opts.IndexConnStr)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize index store: %w", err)
		}
		stores.index = index
	}
	if opts.ResultBackend != "" {
		results, err := NewResultStore(opts.ResultBackend, opts.ResultConnStr)
		if err != nil {
			stores.close()
			return nil, fmt.Errorf("failed to initialize result store: %w", err)
		}
		stores.results = results
	}
	if opts.MetricsBackend != "" {
		metrics, err := NewMetricsCache(metricsTable, opts.MetricsBackend, opts.MetricsConnStr)
		if err != nil {
			stores.close()
			return nil, fmt.Errorf("failed to initialize metrics cache: %w", err)
		}
		stores.metrics = metrics
	}
	return stores, nil
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(Manager.close)
}

// ClearIndex removes the stored index document.
// For the file backend and SQLite, it deletes the file.
// For MySQL/PostgreSQL, it drops the index table.
func ClearIndex(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.FileBackend:
		if connStr == "" {
			connStr = contract.GetIndexFilePath()
		}
		return clearIndexFile(connStr)
	case schema.SQLiteBackend:
		return removeDBFile(connStr, contract.GetIndexDBFilePath())
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, indexTable)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported index backend for clearing: %s", backend)
	}
}

// ClearResults clears the analysis data for the specified backend.
// For SQLite, it deletes the database file.
// For MySQL/PostgreSQL, it drops the analysis tables.
func ClearResults(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeDBFile(connStr, contract.GetResultDBFilePath())
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, findingsTable, analysisRunsTable, "schema_migrations")
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported result backend for clearing: %s", backend)
	}
}

// ClearCache clears the metrics cache for the specified backend.
func ClearCache(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeDBFile(connStr, contract.GetCacheDBFilePath())
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, metricsTable)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

func removeDBFile(connStr, defaultPath string) error {
	dbFilePath := connStr
	if dbFilePath == "" {
		dbFilePath = defaultPath
	}
	if dbFilePath == ":memory:" {
		return nil
	}
	// Remove the file; ignore if it doesn't exist
	if err := os.Remove(dbFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// dropSQLTables connects to the SQL database and drops the tables if they exist.
func dropSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

// clearSQLTable deletes every row of a table on an open connection.
func clearSQLTable(db *sql.DB, backend schema.DatabaseBackend, table string) error {
	if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", quoteTableName(table, backend))); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", table, err)
	}
	return nil
}
