package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// metricsTable is the name of the table for file-metrics caching.
const metricsTable = "reposcope_metrics_cache"

// MetricsCacheImpl stores analyzer file metrics keyed by content hash.
type MetricsCacheImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.MetricsCache = &MetricsCacheImpl{} // Compile-time check

// NewMetricsCache initializes and returns a new metrics cache based on the backend type.
func NewMetricsCache(tableName string, backend schema.DatabaseBackend, connStr string) (*MetricsCacheImpl, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	if backend == schema.NoneBackend {
		// No-op store for disabled caching
		return &MetricsCacheImpl{tableName: tableName, backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics cache: %w", err)
	}
	if _, err := db.Exec(getCreateCacheTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return &MetricsCacheImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// getCreateCacheTableQuery returns the CREATE TABLE query for the given backend.
func getCreateCacheTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key VARCHAR(255) PRIMARY KEY,
				cache_value BLOB NOT NULL,
				cache_version INT NOT NULL,
				cache_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BYTEA NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BLOB NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Get retrieves a value by key. A missing key yields sql.ErrNoRows.
func (mc *MetricsCacheImpl) Get(key string) ([]byte, int, int64, error) {
	if mc.db == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	var value []byte
	var version int
	var ts int64
	query := fmt.Sprintf(`SELECT cache_value, cache_version, cache_timestamp FROM %s WHERE cache_key = %s`,
		quoteTableName(mc.tableName, mc.backend), placeholders(mc.backend, 1)[0])
	if err := mc.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces a key/value pair.
func (mc *MetricsCacheImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if mc.db == nil {
		return nil
	}
	_, err := mc.db.Exec(mc.getUpsertQuery(), key, value, version, timestamp)
	return err
}

// getUpsertQuery returns the UPSERT query for the backend.
func (mc *MetricsCacheImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(mc.tableName, mc.backend)
	switch mc.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_version = new.cache_version, cache_timestamp = new.cache_timestamp`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?)`, quotedTableName)
	}
}

// Close closes the underlying DB connection.
func (mc *MetricsCacheImpl) Close() error {
	if mc.db != nil {
		return mc.db.Close()
	}
	return nil
}

// GetStatus returns status information about the metrics cache.
func (mc *MetricsCacheImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(mc.backend),
		Connected: mc.db != nil,
	}
	if mc.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(mc.tableName, mc.backend)
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := mc.db.QueryRow(countQuery).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	rangeQuery := fmt.Sprintf("SELECT MAX(cache_timestamp), MIN(cache_timestamp) FROM %s", quotedTableName)
	if err := mc.db.QueryRow(rangeQuery).Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)
	status.TableSizeBytes = tableSizeBytes(mc.db, mc.backend, mc.connStr, mc.tableName, int64(status.TotalEntries))
	return status, nil
}

// tableSizeBytes estimates the on-disk size of a table. Backends that cannot
// report a size fall back to a rough per-row estimate.
func tableSizeBytes(db *sql.DB, backend schema.DatabaseBackend, connStr, tableName string, rows int64) int64 {
	estimate := rows * 1000
	var size int64
	switch backend {
	case schema.SQLiteBackend:
		if err := db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size); err != nil {
			return 0
		}
		return size
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		query := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := db.QueryRow(query, cfg.DBName, tableName).Scan(&size); err != nil {
			return estimate
		}
		return size
	case schema.PostgreSQLBackend:
		if err := db.QueryRow("SELECT pg_total_relation_size($1)", tableName).Scan(&size); err != nil {
			return estimate
		}
		return size
	default:
		return estimate
	}
}
