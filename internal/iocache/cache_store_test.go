package iocache

import (
	"database/sql"
	"testing"

	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// database/sql keeps a connection opener goroutine per open pool
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

// TestValidateTableName tests the validateTableName function with various inputs.
func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{name: "valid simple name", tableName: "test_table"},
		{name: "valid name with numbers", tableName: "test_table_123"},
		{name: "valid name starting with underscore", tableName: "_test_table"},
		{name: "valid mixed case", tableName: "TestTable_123"},
		{name: "empty name", tableName: "", wantErr: true},
		{name: "starts with number", tableName: "123_table", wantErr: true},
		{name: "contains dash", tableName: "test-table", wantErr: true},
		{name: "contains space", tableName: "test table", wantErr: true},
		{name: "sql injection attempt", tableName: "test'; DROP TABLE users; --", wantErr: true},
		{name: "contains dot", tableName: "test.table", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err, "validateTableName should error for %q", tt.tableName)
			} else {
				assert.NoError(t, err, "validateTableName should not error for %q", tt.tableName)
			}
		})
	}
}

// TestQuoteTableName tests the quoteTableName function for all backends.
func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, `"test_table"`},
		{schema.MySQLBackend, "`test_table`"},
		{schema.PostgreSQLBackend, `"test_table"`},
		{schema.NoneBackend, `"test_table"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.want, quoteTableName("test_table", tt.backend))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholderList(schema.SQLiteBackend, 3))
	assert.Equal(t, "?, ?", placeholderList(schema.MySQLBackend, 2))
	assert.Equal(t, "$1, $2, $3", placeholderList(schema.PostgreSQLBackend, 3))
	assert.Empty(t, placeholders(schema.SQLiteBackend, 0))
}

func TestDriverFor(t *testing.T) {
	tests := map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	}
	for backend, want := range tests {
		got, err := driverFor(backend)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := driverFor(schema.FileBackend)
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains string
	}{
		{schema.SQLiteBackend, "INSERT OR REPLACE"},
		{schema.MySQLBackend, "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "ON CONFLICT (cache_key)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			mc := &MetricsCacheImpl{tableName: metricsTable, backend: tt.backend}
			assert.Contains(t, mc.getUpsertQuery(), tt.contains)
		})
	}
}

func TestGetCreateCacheTableQuery(t *testing.T) {
	assert.Contains(t, getCreateCacheTableQuery(metricsTable, schema.MySQLBackend), "VARCHAR(255) PRIMARY KEY")
	assert.Contains(t, getCreateCacheTableQuery(metricsTable, schema.PostgreSQLBackend), "BYTEA")
	assert.Contains(t, getCreateCacheTableQuery(metricsTable, schema.SQLiteBackend), "cache_value BLOB")
}

// TestMetricsCacheSQLite tests the full lifecycle of the SQLite metrics cache.
func TestMetricsCacheSQLite(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		store, err := NewMetricsCache("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("key", []byte("value"), 1, 1234567890))
		value, version, ts, err := store.Get("key")
		require.NoError(t, err)
		assert.Equal(t, "value", string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1234567890), ts)
	})

	t.Run("upsert", func(t *testing.T) {
		store, err := NewMetricsCache("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("key", []byte("initial"), 1, 1000))
		require.NoError(t, store.Set("key", []byte("updated"), 2, 2000))
		value, version, ts, err := store.Get("key")
		require.NoError(t, err)
		assert.Equal(t, "updated", string(value))
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(2000), ts)
	})

	t.Run("missing key", func(t *testing.T) {
		store, err := NewMetricsCache("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		_, _, _, err = store.Get("missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("status", func(t *testing.T) {
		store, err := NewMetricsCache("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Equal(t, 0, status.TotalEntries)

		require.NoError(t, store.Set("a", []byte("1"), 1, 1000))
		require.NoError(t, store.Set("b", []byte("2"), 1, 3000))
		status, err = store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, int64(3000), status.LastEntryTime.Unix())
		assert.Equal(t, int64(1000), status.OldestEntryTime.Unix())
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})
}

func TestMetricsCacheNoneBackend(t *testing.T) {
	store, err := NewMetricsCache("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("key", []byte("value"), 1, 1))
	_, _, _, err = store.Get("key")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewMetricsCacheErrors(t *testing.T) {
	_, err := NewMetricsCache("bad-name", schema.SQLiteBackend, ":memory:")
	assert.ErrorContains(t, err, "invalid table name")

	_, err = NewMetricsCache(metricsTable, "oracle", "")
	assert.ErrorContains(t, err, "unsupported backend")
}
