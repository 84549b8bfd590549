package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	reset := func() {
		Manager = &StoreManager{}
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
	}
	reset()
	t.Cleanup(reset)
}

func TestInitStores(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		opts := StoreOptions{
			IndexBackend:   schema.FileBackend,
			IndexConnStr:   filepath.Join(dir, "index.json"),
			ResultBackend:  schema.SQLiteBackend,
			ResultConnStr:  filepath.Join(dir, "results.db"),
			MetricsBackend: schema.NoneBackend,
		}
		require.NoError(t, InitStores(opts))
		assert.NotNil(t, Manager.GetIndexStore())
		assert.NotNil(t, Manager.GetResultStore())
		assert.NotNil(t, Manager.GetMetricsCache())
		CloseStores()

		_, err := os.Stat(opts.ResultConnStr)
		assert.NoError(t, err, "result database file is created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals(t)
		opts := StoreOptions{ResultBackend: schema.SQLiteBackend, ResultConnStr: ":memory:"}
		assert.NoError(t, InitStores(opts))
		assert.NoError(t, InitStores(opts))
		CloseStores()
		CloseStores()
	})

	t.Run("empty backends leave stores unset", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(StoreOptions{}))
		assert.Nil(t, Manager.GetIndexStore())
		assert.Nil(t, Manager.GetResultStore())
		assert.Nil(t, Manager.GetMetricsCache())
	})

	t.Run("connection failure", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores(StoreOptions{
			IndexBackend:  schema.FileBackend,
			IndexConnStr:  filepath.Join(t.TempDir(), "index.json"),
			ResultBackend: schema.MySQLBackend,
			ResultConnStr: "invalid://connection",
		})
		assert.ErrorContains(t, err, "failed to initialize result store")
		assert.Nil(t, Manager.GetIndexStore())
	})
}

func TestStoreManagerConcurrency(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, InitStores(StoreOptions{MetricsBackend: schema.SQLiteBackend, MetricsConnStr: ":memory:"}))
	defer CloseStores()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			cache := Manager.GetMetricsCache()
			assert.NoError(t, cache.Set("concurrent_key", []byte("value"), 1, int64(1000+id)))
		}(i)
	}
	wg.Wait()
}

func TestStoreOptionsFromConfig(t *testing.T) {
	cfg := &contract.Config{
		IndexBackend:    schema.FileBackend,
		IndexFile:       "/tmp/index.json",
		IndexDBConnect:  "ignored",
		ResultBackend:   schema.PostgreSQLBackend,
		ResultDBConnect: "host=localhost",
		CacheBackend:    schema.NoneBackend,
	}
	opts := StoreOptionsFromConfig(cfg)
	assert.Equal(t, "/tmp/index.json", opts.IndexConnStr)
	assert.Equal(t, "host=localhost", opts.ResultConnStr)
	assert.Equal(t, schema.NoneBackend, opts.MetricsBackend)

	cfg.IndexBackend = schema.SQLiteBackend
	cfg.IndexDBConnect = "/tmp/index.db"
	assert.Equal(t, "/tmp/index.db", StoreOptionsFromConfig(cfg).IndexConnStr)
}

func TestClearStores(t *testing.T) {
	dir := t.TempDir()

	indexPath := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(indexPath, []byte("{}"), 0o644))
	require.NoError(t, ClearIndex(schema.FileBackend, indexPath))
	_, err := os.Stat(indexPath)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, ClearIndex(schema.FileBackend, indexPath), "missing file is fine")

	resultsPath := filepath.Join(dir, "results.db")
	store, err := NewResultStore(schema.SQLiteBackend, resultsPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, ClearResults(schema.SQLiteBackend, resultsPath))
	_, err = os.Stat(resultsPath)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearCache(schema.SQLiteBackend, ":memory:"))
	assert.NoError(t, ClearCache(schema.NoneBackend, ""))
	assert.NoError(t, ClearResults(schema.NoneBackend, ""))
	assert.NoError(t, ClearIndex(schema.NoneBackend, ""))

	assert.ErrorContains(t, ClearCache("oracle", ""), "unsupported cache backend")
	assert.ErrorContains(t, ClearResults("oracle", ""), "unsupported result backend")
	assert.ErrorContains(t, ClearIndex("oracle", ""), "unsupported index backend")
}

func TestExecuteExport(t *testing.T) {
	dir := t.TempDir()
	index, err := NewFileIndexStore(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	require.NoError(t, index.Save(sampleIndex("web", "api")))

	results, err := NewResultStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = results.Close() }()
	runID, err := results.BeginRun(time.Now(), "/repos/web", "web")
	require.NoError(t, err)
	require.NoError(t, results.RecordFinding(runID, schema.FindingRecord{Kind: schema.FindingDebt, Category: "todo", Severity: "low", Description: "TODO"}))
	require.NoError(t, results.EndRun(runID, time.Now(), schema.RunSummary{FilesAnalyzed: 3}))

	mgr := &StoreManager{index: index, results: results}
	out := filepath.Join(dir, "export")
	var buf bytes.Buffer
	require.NoError(t, ExecuteExport(mgr, out, &buf))

	for _, suffix := range []string{".analysis_runs.parquet", ".findings.parquet", ".repositories.parquet"} {
		_, err := os.Stat(out + suffix)
		assert.NoError(t, err, suffix)
	}
	assert.Contains(t, buf.String(), "Exported 1 analysis runs")
	assert.Contains(t, buf.String(), "Exported 2 repositories")
}

func TestExecuteExportErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorContains(t, ExecuteExport(&StoreManager{}, "", &buf), "--output-file is required")

	mgr := &MockStoreManager{}
	mgr.On("GetResultStore").Return(nil)
	index := &MockIndexStore{}
	index.On("Load").Return(nil, nil)
	mgr.On("GetIndexStore").Return(index)

	err := ExecuteExport(mgr, filepath.Join(t.TempDir(), "out"), &buf)
	assert.ErrorContains(t, err, "no analysis or index data found")
	mgr.AssertExpectations(t)
	index.AssertExpectations(t)
}

func TestPrintStatus(t *testing.T) {
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	var buf bytes.Buffer
	PrintIndexStatus(&buf, schema.StoreStatus{Backend: "file", Connected: true, Location: "/tmp/i.json", Documents: 1, LastWriteTime: now, TableSizeBytes: 42})
	assert.Contains(t, buf.String(), "Index Backend: file")
	assert.Contains(t, buf.String(), "Last Write: 2026-02-03 04:05:06")
	assert.Contains(t, buf.String(), "Size: 42 bytes")

	buf.Reset()
	PrintResultStatus(&buf, schema.ResultStatus{
		Backend: "sqlite", Connected: true, TotalRuns: 2, LastRunID: 2, LastRunTime: now, OldestRunTime: now, TotalFindings: 5,
		TableSizes: map[string]int64{findingsTable: 5, analysisRunsTable: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Findings: 5")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(analysisRunsTable)), bytes.Index(buf.Bytes(), []byte(findingsTable)), "tables are listed in name order")

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())
}
