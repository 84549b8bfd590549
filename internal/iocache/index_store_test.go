package iocache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIndex(names ...string) *schema.RepositoryIndex {
	idx := &schema.RepositoryIndex{
		Relationships: []schema.RepositoryRelationship{},
		Tags:          []schema.Tag{{ID: "t1", Name: "frontend"}},
		LastUpdated:   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, name := range names {
		idx.Repositories = append(idx.Repositories, schema.IndexedRepository{
			ID:         "id-" + name,
			Path:       "/repos/" + name,
			Name:       name,
			Languages:  []string{"Go"},
			Frameworks: []string{},
			Tags:       []string{"frontend"},
		})
	}
	return idx
}

func TestFileIndexStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.json")
	store, err := NewFileIndexStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	t.Run("missing file loads as nil", func(t *testing.T) {
		idx, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, idx)

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "file", status.Backend)
		assert.Equal(t, 0, status.Documents)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, store.Save(sampleIndex("web", "api")))
		idx, err := store.Load()
		require.NoError(t, err)
		require.NotNil(t, idx)
		require.Len(t, idx.Repositories, 2)
		assert.Equal(t, "api", idx.Repositories[1].Name)
		assert.Equal(t, "frontend", idx.Tags[0].Name)
		assert.True(t, idx.LastUpdated.Equal(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)))

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 1, status.Documents)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})

	t.Run("no temp files left", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "index.json", entries[0].Name())
	})

	t.Run("corrupt document", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
		_, err := store.Load()
		assert.ErrorContains(t, err, "failed to parse index")
	})

	t.Run("empty document", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		idx, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, idx)
	})

	assert.NoError(t, store.Close())
}

func TestFileIndexStoreConcurrentSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	store, err := NewFileIndexStore(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, store.Save(sampleIndex(fmt.Sprintf("repo%d", n))))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var idx schema.RepositoryIndex
	require.NoError(t, json.Unmarshal(data, &idx), "last write wins and the file stays parseable")
	assert.Len(t, idx.Repositories, 1)
}

func TestSQLIndexStore(t *testing.T) {
	store, err := NewSQLIndexStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	idx, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, idx)

	require.NoError(t, store.Save(sampleIndex("web")))
	require.NoError(t, store.Save(sampleIndex("web", "api", "lib")))

	idx, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Len(t, idx.Repositories, 3)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.Documents, "saves replace the single row")
	assert.False(t, status.LastWriteTime.IsZero())
	assert.Equal(t, ":memory:", status.Location)

	require.NoError(t, store.clear())
	idx, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, idx)
}

func TestSQLIndexStoreNoneBackend(t *testing.T) {
	store, err := NewSQLIndexStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NoError(t, store.Save(sampleIndex("web")))
	idx, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, idx)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestGetCreateIndexTableQuery(t *testing.T) {
	assert.Contains(t, getCreateIndexTableQuery(indexTable, schema.MySQLBackend), "LONGTEXT")
	assert.Contains(t, getCreateIndexTableQuery(indexTable, schema.PostgreSQLBackend), "TIMESTAMPTZ")
	assert.Contains(t, getCreateIndexTableQuery(indexTable, schema.SQLiteBackend), `"reposcope_index"`)
}

func TestOpenIndexStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	store, err := OpenIndexStore(schema.FileBackend, path)
	require.NoError(t, err)
	assert.IsType(t, &FileIndexStore{}, store)

	store, err = OpenIndexStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	assert.IsType(t, &SQLIndexStore{}, store)
	assert.NoError(t, store.Close())

	store, err = OpenIndexStore("oracle", "")
	assert.Error(t, err)
	assert.Nil(t, store)
}
