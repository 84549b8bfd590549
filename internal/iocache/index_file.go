package iocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// FileIndexStore keeps the repository index as one JSON document on disk.
type FileIndexStore struct {
	mu   sync.Mutex
	path string
}

var _ contract.IndexStore = &FileIndexStore{} // Compile-time check

// NewFileIndexStore returns a store writing to path. The parent directory is
// created when missing.
func NewFileIndexStore(path string) (*FileIndexStore, error) {
	if path == "" {
		path = contract.GetIndexFilePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	return &FileIndexStore{path: path}, nil
}

// Load reads the document. A missing or empty file yields (nil, nil).
func (s *FileIndexStore) Load() (*schema.RepositoryIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var idx schema.RepositoryIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}
	return &idx, nil
}

// Save writes the document to a temp file in the same directory and renames
// it over the old one, so readers never see a partial write.
func (s *FileIndexStore) Save(index *schema.RepositoryIndex) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp index: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename index: %w", err)
	}
	return nil
}

// GetStatus reports the location and size of the document.
func (s *FileIndexStore) GetStatus() (schema.StoreStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := schema.StoreStatus{
		Backend:   string(schema.FileBackend),
		Connected: true,
		Location:  s.path,
	}
	info, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return status, nil
	}
	if err != nil {
		return status, fmt.Errorf("failed to stat index: %w", err)
	}
	status.Documents = 1
	status.LastWriteTime = info.ModTime()
	status.TableSizeBytes = info.Size()
	return status, nil
}

// Close is a no-op for the file store.
func (s *FileIndexStore) Close() error { return nil }

// Path returns the document location.
func (s *FileIndexStore) Path() string { return s.path }

// clearIndexFile removes the document, ignoring a missing file.
func clearIndexFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove index file %s: %w", path, err)
	}
	return nil
}
