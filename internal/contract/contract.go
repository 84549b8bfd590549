// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/reposcope/schema"
)

// FileReader reads the content of one repository file.
// Implementations return a *schema.FileReadError so callers can tell missing
// files from permission problems.
type FileReader interface {
	ReadFile(ctx context.Context, path string) (string, error)
}

// IndexStore persists the whole repository index as one document.
type IndexStore interface {
	// Load returns the stored index. A missing document is not an error and
	// yields (nil, nil).
	Load() (*schema.RepositoryIndex, error)

	// Save replaces the stored index atomically.
	Save(index *schema.RepositoryIndex) error

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

// ResultStore tracks analyzer runs and their findings.
type ResultStore interface {
	// BeginRun creates a new analysis run and returns its unique ID
	BeginRun(startTime time.Time, repoPath, repoName string) (int64, error)

	// RecordFinding stores one finding of a run
	RecordFinding(runID int64, finding schema.FindingRecord) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// GetStatus returns status information about the result store
	GetStatus() (schema.ResultStatus, error)

	// GetAllRuns returns every recorded run in run order
	GetAllRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllFindings returns every recorded finding
	GetAllFindings() ([]schema.FindingRecord, error)

	// Close closes the underlying connection
	Close() error
}

// MetricsCache stores derived per-file data keyed by content hash.
// This allows mocking the store for testing.
type MetricsCache interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Close() error
}

// StoreManager hands out the configured stores.
type StoreManager interface {
	GetIndexStore() IndexStore
	GetResultStore() ResultStore
	GetMetricsCache() MetricsCache
}

// CommitInfo is the part of a commit that trend analysis needs.
type CommitInfo struct {
	Hash   string
	Author string
	When   time.Time
}

// HistoryClient reads repository history.
// This allows the trend logic to be tested without a real repository.
type HistoryClient interface {
	// CommitHistory returns the commits reachable from HEAD made at or after since.
	CommitHistory(ctx context.Context, repoPath string, since time.Time) ([]CommitInfo, error)
}
