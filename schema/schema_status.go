package schema

import "time"

// StoreStatus represents the status of the index document store.
type StoreStatus struct {
	Backend        string    `json:"backend"`
	Connected      bool      `json:"connected"`
	Location       string    `json:"location,omitempty"`
	Documents      int       `json:"documents"`
	LastWriteTime  time.Time `json:"last_write_time"`
	TableSizeBytes int64     `json:"table_size_bytes"`
}

// ResultStatus represents the status of the analysis result store.
type ResultStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalFindings int              `json:"total_findings"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// CacheStatus represents the status of the file-metrics cache.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}
