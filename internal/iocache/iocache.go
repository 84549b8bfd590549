// Package iocache persists the repository index, analysis runs and the
// file-metrics cache.
package iocache

import (
	"sync"

	"github.com/huangsam/reposcope/internal/contract"
)

// StoreManager holds the configured stores.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	index        contract.IndexStore
	results      contract.ResultStore
	metrics      contract.MetricsCache
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetIndexStore returns the IndexStore.
func (mgr *StoreManager) GetIndexStore() contract.IndexStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.index
}

// GetResultStore returns the ResultStore.
func (mgr *StoreManager) GetResultStore() contract.ResultStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}

// GetMetricsCache returns the MetricsCache.
func (mgr *StoreManager) GetMetricsCache() contract.MetricsCache {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.metrics
}

// close closes every store that was opened.
func (mgr *StoreManager) close() {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.index != nil {
		_ = mgr.index.Close()
	}
	if mgr.results != nil {
		_ = mgr.results.Close()
	}
	if mgr.metrics != nil {
		_ = mgr.metrics.Close()
	}
}
