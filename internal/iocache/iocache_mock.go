package iocache

import (
	"time"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetIndexStore implements the StoreManager interface.
func (m *MockStoreManager) GetIndexStore() contract.IndexStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.IndexStore)
	return store
}

// GetResultStore implements the StoreManager interface.
func (m *MockStoreManager) GetResultStore() contract.ResultStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ResultStore)
	return store
}

// GetMetricsCache implements the StoreManager interface.
func (m *MockStoreManager) GetMetricsCache() contract.MetricsCache {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.MetricsCache)
	return store
}

// MockIndexStore is a mock implementation of IndexStore for testing.
type MockIndexStore struct {
	mock.Mock
}

var _ contract.IndexStore = &MockIndexStore{} // Compile-time check

// Load implements the IndexStore interface.
func (m *MockIndexStore) Load() (*schema.RepositoryIndex, error) {
	args := m.Called()
	index, _ := args.Get(0).(*schema.RepositoryIndex)
	return index, args.Error(1)
}

// Save implements the IndexStore interface.
func (m *MockIndexStore) Save(index *schema.RepositoryIndex) error {
	return m.Called(index).Error(0)
}

// GetStatus implements the IndexStore interface.
func (m *MockIndexStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the IndexStore interface.
func (m *MockIndexStore) Close() error {
	return m.Called().Error(0)
}

// MockResultStore is a mock implementation of ResultStore for testing.
type MockResultStore struct {
	mock.Mock
}

var _ contract.ResultStore = &MockResultStore{} // Compile-time check

// BeginRun implements the ResultStore interface.
func (m *MockResultStore) BeginRun(startTime time.Time, repoPath, repoName string) (int64, error) {
	args := m.Called(startTime, repoPath, repoName)
	return args.Get(0).(int64), args.Error(1)
}

// RecordFinding implements the ResultStore interface.
func (m *MockResultStore) RecordFinding(runID int64, finding schema.FindingRecord) error {
	return m.Called(runID, finding).Error(0)
}

// EndRun implements the ResultStore interface.
func (m *MockResultStore) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	return m.Called(runID, endTime, summary).Error(0)
}

// GetStatus implements the ResultStore interface.
func (m *MockResultStore) GetStatus() (schema.ResultStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.ResultStatus), args.Error(1)
}

// GetAllRuns implements the ResultStore interface.
func (m *MockResultStore) GetAllRuns() ([]schema.AnalysisRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.AnalysisRunRecord)
	return runs, args.Error(1)
}

// GetAllFindings implements the ResultStore interface.
func (m *MockResultStore) GetAllFindings() ([]schema.FindingRecord, error) {
	args := m.Called()
	findings, _ := args.Get(0).([]schema.FindingRecord)
	return findings, args.Error(1)
}

// Close implements the ResultStore interface.
func (m *MockResultStore) Close() error {
	return m.Called().Error(0)
}

// MockMetricsCache is a mock implementation of MetricsCache for testing.
type MockMetricsCache struct {
	mock.Mock
}

var _ contract.MetricsCache = &MockMetricsCache{} // Compile-time check

// Get implements the MetricsCache interface.
func (m *MockMetricsCache) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the MetricsCache interface.
func (m *MockMetricsCache) Set(key string, data []byte, version int, ts int64) error {
	return m.Called(key, data, version, ts).Error(0)
}

// Close implements the MetricsCache interface.
func (m *MockMetricsCache) Close() error {
	return m.Called().Error(0)
}
