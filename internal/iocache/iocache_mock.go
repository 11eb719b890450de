package iocache

import (
	"time"

	"github.com/huangsam/doxycov/internal/contract"
	"github.com/huangsam/doxycov/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(startTime time.Time, runUUID string, inputDir string, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, runUUID, inputDir, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordFileCoverage implements the HistoryStore interface.
func (m *MockHistoryStore) RecordFileCoverage(runID int64, coverage schema.FileCoverage) error {
	args := m.Called(runID, coverage)
	return args.Error(0)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	args := m.Called(runID, endTime, summary)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.HistoryRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.HistoryRunRecord)
	return runs, args.Error(1)
}

// GetAllFileCoverage implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllFileCoverage() ([]schema.FileCoverageRecord, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.FileCoverageRecord)
	return rows, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
