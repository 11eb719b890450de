// Package iocache persists coverage runs so trends can be inspected later.
package iocache

import (
	"sync"

	"github.com/huangsam/doxycov/internal/contract"
)

// HistoryStoreManager owns the process-wide HistoryStore.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

var _ contract.HistoryManager = &HistoryStoreManager{} // Compile-time check

// GetHistoryStore returns the configured HistoryStore, or nil when history is disabled.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
