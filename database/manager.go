package database

import (
	"sync"

	"github.com/baotran/ragchat-be/types"
)

// IndexManager hands out the current index snapshot to readers and swaps in
// a freshly built one after ingestion. Readers holding the old snapshot keep
// using it; they never observe a half-rebuilt index.
type IndexManager struct {
	mu      sync.RWMutex
	current VectorIndex
}

func NewIndexManager(initial VectorIndex) *IndexManager {
	return &IndexManager{current: initial}
}

// Current returns the serving index, or ErrIndexNotLoaded when no index has
// been built or loaded yet.
func (m *IndexManager) Current() (VectorIndex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, types.ErrIndexNotLoaded
	}
	return m.current, nil
}

// Swap installs the new index and returns the previous one so the caller can
// close it once in-flight queries drain.
func (m *IndexManager) Swap(next VectorIndex) VectorIndex {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.current
	m.current = next
	return old
}
