// internal/storage/report/memory.go
package report

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/newthinker/sigma/internal/backtest"
	"github.com/newthinker/sigma/internal/core"
)

// MemoryStore is an in-memory report store.
type MemoryStore struct {
	entries []Entry
	maxSize int
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Save adds a report to the store and returns its assigned ID.
func (m *MemoryStore) Save(ctx context.Context, r *backtest.Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := Entry{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Report:    r,
	}
	m.entries = append(m.entries, entry)

	// Trim if over capacity (remove oldest)
	if len(m.entries) > m.maxSize {
		m.entries = m.entries[len(m.entries)-m.maxSize:]
	}

	return entry.ID, nil
}

// GetByID retrieves a stored report by ID.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.entries {
		if m.entries[i].ID == id {
			entry := m.entries[i]
			return &entry, nil
		}
	}
	return nil, core.ErrReportNotFound
}

// List returns stored reports matching the filter, newest first.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.matches(m.entries[i], filter) {
			result = append(result, m.entries[i])
		}
	}

	// Apply offset and limit
	if filter.Offset >= len(result) {
		return []Entry{}, nil
	}
	if filter.Offset > 0 {
		result = result[filter.Offset:]
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Delete removes a stored report by ID.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return core.ErrReportNotFound
}

func (m *MemoryStore) matches(e Entry, filter ListFilter) bool {
	if filter.Symbol != "" && e.Report.Symbol != filter.Symbol {
		return false
	}
	if filter.Strategy != "" && e.Report.Strategy != filter.Strategy {
		return false
	}
	return true
}
