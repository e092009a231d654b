package storage

import (
	"sync"

	"securevault/internal/vault"
)

// MemoryStorage is an in-memory implementation of vault.Storage, useful for
// testing. Safe for concurrent use.
type MemoryStorage struct {
	mu         sync.RWMutex
	enrollment *vault.Enrollment
	blob       []byte
}

var _ vault.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates a new empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Enrollment() (*vault.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.enrollment == nil {
		return nil, nil
	}
	e := *m.enrollment
	return &e, nil
}

func (m *MemoryStorage) SaveEnrollment(e *vault.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *e
	m.enrollment = &copied
	return nil
}

func (m *MemoryStorage) LoadBlob() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.blob == nil {
		return nil, vault.ErrNoBlob
	}
	return append([]byte(nil), m.blob...), nil
}

func (m *MemoryStorage) StoreBlob(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blob = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStorage) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enrollment = nil
	m.blob = nil
	return nil
}

func (m *MemoryStorage) Close() error { return nil }
