package cache

import (
	"github.com/kardolus/jssdk/internal"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It is safe for concurrent use but is
// not shared between processes.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	timer   internal.Timer
}

func NewMemoryStore(timer internal.Timer) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		timer:   timer,
	}
}

// Ensure MemoryStore implements the Store interface
var _ Store = &MemoryStore{}

func (m *MemoryStore) Has(key string) (bool, error) {
	_, err := m.Get(key)
	return err == nil, nil
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", ErrNotFound
	}

	if entry.Expired(m.timer.Now()) {
		m.mu.Lock()
		// another writer may have refreshed the key in between
		if current, ok := m.entries[key]; ok && current.Expired(m.timer.Now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", ErrNotFound
	}

	return entry.Value, nil
}

func (m *MemoryStore) Set(key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return m.Delete(key)
	}

	now := m.timer.Now()

	m.mu.Lock()
	m.entries[key] = Entry{
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		UpdatedAt: now,
	}
	m.mu.Unlock()

	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
