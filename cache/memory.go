package cache

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-process [Store]. It is meant for a single node and
// for tests; entries are copied on the way in and out.
type MemoryStore struct {
	mu        sync.RWMutex
	resources map[string]map[string]Entry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{resources: make(map[string]map[string]Entry)}
}

func (m *MemoryStore) Get(_ context.Context, resource string, key Key) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.resources[resource][key.Fingerprint()]
	if !ok {
		return Entry{}, false, nil
	}
	return e.Clone(), true, nil
}

func (m *MemoryStore) Set(_ context.Context, resource string, key Key, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.resources[resource]
	if !ok {
		fields = make(map[string]Entry)
		m.resources[resource] = fields
	}
	fields[key.Fingerprint()] = entry.Clone()
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, resource string, key Key) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.resources[resource][key.Fingerprint()]
	return ok, nil
}

func (m *MemoryStore) DeleteOne(_ context.Context, resource string, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resources[resource], key.Fingerprint())
	return nil
}

func (m *MemoryStore) DeleteAll(_ context.Context, resource string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resources, resource)
	return nil
}

func (m *MemoryStore) DeleteByPrefix(_ context.Context, resource string, prefix Key) (int, error) {
	p := prefix.Prefix()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for fp := range m.resources[resource] {
		if strings.HasPrefix(fp, p) {
			delete(m.resources[resource], fp)
			n++
		}
	}
	return n, nil
}

// Len returns the number of entries held for resource.
func (m *MemoryStore) Len(resource string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.resources[resource])
}
