package store

import (
	"context"
	"sync"
)

// Memory is an in-process engine backed by maps. Tables iterate in insertion
// order. Intended for tests and single-process development setups; nothing
// is persisted across restarts.
type Memory struct {
	tables map[string]*memoryTable
	mu     sync.RWMutex
	closed bool
}

// NewMemory creates an empty in-memory engine.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]*memoryTable)}
}

// Table returns the named table, creating it on first use.
func (m *Memory) Table(_ context.Context, name string) (Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	t, ok := m.tables[name]
	if !ok {
		t = &memoryTable{entries: make(map[string][]byte)}
		m.tables[name] = t
	}
	return t, nil
}

// ListTables returns the names of all tables created so far.
func (m *Memory) ListTables(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	return names, nil
}

// Close marks the engine closed. Close is idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// memoryTable keeps a key order slice alongside the map so iteration follows
// insertion order, matching log-structured engines.
type memoryTable struct {
	entries map[string][]byte
	order   []string
	mu      sync.RWMutex
}

func (t *memoryTable) Get(_ context.Context, key []byte) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.entries[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (t *memoryTable) Put(_ context.Context, key, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := string(key)
	if _, ok := t.entries[k]; !ok {
		t.order = append(t.order, k)
	}
	v := make([]byte, len(value))
	copy(v, value)
	t.entries[k] = v
	return nil
}

func (t *memoryTable) Delete(_ context.Context, key []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := string(key)
	if _, ok := t.entries[k]; !ok {
		return nil
	}
	delete(t.entries, k)
	for i, existing := range t.order {
		if existing == k {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

func (t *memoryTable) Iterate(_ context.Context, fn func(key, value []byte) error) error {
	t.mu.RLock()
	keys := make([]string, len(t.order))
	copy(keys, t.order)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = t.entries[k]
	}
	t.mu.RUnlock()

	for i, k := range keys {
		if err := fn([]byte(k), values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *memoryTable) Clear(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make(map[string][]byte)
	t.order = nil
	return nil
}

var _ Engine = (*Memory)(nil)
