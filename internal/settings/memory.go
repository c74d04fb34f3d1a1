// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import "sync"

// MemoryStore keeps settings in memory.
type MemoryStore struct {
	mu     sync.Mutex
	cur    Settings
	closed bool
	obs    observers
}

// NewMemoryStore returns a store seeded with initial.
func NewMemoryStore(initial Settings) *MemoryStore {
	return &MemoryStore{cur: initial}
}

// Get implements Store.
func (m *MemoryStore) Get() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Settings{}, ErrClosed
	}
	return m.cur, nil
}

// Save implements Store.
func (m *MemoryStore) Save(s Settings) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.cur.BackendURL = s.BackendURL
	m.cur.APIKey = s.APIKey
	if s.ClientID != "" {
		m.cur.ClientID = s.ClientID
	}
	cur := m.cur
	m.mu.Unlock()

	m.obs.notify(cur)
	return nil
}

// Reset implements Store.
func (m *MemoryStore) Reset() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.cur = Settings{ClientID: m.cur.ClientID}
	cur := m.cur
	m.mu.Unlock()

	m.obs.notify(cur)
	return nil
}

// OnChanged implements Store.
func (m *MemoryStore) OnChanged(fn func(Settings)) func() {
	return m.obs.add(fn)
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
