// ABOUTME: Session manager holding live sessions by identifier for long-lived servers
// ABOUTME: Sessions live in memory only and disappear with the process
package session

import (
	"sort"
	"sync"
)

// Manager creates and addresses sessions by ID
type Manager struct {
	opts     Options
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions share opts
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session
func (m *Manager) Create() *Session {
	s := New(m.opts)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	return s
}

// Get returns the session with the given ID
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete ends a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the live session IDs in sorted order
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
