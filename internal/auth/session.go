package auth

import "sync"

// SessionStore is the key-value text store that carries the PKCE
// handshake across the authorization redirect. It is session-scoped:
// values survive a navigation but not a new session. The credential
// itself never lives here.
type SessionStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemorySession is an in-process SessionStore, used in tests and for
// flows that complete within a single run.
type MemorySession struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemorySession creates an empty in-process session store.
func NewMemorySession() *MemorySession {
	return &MemorySession{values: make(map[string]string)}
}

func (m *MemorySession) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySession) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemorySession) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
