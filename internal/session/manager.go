package session

import (
	"sync"
	"time"
)

// Manager owns the current session for one running application. It caches
// the persisted group and publishes an Invalidation on the Bus whenever
// the group is cleared.
type Manager struct {
	store *FileStore
	bus   *Bus
	now   func() time.Time

	mu      sync.Mutex
	current Session
	present bool
	loaded  bool
}

// NewManager creates a Manager over store that publishes on bus.
func NewManager(store *FileStore, bus *Bus) *Manager {
	return &Manager{store: store, bus: bus, now: time.Now}
}

// Bus returns the invalidation bus.
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Now returns the manager's clock reading.
func (m *Manager) Now() time.Time {
	return m.now()
}

// SetClock replaces time.Now. Intended for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Current returns the session, loading it from disk on first use. Load
// errors are treated as no session.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		s, ok, err := m.store.Load()
		m.current, m.present, m.loaded = s, ok && err == nil, true
	}
	return m.current, m.present
}

// Set persists s and makes it current.
func (m *Manager) Set(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(s); err != nil {
		return err
	}
	m.current, m.present, m.loaded = s, true, true
	return nil
}

// Invalidate clears the persisted group and publishes reason. It is a
// no-op when there is no session.
func (m *Manager) Invalidate(reason Reason) error {
	if _, ok := m.Current(); !ok {
		return nil
	}

	m.mu.Lock()
	err := m.store.Clear()
	m.current, m.present, m.loaded = Session{}, false, true
	m.mu.Unlock()

	m.bus.Publish(Invalidation{Reason: reason, At: m.now()})
	return err
}

// Reload re-reads the persisted group. If a session was present and is now
// gone, an Invalidation with ReasonExternal is published.
func (m *Manager) Reload() {
	m.mu.Lock()
	had := m.present
	s, ok, err := m.store.Load()
	ok = ok && err == nil
	m.current, m.present, m.loaded = s, ok, true
	m.mu.Unlock()

	if had && !ok {
		m.bus.Publish(Invalidation{Reason: ReasonExternal, At: m.now()})
	}
}

// Bootstrap loads the session at startup. An expired session is cleared
// and ReasonExpired is published.
func (m *Manager) Bootstrap() (Session, bool) {
	s, ok := m.Current()
	if !ok {
		return Session{}, false
	}
	if s.Expired(m.now()) {
		_ = m.Invalidate(ReasonExpired)
		return Session{}, false
	}
	return s, true
}
