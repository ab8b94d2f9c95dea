// Package session holds each visitor's working table and the files they
// upload.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dataviz/domain/core"
	"dataviz/domain/table"
)

// Session is one visitor's workspace: a single "current table" slot that is
// replaced wholesale by every upload, manual entry or snapshot load.
type Session struct {
	id core.SessionID

	mu       sync.RWMutex
	current  *table.Table
	source   string
	lastSeen time.Time
}

// ID returns the session id carried in the cookie.
func (s *Session) ID() core.SessionID { return s.id }

// Table returns the current table and whether one is set.
func (s *Session) Table() (*table.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Source describes where the current table came from (file name, "manual
// entry" or snapshot name).
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// SetTable replaces the current table.
func (s *Session) SetTable(t *table.Table, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = t
	s.source = source
}

// Clear drops the current table.
func (s *Session) Clear() {
	s.SetTable(nil, "")
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Manager maps session ids to sessions and expires idle ones.
type Manager struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[core.SessionID]*Session
}

// NewManager creates a manager whose sessions expire after ttl of inactivity.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[core.SessionID]*Session),
	}
}

// Get returns the live session for id, refreshing its idle timer.
func (m *Manager) Get(id core.SessionID) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}

	now := m.now()
	if now.Sub(s.idleSince()) > m.ttl {
		m.remove(id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Create starts a new empty session.
func (m *Manager) Create() *Session {
	s := &Session{
		id:       core.SessionID(core.NewID()),
		lastSeen: m.now(),
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Resolve returns the session named by a raw cookie value, or a new one when
// the value is absent, malformed or expired. created reports the latter.
func (m *Manager) Resolve(raw string) (s *Session, created bool) {
	if id, err := core.ParseSessionID(raw); err == nil {
		if s, ok := m.Get(id); ok {
			return s, false
		}
	}
	return m.Create(), true
}

// Len is the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions idle longer than the ttl and returns how many.
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("expired idle sessions", "component", "session", "removed", n, "live", m.Len())
			}
		}
	}
}

func (m *Manager) remove(id core.SessionID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
