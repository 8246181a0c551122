package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studio/internal/domain"
)

// Manager is the in-memory session registry. Sessions are memory-only and
// expire after sitting idle for the configured TTL; nothing survives a
// process restart.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewManager builds a registry with the given idle TTL.
func NewManager(ttl time.Duration, logger zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
	}
}

// Create registers a fresh session and returns it.
func (m *Manager) Create() *Session {
	s := New(uuid.NewString(), m.logger)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.logger.Info().Str("session_id", s.ID).Msg("session created")
	return s
}

// Get returns the session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// Delete drops the session immediately.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle past the TTL and returns how many were dropped.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var stale []string
	for id, s := range m.sessions {
		if now.Sub(s.LastAccess()) > m.ttl {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if len(stale) > 0 {
		m.logger.Info().Int("count", len(stale)).Msg("expired idle sessions")
	}
	return len(stale)
}

// RunSweeper periodically evicts idle sessions until done closes.
func (m *Manager) RunSweeper(done <-chan struct{}, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}
