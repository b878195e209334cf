package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/wricardo/campus-quest/game/catalog"
	"github.com/wricardo/campus-quest/game/engine"
	"github.com/wricardo/campus-quest/game/history"
	"github.com/wricardo/campus-quest/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	now      func() time.Time
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		now:      time.Now,
	}
}

// Create creates a new session on cat. An empty id asks the manager to
// generate one.
func (m *Manager) Create(id, world string, cat *catalog.Catalog) (*service.Session, error) {
	if strings.ContainsAny(id, " /\t\n") {
		return nil, oops.Code("INVALID_SESSION_ID").With("session_id", id).Wrap(ErrInvalidSessionID)
	}

	eng, err := engine.NewEngineWithDefaults(cat)
	if err != nil {
		return nil, oops.Code("ENGINE_CREATE_FAILED").With("world", world).Wrapf(err, "failed to create engine")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	} else if m.sessionExists(id) {
		return nil, oops.Code("SESSION_EXISTS").With("session_id", id).Wrap(ErrSessionAlreadyExists)
	}

	now := m.now()
	session := &service.Session{
		ID:             id,
		World:          world,
		Engine:         eng,
		History:        history.New(),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[strings.ToLower(id)] = session

	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, notFound(id)
	}
	return session, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id, world string, cat *catalog.Catalog) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, world, cat)
	}
	return nil, err
}

// List returns all active sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	sortByCreation(result)
	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return notFound(id)
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return notFound(id)
	}
	session.LastAccessedAt = m.now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// RunCleanup removes expired sessions every interval until ctx is done.
// onRemoved, when set, is called with the count of each non-empty sweep.
func (m *Manager) RunCleanup(ctx context.Context, interval, maxAge time.Duration, onRemoved func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.CleanupExpiredSessions(maxAge); n > 0 && onRemoved != nil {
				onRemoved(n)
			}
		}
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns an unused random 4-character session ID.
// Callers hold the write lock.
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 2)
	for {
		_, _ = rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) {
			return id
		}
	}
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

func notFound(id string) error {
	return oops.
		Code(service.CodeSessionNotFound).
		With("session_id", id).
		Wrapf(ErrSessionNotFound, "session %s", id)
}

func sortByCreation(sessions []*service.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
}
