package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/service"
	"github.com/wricardo/roadlink/logger"
)

// sessionIDLength is the number of hex characters kept from a random UUID
const sessionIDLength = 8

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager keeps the live puzzle sessions, keyed by lower-cased ID, and
// mirrors them to an optional persistence backend.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager creates an in-memory session manager
func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence creates a session manager that saves through
// persistence on every change
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

func key(id string) string {
	return strings.ToLower(id)
}

// Create starts a session playing level. An empty id gets a generated one.
func (m *Manager) Create(id string, level *engine.Level) (*service.Session, error) {
	if level == nil {
		return nil, fmt.Errorf("level cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	}
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Level:          level,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = session

	logger.Debug("session created", "session", id, "level", level.Name,
		"rows", level.GridSize.Rows, "cols", level.GridSize.Cols)
	m.persist(session, "create")

	return session, nil
}

// persist saves session if a backend is configured. Failures are logged,
// never returned, so play continues when storage is unavailable.
func (m *Manager) persist(session *service.Session, op string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(session); err != nil {
		logger.Warning("failed to persist session", "session", session.ID, "op", op, "error", err)
	}
}

// Get returns the session with id (case-insensitive), loading it from
// persistence when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[key(id)]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence == nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another caller may have loaded it meanwhile
	if session, exists := m.sessions[key(id)]; exists {
		return session, nil
	}
	m.sessions[key(id)] = loaded
	logger.Debug("session restored from storage", "session", loaded.ID)
	return loaded, nil
}

// GetOrCreate gets an existing session or creates one playing level
func (m *Manager) GetOrCreate(id string, level *engine.Level) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, level)
	}
	return nil, err
}

// List returns the live sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Delete removes a session from memory and from persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts a session but leaves its persisted copy
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[key(id)]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed marks a session as used now
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[key(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	m.persist(session, "touch")
	return nil
}

// Save writes one session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[key(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge and
// returns how many were evicted. Persisted copies are left to the store.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for k, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, k)
			removed++
			logger.Debug("session expired", "session", session.ID, "idle", time.Since(session.LastAccessedAt).Round(time.Second))
		}
	}
	return removed
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns a short random ID not used by a live session.
// Callers hold m.mu.
func (m *Manager) generateSessionID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionIDLength]
		if !m.sessionExists(id) {
			return id
		}
	}
}

// sessionExists reports whether id is live, ignoring case. Callers hold m.mu.
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[key(id)]
	return exists
}

// LoadPersistedSessions pulls every stored session into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if m.sessionExists(id) {
			continue
		}
		session, err := m.persistence.Load(id)
		if err != nil {
			logger.Warning("failed to load persisted session", "session", id, "error", err)
			continue
		}
		m.sessions[key(id)] = session
		loaded++
	}

	if loaded > 0 {
		logger.Info("loaded persisted sessions", "count", loaded)
	}
	return nil
}

// SaveAllSessions writes every live session to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	failed := 0
	for _, session := range m.List() {
		if err := m.persistence.Save(session); err != nil {
			logger.Warning("failed to save session", "session", session.ID, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}
