package session

import (
	"fmt"
	"time"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session. The full level is
// kept because generated levels have no file to be reloaded from.
type PersistedSessionData struct {
	ID             string            `json:"id"`
	LevelID        string            `json:"level_id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	Level          *engine.Level     `json:"level"`
	GameState      *engine.GameState `json:"game_state"`
}

func persistedFrom(session *service.Session) (*PersistedSessionData, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if session.Level == nil || session.Engine == nil {
		return nil, fmt.Errorf("session %s has no level or engine", session.ID)
	}
	return &PersistedSessionData{
		ID:             session.ID,
		LevelID:        session.Level.ID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Level:          session.Level,
		GameState:      session.Engine.GetState(),
	}, nil
}

// restore rebuilds a live session: a fresh engine over the stored level
// with the stored rotations and history re-applied
func (data *PersistedSessionData) restore() (*service.Session, error) {
	if data.Level == nil {
		return nil, fmt.Errorf("persisted session %s has no level", data.ID)
	}

	gameEngine, err := engine.NewEngine(data.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	if data.GameState != nil {
		if err := gameEngine.SetState(data.GameState); err != nil {
			return nil, fmt.Errorf("failed to set game state: %w", err)
		}
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         gameEngine,
		Level:          data.Level,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
