package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLevelNotFound   = errors.New("level not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Rotate(ctx context.Context, sessionID string, row, col int, reset bool) (*RotateResult, error)
	BulkRotate(ctx context.Context, sessionID string, rotations []engine.RotationEvent, reset bool) (*BulkRotateResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetRotationHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	LoadLevel(ctx context.Context, name string) (*engine.Level, error)
	SaveLevel(ctx context.Context, name string, level *engine.Level) error
	GenerateLevel(ctx context.Context, cfg generator.Config) (*GenerateResult, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, level *engine.Level) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, level *engine.Level) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager handles hand-authored level loading
type LevelManager interface {
	LoadLevel(name string) (*engine.Level, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() *engine.Level
	SaveLevel(name string, level *engine.Level) error
}

// Session represents an active play session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Level          *engine.Level
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
