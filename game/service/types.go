package service

import (
	"time"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
)

// CreateSessionRequest selects the level a new session plays. At most one
// source may be set; an empty request plays the default level.
type CreateSessionRequest struct {
	LevelID     string            `json:"level_id,omitempty"`
	LevelNumber int               `json:"level_number,omitempty"`
	Generate    *generator.Config `json:"generate,omitempty"`
}

// SessionInfo provides information about a play session
type SessionInfo struct {
	ID             string            `json:"id"`
	LevelID        string            `json:"level_id"`
	LevelName      string            `json:"level_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
	Level          *engine.Level     `json:"level,omitempty"`
	FellBack       bool              `json:"fell_back,omitempty"`
}

// RotateResult contains the result of a single rotation
type RotateResult struct {
	Success    bool                         `json:"success"`
	RejectCode string                       `json:"reject_code,omitempty"` // no_tile|fixed_tile|level_complete
	Entry      *engine.RotationHistoryEntry `json:"entry"`
	GameState  *engine.GameState            `json:"game_state"`
	Message    string                       `json:"message"`
	Events     []GameEvent                  `json:"events,omitempty"`
}

// BulkRotateResult contains the result of several rotations
type BulkRotateResult struct {
	RotationsExecuted  int                     `json:"rotations_executed"`
	RequestedRotations int                     `json:"requested_rotations"`
	Success            bool                    `json:"success"`
	Results            []engine.RotationResult `json:"results"`
	GameState          *engine.GameState       `json:"game_state"`
	Events             []GameEvent             `json:"events"`
	StoppedReason      string                  `json:"stopped_reason,omitempty"`
	StoppedOnRotation  int                     `json:"stopped_on_rotation,omitempty"` // 1-based
	Truncated          bool                    `json:"truncated,omitempty"`
	Limit              int                     `json:"limit,omitempty"`
	Complete           bool                    `json:"complete"`
	ConnectedBefore    int                     `json:"connected_before"`
	ConnectedAfter     int                     `json:"connected_after"`
	Message            string                  `json:"message,omitempty"`
}

// HintResult wraps the engine hint with a readable message
type HintResult struct {
	Hint    *engine.Hint `json:"hint,omitempty"`
	Found   bool         `json:"found"`
	Message string       `json:"message"`
}

// GameEvent represents an event that occurred during play
type GameEvent struct {
	Type      string           `json:"type"` // "rotate", "rejected", "connected", "complete", "reset"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures rotation history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated rotation history
type HistoryResponse struct {
	Rotations      []engine.RotationHistoryEntry `json:"rotations"`
	TotalRotations int                           `json:"total_rotations"`
	Page           int                           `json:"page"`
	PageSize       int                           `json:"page_size"`
	TotalPages     int                           `json:"total_pages"`
	HasNext        bool                          `json:"has_next"`
	HasPrevious    bool                          `json:"has_previous"`
}

// LevelInfo describes a level file in the level store
type LevelInfo struct {
	Filename         string          `json:"filename"`
	LevelID          string          `json:"level_id"` // The identifier to use for session creation
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Difficulty       string          `json:"difficulty,omitempty"`
	GridSize         engine.GridSize `json:"grid_size"`
	Landmarks        int             `json:"landmarks"`
	Rotatable        int             `json:"rotatable"`
	MinimumRotations int             `json:"minimum_rotations"`
}

// NewLevelInfo summarizes level as stored under filename
func NewLevelInfo(filename, levelID string, level *engine.Level) *LevelInfo {
	return &LevelInfo{
		Filename:         filename,
		LevelID:          levelID,
		Name:             level.Name,
		Description:      level.Description,
		Difficulty:       level.Difficulty,
		GridSize:         level.GridSize,
		Landmarks:        engine.CountRoadType(level.Tiles, engine.Landmark),
		Rotatable:        engine.CountRotatable(level.Tiles),
		MinimumRotations: engine.MinimumRotations(level.Tiles),
	}
}

// GenerateResult is a freshly generated level without a session
type GenerateResult struct {
	Level *engine.Level    `json:"level"`
	Stats *generator.Stats `json:"stats"`
}
