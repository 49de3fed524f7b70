package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
	"github.com/wricardo/roadlink/game/progression"
	"github.com/wricardo/roadlink/logger"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
	}
}

// CreateSession creates a new play session from a stored level, a
// progression level number or an inline generator config
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	level, fellBack, err := s.resolveLevel(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Let session manager generate a proper ID
	session, err := s.sessions.Create("", level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logger.Info("session created", "session", session.ID, "level", level.Name, "level_id", level.ID, "fell_back", fellBack)

	info := newSessionInfo(session)
	info.FellBack = fellBack
	return info, nil
}

func (s *gameServiceImpl) resolveLevel(req CreateSessionRequest) (*engine.Level, bool, error) {
	sources := 0
	if req.LevelID != "" {
		sources++
	}
	if req.LevelNumber != 0 {
		sources++
	}
	if req.Generate != nil {
		sources++
	}
	if sources > 1 {
		return nil, false, fmt.Errorf("%w: set only one of level_id, level_number and generate", ErrInvalidRequest)
	}

	switch {
	case req.LevelID != "":
		level, err := s.levels.LoadLevel(req.LevelID)
		if err != nil {
			if errors.Is(err, ErrLevelNotFound) {
				return nil, false, s.levelNotFound(req.LevelID)
			}
			return nil, false, fmt.Errorf("failed to load level %s: %w", req.LevelID, err)
		}
		return level, false, nil

	case req.LevelNumber != 0:
		if req.LevelNumber < 0 {
			return nil, false, fmt.Errorf("%w: level_number must be positive, got %d", ErrInvalidRequest, req.LevelNumber)
		}
		out := progression.Generate(req.LevelNumber, progression.DefaultMaxAttempts)
		return out.Level, out.FellBack, nil

	case req.Generate != nil:
		level, err := generator.Generate(*req.Generate)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return level, false, nil
	}

	return s.levels.GetDefault(), false, nil
}

// levelNotFound builds a helpful error listing the available levels
func (s *gameServiceImpl) levelNotFound(name string) error {
	available, err := s.levels.ListLevels()
	if err == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, info := range available {
			ids = append(ids, info.LevelID)
		}
		return fmt.Errorf("%w: '%s'. Available levels: %v", ErrLevelNotFound, name, ids)
	}
	return fmt.Errorf("%w: '%s'. Use /api/levels to list available levels", ErrLevelNotFound, name)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return newSessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		info := newSessionInfo(sess)
		// the full level is only sent for a single session
		info.Level = nil
		result = append(result, info)
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	logger.Info("session deleted", "session", sessionID)
	return nil
}

// Rotate turns one tile of a session a quarter clockwise
func (s *gameServiceImpl) Rotate(ctx context.Context, sessionID string, row, col int, reset bool) (*RotateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	before := sess.Engine.Report().ConnectedCount()
	entry, rotErr := sess.Engine.Rotate(row, col)
	state := sess.Engine.GetState()

	result := &RotateResult{
		Success:   rotErr == nil,
		Entry:     entry,
		GameState: state,
		Message:   state.Message,
	}

	if rotErr != nil {
		result.RejectCode = rejectCode(rotErr)
		pos := entry.Position
		events = append(events, GameEvent{
			Type:      "rejected",
			Message:   state.Message,
			Timestamp: time.Now(),
			Position:  &pos,
		})
		result.Events = events

		if errors.Is(rotErr, engine.ErrLevelComplete) {
			return result, fmt.Errorf("session %s: %w", sessionID, rotErr)
		}
		return result, nil
	}

	result.Events = append(events, rotationEvents(entry, before, state)...)

	if state.Complete {
		logger.Info("level complete", "session", sessionID, "level", state.LevelName, "rotations", state.CurrentRotationsCount)
	}

	s.persist(sessionID, "rotate")
	return result, nil
}

// BulkRotate applies several rotations in order, stopping on completion
func (s *gameServiceImpl) BulkRotate(ctx context.Context, sessionID string, rotations []engine.RotationEvent, reset bool) (*BulkRotateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkRotateResult{
		RequestedRotations: len(rotations),
		Events:             make([]GameEvent, 0),
		Success:            true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	if sess.Engine.IsComplete() {
		result.GameState = sess.Engine.GetState()
		result.Results = []engine.RotationResult{}
		result.Success = false
		result.Complete = true
		result.Message = result.GameState.Message
		return result, fmt.Errorf("session %s: %w", sessionID, engine.ErrLevelComplete)
	}

	// Limit rotations to prevent abuse
	if len(rotations) > engine.MaxBulkRotations {
		result.Truncated = true
		result.Limit = engine.MaxBulkRotations
		rotations = rotations[:engine.MaxBulkRotations]
	}

	result.ConnectedBefore = sess.Engine.Report().ConnectedCount()
	result.Results = sess.Engine.BulkRotate(rotations)

	for i, r := range result.Results {
		pos := r.Position
		if !r.Success {
			result.Success = false
			result.Events = append(result.Events, GameEvent{
				Type:      "rejected",
				Message:   fmt.Sprintf("rotation %d at %v rejected: %s", i+1, r.Position, r.Error),
				Timestamp: time.Now(),
				Position:  &pos,
			})
			continue
		}
		result.RotationsExecuted++
		result.Events = append(result.Events, GameEvent{
			Type:      "rotate",
			Message:   fmt.Sprintf("Rotated %v to %d°", r.Position, int(r.Rotation)),
			Timestamp: time.Now(),
			Position:  &pos,
		})
	}

	state := sess.Engine.GetState()
	result.GameState = state
	result.Complete = state.Complete
	result.ConnectedAfter = state.Connected
	result.Message = state.Message

	if state.Complete {
		result.Events = append(result.Events, GameEvent{
			Type:      "complete",
			Message:   state.Message,
			Timestamp: time.Now(),
		})
		if len(result.Results) < len(rotations) {
			result.StoppedReason = "level_complete"
			result.StoppedOnRotation = len(result.Results)
		}
		logger.Info("level complete", "session", sessionID, "level", state.LevelName, "rotations", state.CurrentRotationsCount)
	}

	s.persist(sessionID, "bulk rotate")
	return result, nil
}

// Reset restores the scrambled starting rotations of a session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()
	s.persist(sessionID, "reset")
	return state, nil
}

// Hint points at the first tile still off its solved orientation
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	hint, ok := sess.Engine.Hint()
	if !ok {
		msg := "Every rotatable tile already matches the solution."
		if sess.Engine.IsComplete() {
			msg = "The level is already complete."
		}
		return &HintResult{Found: false, Message: msg}, nil
	}

	return &HintResult{
		Hint:  hint,
		Found: true,
		Message: fmt.Sprintf("Rotate the tile at %v %d time(s) to reach %d°.",
			hint.Position, hint.Turns, int(hint.Target)),
	}, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetRotationHistory returns paginated rotation history
func (s *gameServiceImpl) GetRotationHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	history := sess.Engine.GetRotationHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var rotations []engine.RotationHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			rotations = append(rotations, history[i])
		}
	} else if start < total {
		rotations = history[start:end]
	}

	if rotations == nil {
		rotations = []engine.RotationHistoryEntry{}
	}

	return &HistoryResponse{
		Rotations:      rotations,
		TotalRotations: total,
		Page:           opts.Page,
		PageSize:       opts.Limit,
		TotalPages:     totalPages,
		HasNext:        opts.Page < totalPages,
		HasPrevious:    opts.Page > 1,
	}, nil
}

// ListLevels returns the levels in the level store
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// LoadLevel loads a specific stored level
func (s *gameServiceImpl) LoadLevel(ctx context.Context, name string) (*engine.Level, error) {
	level, err := s.levels.LoadLevel(name)
	if err != nil {
		if errors.Is(err, ErrLevelNotFound) {
			return nil, s.levelNotFound(name)
		}
		return nil, err
	}
	return level, nil
}

// SaveLevel stores a level after proving it solvable
func (s *gameServiceImpl) SaveLevel(ctx context.Context, name string, level *engine.Level) error {
	if level == nil {
		return fmt.Errorf("%w: level is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(name) == "" {
		name = level.Name
	}
	if err := s.levels.SaveLevel(name, level); err != nil {
		return err
	}
	logger.Info("level saved", "name", name, "level_id", level.ID)
	return nil
}

// GenerateLevel runs the generator without creating a session
func (s *gameServiceImpl) GenerateLevel(ctx context.Context, cfg generator.Config) (*GenerateResult, error) {
	level, stats, err := generator.GenerateWithStats(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return &GenerateResult{Level: level, Stats: stats}, nil
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		logger.Debug("failed to update last access", "session", sessionID, "error", err)
	}
	return sess, nil
}

func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		logger.Warning("failed to persist session", "session", sessionID, "op", op, "error", err)
	}
}

func newSessionInfo(sess *Session) *SessionInfo {
	state := sess.Engine.GetState()
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.Level.ID,
		LevelName:      sess.Level.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      state,
		Level:          sess.Level,
	}
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Puzzle reset to its starting position",
		Timestamp: time.Now(),
	}
}

// rotationEvents reports a successful rotation plus any change in how many
// landmarks reach the turnpike
func rotationEvents(entry *engine.RotationHistoryEntry, connectedBefore int, state *engine.GameState) []GameEvent {
	pos := entry.Position
	events := []GameEvent{{
		Type:      "rotate",
		Message:   fmt.Sprintf("Rotated %v from %d° to %d°", pos, int(entry.FromRotation), int(entry.ToRotation)),
		Timestamp: time.Now(),
		Position:  &pos,
	}}

	if state.Connected != connectedBefore {
		events = append(events, GameEvent{
			Type:      "connected",
			Message:   fmt.Sprintf("%d of %d landmarks now reach the turnpike", state.Connected, state.Landmarks),
			Timestamp: time.Now(),
		})
	}

	if state.Complete {
		events = append(events, GameEvent{
			Type:      "complete",
			Message:   state.Message,
			Timestamp: time.Now(),
		})
	}
	return events
}

func rejectCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrLevelComplete):
		return "level_complete"
	case errors.Is(err, engine.ErrNotRotatable):
		return "fixed_tile"
	case errors.Is(err, engine.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, engine.ErrNoTile):
		return "no_tile"
	default:
		return "rejected"
	}
}
