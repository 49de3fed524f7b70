package engine

import (
	"errors"
	"fmt"
	"time"
)

// Engine provides the main interface for a play session
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsComplete() bool
	Phase() Phase
	Report() Report

	// Rotation operations
	Rotate(row, col int) (*RotationHistoryEntry, error)
	BulkRotate(events []RotationEvent) []RotationResult
	Hint() (*Hint, bool)

	// Level
	GetLevel() *Level

	// History
	GetRotationHistory() []RotationHistoryEntry
	GetLastRotation() *RotationHistoryEntry
}

// GameState is the snapshot of a session that gets persisted and served
type GameState struct {
	LevelID    string   `json:"level_id"`
	LevelName  string   `json:"level_name"`
	GridSize   GridSize `json:"grid_size"`
	Tiles      []Tile   `json:"tiles"`
	Report     Report   `json:"report"`
	Phase      Phase    `json:"phase"`
	Complete   bool     `json:"complete"`
	Message    string   `json:"message"`
	Landmarks  int      `json:"landmarks"`
	Connected  int      `json:"connected"`
	Unresolved int      `json:"unresolved"`

	RotationHistory []RotationHistoryEntry `json:"rotation_history"`
	TotalRotations  int                    `json:"total_rotations"`

	// CurrentRotations mirrors RotationHistory but is cleared on reset
	CurrentRotations      []RotationHistoryEntry `json:"current_rotations"`
	CurrentRotationsCount int                    `json:"current_rotations_count"`
}

// RotationHistoryEntry represents a single rotation attempt
type RotationHistoryEntry struct {
	Position       Position `json:"position"`
	FromRotation   Rotation `json:"from_rotation"`
	ToRotation     Rotation `json:"to_rotation"`
	Success        bool     `json:"success"`
	Error          string   `json:"error,omitempty"`
	Complete       bool     `json:"complete"`
	Timestamp      int64    `json:"timestamp"`
	RotationNumber int      `json:"rotation_number"`
}

// RotationResult is the outcome of one event in a bulk rotation
type RotationResult struct {
	Position Position `json:"position"`
	Success  bool     `json:"success"`
	Rotation Rotation `json:"rotation"`
	Error    string   `json:"error,omitempty"`
}

// Hint points at a tile that is not yet in its solved orientation
type Hint struct {
	Position Position `json:"position"`
	Current  Rotation `json:"current"`
	Target   Rotation `json:"target"`
	Turns    int      `json:"turns"`
}

// GameEngine implements the Engine interface over one level instance
type GameEngine struct {
	level *Level
	conn  *Connectivity
	state *GameState
}

// NewEngine creates a session engine starting from the level's scrambled
// rotations. The level itself is never mutated.
func NewEngine(level *Level) (*GameEngine, error) {
	g, err := GridFromLevel(level)
	if err != nil {
		return nil, err
	}

	e := &GameEngine{
		level: level.Clone(),
		conn:  NewConnectivity(g),
		state: &GameState{
			RotationHistory:  []RotationHistoryEntry{},
			CurrentRotations: []RotationHistoryEntry{},
		},
	}
	e.refresh("")
	return e, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState restores a persisted state: tile rotations are re-applied to a
// fresh grid and history is carried over.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	g, err := GridFromLevel(e.level)
	if err != nil {
		return err
	}
	for _, t := range state.Tiles {
		current := g.At(t.Pos())
		if current == nil {
			return fmt.Errorf("%w: %v", ErrNoTile, t.Pos())
		}
		if current.Shape != t.Shape || current.RoadType != t.RoadType {
			return fmt.Errorf("state tile at %v does not match level %s", t.Pos(), e.level.Name)
		}
		if !t.Rotation.Valid() {
			return fmt.Errorf("state tile at %v: %w", t.Pos(), ErrInvalidRotation)
		}
		// fixed tiles stay at their solved rotation
		if !current.Rotatable && t.Rotation != current.SolutionRotation {
			return fmt.Errorf("state tile at %v turned to %d°, solution is %d°: %w",
				t.Pos(), t.Rotation, current.SolutionRotation, ErrNotRotatable)
		}
		current.Rotation = t.Rotation
	}

	e.conn = NewConnectivity(g)
	e.state = &GameState{
		RotationHistory:       nonNil(state.RotationHistory),
		TotalRotations:        state.TotalRotations,
		CurrentRotations:      nonNil(state.CurrentRotations),
		CurrentRotationsCount: state.CurrentRotationsCount,
	}
	e.refresh(state.Message)
	return nil
}

// Reset restores the scrambled starting rotations
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.RotationHistory
	prevTotal := e.state.TotalRotations

	g, err := GridFromLevel(e.level)
	if err != nil {
		// the level validated in NewEngine
		panic(err)
	}
	e.conn = NewConnectivity(g)

	e.state = &GameState{
		RotationHistory:  prevHistory,
		TotalRotations:   prevTotal,
		CurrentRotations: []RotationHistoryEntry{},
	}
	e.refresh("Puzzle reset to its starting position.")
	return e.state
}

// IsComplete returns whether every win rule holds
func (e *GameEngine) IsComplete() bool {
	return e.conn.Phase() == PhaseComplete
}

// Phase returns the runtime engine phase
func (e *GameEngine) Phase() Phase {
	return e.conn.Phase()
}

// Report returns the latest connectivity report
func (e *GameEngine) Report() Report {
	return e.conn.Report()
}

// Grid exposes the live arena
func (e *GameEngine) Grid() *Grid {
	return e.conn.Grid()
}

// GetLevel returns the level this engine plays
func (e *GameEngine) GetLevel() *Level {
	return e.level
}

// Rotate turns the tile at (row, col) a quarter clockwise and re-validates
func (e *GameEngine) Rotate(row, col int) (*RotationHistoryEntry, error) {
	ev := RotationEvent{Row: row, Col: col}

	entry := RotationHistoryEntry{Position: ev.Pos()}
	if t := e.conn.Grid().At(ev.Pos()); t != nil {
		entry.FromRotation = t.Rotation
		entry.ToRotation = t.Rotation
	}

	report, err := e.conn.HandleRotation(ev)
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Success = true
		entry.ToRotation = e.conn.Grid().At(ev.Pos()).Rotation
	}
	entry.Complete = report.IsComplete

	e.addToHistory(entry)
	e.refresh(rotationMessage(entry, report, err))
	return &e.state.RotationHistory[len(e.state.RotationHistory)-1], err
}

// BulkRotate applies events in order and stops once the level completes
func (e *GameEngine) BulkRotate(events []RotationEvent) []RotationResult {
	results := make([]RotationResult, 0, len(events))

	for _, ev := range events {
		// Stop if the puzzle is solved
		if e.IsComplete() {
			break
		}

		entry, err := e.Rotate(ev.Row, ev.Col)
		res := RotationResult{
			Position: ev.Pos(),
			Success:  err == nil,
			Rotation: entry.ToRotation,
		}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}

	return results
}

// Hint returns the first tile in row-major order whose openings differ from
// the solved arrangement.
func (e *GameEngine) Hint() (*Hint, bool) {
	if e.IsComplete() {
		return nil, false
	}
	for _, t := range e.conn.Grid().Tiles() {
		if !t.Rotatable || t.IsSolved() {
			continue
		}
		turns := TurnsToSolve(t)
		target := t.Rotation
		for i := 0; i < turns; i++ {
			target = target.Next()
		}
		return &Hint{
			Position: t.Pos(),
			Current:  t.Rotation,
			Target:   target,
			Turns:    turns,
		}, true
	}
	return nil, false
}

// GetRotationHistory returns the complete rotation history
func (e *GameEngine) GetRotationHistory() []RotationHistoryEntry {
	return e.state.RotationHistory
}

// GetLastRotation returns the last rotation attempt, or nil if none
func (e *GameEngine) GetLastRotation() *RotationHistoryEntry {
	if len(e.state.RotationHistory) == 0 {
		return nil
	}
	return &e.state.RotationHistory[len(e.state.RotationHistory)-1]
}

func (e *GameEngine) addToHistory(entry RotationHistoryEntry) {
	entry.Timestamp = time.Now().Unix()
	entry.RotationNumber = e.state.TotalRotations + 1

	// Append to cumulative history (never cleared by reset) and increment total
	e.state.RotationHistory = append(e.state.RotationHistory, entry)
	e.state.TotalRotations++

	e.state.CurrentRotations = append(e.state.CurrentRotations, entry)
	e.state.CurrentRotationsCount++
}

func (e *GameEngine) refresh(message string) {
	report := e.conn.Report()
	g := e.conn.Grid()

	s := e.state
	s.LevelID = e.level.ID
	s.LevelName = e.level.Name
	s.GridSize = g.Size()
	s.Tiles = g.Snapshot()
	s.Report = report
	s.Phase = e.conn.Phase()
	s.Complete = report.IsComplete
	s.Landmarks = len(report.LandmarksConnected)
	s.Connected = report.ConnectedCount()
	s.Unresolved = CountUnsolved(s.Tiles)

	if message == "" {
		message = statusMessage(report)
	}
	s.Message = message
}

func rotationMessage(entry RotationHistoryEntry, report Report, err error) string {
	switch {
	case errors.Is(err, ErrLevelComplete):
		return "The level is already complete."
	case errors.Is(err, ErrNoTile):
		return fmt.Sprintf("There is no tile at %v.", entry.Position)
	case errors.Is(err, ErrNotRotatable):
		return fmt.Sprintf("The tile at %v is fixed in place.", entry.Position)
	case err != nil:
		return err.Error()
	}
	if report.IsComplete {
		return ""
	}
	return fmt.Sprintf("Rotated %v to %d°. %s", entry.Position, int(entry.ToRotation), statusMessage(report))
}

func statusMessage(report Report) string {
	if report.IsComplete {
		return "Every landmark is connected to the turnpike. Level complete!"
	}
	msg := fmt.Sprintf("%d of %d landmarks connected to the turnpike.", report.ConnectedCount(), len(report.LandmarksConnected))
	if n := len(report.Unreached); n > 0 {
		msg += fmt.Sprintf(" %d tiles cannot reach the turnpike.", n)
	}
	return msg
}

func nonNil(entries []RotationHistoryEntry) []RotationHistoryEntry {
	if entries == nil {
		return []RotationHistoryEntry{}
	}
	return entries
}
