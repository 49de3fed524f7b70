package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/service"
)

// roadGlyphs draws a road tile by its open sides (N=1, E=2, S=4, W=8)
var roadGlyphs = [16]string{
	"?", "╵", "╶", "└", "╷", "│", "┌", "├",
	"╴", "┘", "─", "┴", "┐", "┤", "┬", "┼",
}

const (
	emptyGlyph    = "·"
	turnpikeGlyph = "#"
)

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s (%s)\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.LevelName, session.LevelID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatSessionList(count int, sessions []service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", count)
	for _, s := range sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.Complete {
			status = "complete"
		}
		fmt.Fprintf(&b, "- %s (Level: %s, %s, Created: %s)\n",
			s.ID, s.LevelID, status, s.CreatedAt.Format("15:04:05"))
	}
	return b.String()
}

// landmarkOrder returns landmark positions in row-major order, matching the
// order of Report.LandmarksConnected
func landmarkOrder(state *engine.GameState) map[engine.Position]int {
	order := make(map[engine.Position]int)
	for _, t := range sortedTiles(state) {
		if t.RoadType == engine.Landmark {
			order[t.Pos()] = len(order)
		}
	}
	return order
}

func sortedTiles(state *engine.GameState) []engine.Tile {
	cells := make([]*engine.Tile, state.GridSize.Rows*state.GridSize.Cols)
	for i := range state.Tiles {
		t := &state.Tiles[i]
		if t.Row < 0 || t.Row >= state.GridSize.Rows || t.Col < 0 || t.Col >= state.GridSize.Cols {
			continue
		}
		cells[t.Row*state.GridSize.Cols+t.Col] = t
	}
	tiles := make([]engine.Tile, 0, len(state.Tiles))
	for _, t := range cells {
		if t != nil {
			tiles = append(tiles, *t)
		}
	}
	return tiles
}

func tileGlyph(t *engine.Tile, landmarks map[engine.Position]int) string {
	switch t.RoadType {
	case engine.Turnpike:
		return turnpikeGlyph
	case engine.Landmark:
		return fmt.Sprint(landmarks[t.Pos()])
	}
	return roadGlyphs[t.Openings()&0xF]
}

// formatGrid renders the arena with row and column indexes
func formatGrid(state *engine.GameState) string {
	rows, cols := state.GridSize.Rows, state.GridSize.Cols
	glyphs := make([]string, rows*cols)
	for i := range glyphs {
		glyphs[i] = emptyGlyph
	}

	landmarks := landmarkOrder(state)
	for i := range state.Tiles {
		t := &state.Tiles[i]
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			continue
		}
		glyphs[t.Row*cols+t.Col] = tileGlyph(t, landmarks)
	}

	var b strings.Builder
	b.WriteString("    ")
	for c := 0; c < cols; c++ {
		fmt.Fprintf(&b, "%-2d", c%100)
	}
	b.WriteString("\n")
	for r := 0; r < rows; r++ {
		fmt.Fprintf(&b, "%2d  ", r)
		for c := 0; c < cols; c++ {
			b.WriteString(glyphs[r*cols+c])
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Level: %s | Grid: %dx%d | Landmarks connected: %d/%d | Rotations: %d (total %d)\n\n",
		state.LevelName, state.GridSize.Rows, state.GridSize.Cols,
		state.Connected, state.Landmarks,
		state.CurrentRotationsCount, state.TotalRotations)

	result.WriteString(formatGrid(state))

	// Landmarks in report order
	for _, t := range sortedTiles(state) {
		if t.RoadType != engine.Landmark {
			continue
		}
		idx := landmarkOrder(state)[t.Pos()]
		status := "✗ not connected"
		if idx < len(state.Report.LandmarksConnected) && state.Report.LandmarksConnected[idx] {
			status = "✓ connected"
		}
		kind := string(t.LandmarkKind)
		if kind == "" {
			kind = "landmark"
		}
		fmt.Fprintf(&result, "\nLandmark %d at (%d,%d) %s: %s", idx, t.Row, t.Col, kind, status)
	}

	if len(state.Report.Unreached) > 0 {
		cells := make([]string, 0, len(state.Report.Unreached))
		for _, p := range state.Report.Unreached {
			cells = append(cells, fmt.Sprintf("(%d,%d)", p.Row, p.Col))
		}
		fmt.Fprintf(&result, "\nUnreached tiles: %s", strings.Join(cells, " "))
	}

	if state.Complete {
		result.WriteString("\n\n🎉 LEVEL COMPLETE!")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatRotateResult(result *service.RotateResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Rotation applied\n")
	} else {
		fmt.Fprintf(&b, "✗ Rotation rejected (%s)\n", result.RejectCode)
	}

	if e := result.Entry; e != nil {
		fmt.Fprintf(&b, "Tile (%d,%d): %d° → %d°\n", e.Position.Row, e.Position.Col, int(e.FromRotation), int(e.ToRotation))
	}

	for _, ev := range result.Events {
		if ev.Type == "connected" || ev.Type == "complete" {
			fmt.Fprintf(&b, "• %s\n", ev.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkRotateResult(sessionID string, result *service.BulkRotateResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session %s: executed %d of %d rotations\n", sessionID, result.RotationsExecuted, result.RequestedRotations)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to the first %d rotations\n", result.Limit)
	}
	fmt.Fprintf(&b, "Landmarks connected: %d → %d\n", result.ConnectedBefore, result.ConnectedAfter)
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped after rotation %d: %s\n", result.StoppedOnRotation, result.StoppedReason)
	}

	for i, r := range result.Results {
		status := "✓"
		detail := fmt.Sprintf("%d°", int(r.Rotation))
		if !r.Success {
			status = "✗"
			detail = r.Error
		}
		fmt.Fprintf(&b, "%2d. %s (%d,%d) %s\n", i+1, status, r.Position.Row, r.Position.Col, detail)
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rotation History (Page %d/%d, Total: %d):\n\n",
		history.Page, history.TotalPages, history.TotalRotations)

	for _, r := range history.Rotations {
		status := "✓"
		if !r.Success {
			status = "✗ " + r.Error
		}
		fmt.Fprintf(&b, "#%d (%d,%d) %d°→%d° %s\n",
			r.RotationNumber, r.Position.Row, r.Position.Col, int(r.FromRotation), int(r.ToRotation), status)
	}

	if history.HasNext {
		b.WriteString("\n(More rotations available on the next page)")
	}
	return b.String()
}

func formatLevels(levels []service.LevelInfo) string {
	if len(levels) == 0 {
		return "No hand-authored levels available. Use level_number or generator fields with create_session."
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, l := range levels {
		fmt.Fprintf(&b, "• %s - %s\n", l.LevelID, l.Name)
		if l.Description != "" {
			fmt.Fprintf(&b, "  %s\n", l.Description)
		}
		fmt.Fprintf(&b, "  Grid: %dx%d, Landmarks: %d, Rotatable: %d, Minimum rotations: %d\n\n",
			l.GridSize.Rows, l.GridSize.Cols, l.Landmarks, l.Rotatable, l.MinimumRotations)
	}
	return b.String()
}

func formatGenerateResult(result *service.GenerateResult) string {
	level := result.Level
	var b strings.Builder
	fmt.Fprintf(&b, "Generated level %s (%s)\n", level.ID, level.Name)
	if s := result.Stats; s != nil {
		fmt.Fprintf(&b, "Seed: %d | Road tiles: %d | Upgraded: %d | Scrambled: %d | Shortest route: %d\n",
			s.Seed, s.RoadTiles, s.Upgraded, s.Scrambled, s.ShortestRoute)
	}
	fmt.Fprintf(&b, "Minimum rotations to solve: %d\n\n", engine.MinimumRotations(level.Tiles))

	state := &engine.GameState{LevelName: level.Name, GridSize: level.GridSize, Tiles: level.Tiles}
	b.WriteString(formatGrid(state))
	b.WriteString("\nPass the same config and seed to create_session to play it.")
	return b.String()
}

// describeTile explains one cell and each of its openings
func describeTile(state *engine.GameState, pos engine.Position) (string, error) {
	g := engine.NewGrid(state.GridSize.Rows, state.GridSize.Cols)
	if !g.InBounds(pos) {
		return "", fmt.Errorf("coordinates (%d,%d) are out of bounds. Grid is %dx%d (rows 0-%d, cols 0-%d)",
			pos.Row, pos.Col, state.GridSize.Rows, state.GridSize.Cols, state.GridSize.Rows-1, state.GridSize.Cols-1)
	}
	for i := range state.Tiles {
		t := state.Tiles[i]
		if err := g.Place(&t); err != nil {
			return "", fmt.Errorf("malformed game state: %w", err)
		}
	}

	t := g.At(pos)
	if t == nil {
		return fmt.Sprintf("Cell (%d,%d) is empty. Nothing to rotate here.", pos.Row, pos.Col), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d,%d)\n", pos.Row, pos.Col)
	fmt.Fprintf(&b, "Shape: %s\nRoad type: %s\nRotation: %d°\n", t.Shape, t.RoadType, int(t.Rotation))
	if t.LandmarkKind != "" {
		fmt.Fprintf(&b, "Landmark: %s\n", t.LandmarkKind)
	}
	if t.Rotatable {
		b.WriteString("Rotatable: yes\n")
	} else {
		b.WriteString("Rotatable: no (fixed)\n")
	}

	b.WriteString("Openings:\n")
	for _, d := range t.Openings().List() {
		n := g.Neighbor(pos, d)
		np := pos.Step(d)
		switch {
		case n == nil && t.RoadType == engine.Turnpike:
			fmt.Fprintf(&b, "  %s: closed toll gate\n", d)
		case n == nil:
			fmt.Fprintf(&b, "  %s: dangling, leads off the road network\n", d)
		case !n.Openings().Has(d.Opposite()):
			fmt.Fprintf(&b, "  %s: (%d,%d) %s does not open back\n", d, np.Row, np.Col, n.RoadType)
		case !engine.CanConnect(t.RoadType, n.RoadType):
			fmt.Fprintf(&b, "  %s: (%d,%d) %s cannot take traffic from a %s\n", d, np.Row, np.Col, n.RoadType, t.RoadType)
		default:
			fmt.Fprintf(&b, "  %s: connects to (%d,%d) %s\n", d, np.Row, np.Col, n.RoadType)
		}
	}

	for _, u := range state.Report.Unreached {
		if u == pos {
			b.WriteString("Status: not yet reachable from the turnpike\n")
			break
		}
	}

	return b.String(), nil
}

const instructions = `🛣️ Roadlink - Complete Instructions

GAME OBJECTIVE:
Every landmark needs a road route to the turnpike. Rotate the scrambled road
tiles until all landmarks are connected and every road tile is part of the
network. The level completes the moment both hold.

THE GRID:
Coordinates are (row, col), both 0-based, row 0 at the top.
  #        turnpike (the hub); its gates are open on all four sides
  0-7      landmarks, numbered in row-major order; one driveway each
  │ ─      straight roads
  └ ┌ ┐ ┘  corners
  ├ ┬ ┤ ┴  T-junctions
  ┼        crossroads
  ·        empty cell

ROTATION:
• rotate turns one tile 90° clockwise; four turns bring it back
• Landmarks and the turnpike are fixed; rotating them is rejected
• Rotating an empty cell or a cell off the grid is rejected
• Once the level is complete further rotations are refused

CONNECTIONS:
Two neighbors connect when both open toward each other and the road types fit:
• Houses only touch local roads
• Highways never feed local roads directly
• Landmarks take local roads, arterial roads or the turnpike
A turnpike gate facing an empty cell is simply closed. Any other opening that
faces an empty cell or the edge is dangling.

STRATEGY:
1. Use game_state to see which landmarks are connected and which tiles are unreached
2. Use describe_tile on a suspicious tile to see which openings fail and why
3. Work outward from the turnpike toward each landmark
4. Use bulk_rotate to apply a planned sequence in one call
5. Stuck? hint shows the first tile that is not in its solved orientation

SESSIONS:
• Each session has its own grid; sessions never affect each other
• create_session with level_number follows the progression: waves of five
  levels going easy, easy, medium, medium, hard with larger grids each wave
• reset_game restores the scrambled start; rotation_history keeps every attempt`
