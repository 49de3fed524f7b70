package main

import (
	"fmt"
	"sort"

	"github.com/wricardo/roadlink/game/engine"
)

// Strategy drives a session toward completion. Play returns the final state
// and the number of rotations it sent.
type Strategy interface {
	Name() string
	Play(c *Client, state *engine.GameState) (*engine.GameState, int, error)
}

func strategyByName(name string, maxRotations int) (Strategy, error) {
	switch name {
	case "plan":
		return planStrategy{}, nil
	case "hint":
		return hintStrategy{maxRotations: maxRotations}, nil
	case "search":
		return &searchStrategy{maxRotations: maxRotations, maxPasses: 8}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q (use plan, hint or search)", name)
}

// planStrategy reads the solved rotations off the state and sends the
// whole plan through bulk rotation.
type planStrategy struct{}

func (planStrategy) Name() string { return "plan" }

func (planStrategy) Play(c *Client, state *engine.GameState) (*engine.GameState, int, error) {
	plan := planRotations(state)
	sent := 0
	for len(plan) > 0 && !state.Complete {
		n := min(len(plan), engine.MaxBulkRotations)
		result, err := c.BulkRotate(plan[:n])
		if err != nil {
			return state, sent, err
		}
		sent += result.RotationsExecuted
		state = result.GameState
		plan = plan[n:]
	}
	return state, sent, nil
}

// planRotations lists the quarter turns that solve every rotatable tile,
// in row-major order.
func planRotations(state *engine.GameState) []engine.RotationEvent {
	tiles := append([]engine.Tile(nil), state.Tiles...)
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Row != tiles[j].Row {
			return tiles[i].Row < tiles[j].Row
		}
		return tiles[i].Col < tiles[j].Col
	})

	var plan []engine.RotationEvent
	for i := range tiles {
		t := &tiles[i]
		if !t.Rotatable {
			continue
		}
		for turn := 0; turn < engine.TurnsToSolve(t); turn++ {
			plan = append(plan, engine.RotationEvent{Row: t.Row, Col: t.Col})
		}
	}
	return plan
}

// hintStrategy asks the server which tile to turn next
type hintStrategy struct {
	maxRotations int
}

func (hintStrategy) Name() string { return "hint" }

func (s hintStrategy) Play(c *Client, state *engine.GameState) (*engine.GameState, int, error) {
	sent := 0
	for !state.Complete && sent < s.maxRotations {
		hint, err := c.Hint()
		if err != nil {
			return state, sent, err
		}
		if !hint.Found || hint.Hint == nil {
			break
		}
		turns := max(hint.Hint.Turns, 1)
		for i := 0; i < turns && !state.Complete; i++ {
			result, err := c.Rotate(hint.Hint.Position.Row, hint.Hint.Position.Col)
			if err != nil {
				return state, sent, err
			}
			sent++
			state = result.GameState
		}
	}
	return state, sent, nil
}

// searchStrategy never looks at the solution. It sweeps the rotatable
// tiles, tries every orientation of each, and keeps the one that scores
// best, until a sweep changes nothing.
type searchStrategy struct {
	maxRotations int
	maxPasses    int
}

func (*searchStrategy) Name() string { return "search" }

// score ranks states: connected landmarks first, then fewer unreached tiles
func score(state *engine.GameState) int {
	return state.Connected*1000 - len(state.Report.Unreached)
}

func (s *searchStrategy) Play(c *Client, state *engine.GameState) (*engine.GameState, int, error) {
	sent := 0
	for pass := 0; pass < s.maxPasses && !state.Complete; pass++ {
		improved := false
		for _, p := range rotatablePositions(state) {
			if state.Complete || sent+4 > s.maxRotations {
				return state, sent, nil
			}

			// Try the three other orientations, then come back around
			best, bestTurns := score(state), 0
			for turn := 1; turn <= 4; turn++ {
				result, err := c.Rotate(p.Row, p.Col)
				if err != nil {
					return state, sent, err
				}
				sent++
				state = result.GameState
				if state.Complete {
					return state, sent, nil
				}
				if turn < 4 && score(state) > best {
					best, bestTurns = score(state), turn
				}
			}

			for turn := 0; turn < bestTurns; turn++ {
				result, err := c.Rotate(p.Row, p.Col)
				if err != nil {
					return state, sent, err
				}
				sent++
				state = result.GameState
			}
			if bestTurns > 0 {
				improved = true
			}
		}
		if !improved {
			break
		}
	}
	return state, sent, nil
}

func rotatablePositions(state *engine.GameState) []engine.Position {
	var out []engine.Position
	for _, t := range state.Tiles {
		if t.Rotatable {
			out = append(out, t.Pos())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
