package generator

import (
	"fmt"

	"github.com/wricardo/roadlink/game/engine"
)

// shapeFor picks the shape whose openings can cover the required directions
func shapeFor(required engine.Openings) engine.TileShape {
	switch required.Count() {
	case 4:
		return engine.Crossroads
	case 3:
		return engine.TJunction
	case 2:
		dirs := required.List()
		if dirs[0].Opposite() == dirs[1] {
			return engine.Straight
		}
		return engine.Corner
	default:
		return engine.Straight
	}
}

// rotationFor returns the first rotation whose openings equal required, or
// 0 when none does. The structural check reports the resulting defect.
func rotationFor(shape engine.TileShape, required engine.Openings) (engine.Rotation, bool) {
	base := shape.BaseOpenings()
	for _, r := range engine.Rotations {
		if base.Rotate(r) == required {
			return r, true
		}
	}
	return 0, false
}

// facing returns the rotation that turns a landmark's driveway toward d
func facing(d engine.Direction) engine.Rotation {
	steps := (int(d) - int(engine.South) + 4) % 4
	return engine.Rotations[steps]
}

// resolveStats records what the resolver changed
type resolveStats struct {
	upgraded   int
	mismatched int
}

// resolve derives shape and rotation for every rotatable tile from its
// occupied neighbors, turns each landmark toward its route and leaves the
// hub at 0.
func resolve(g *engine.Grid, routes []route, merged map[engine.Position]int) resolveStats {
	var stats resolveStats

	for _, t := range g.Tiles() {
		if !t.Rotatable {
			continue
		}
		required := g.OccupiedNeighbors(t.Pos())
		shape := shapeFor(required)
		if shape != t.Shape && merged[t.Pos()] > 0 {
			t.Note = fmt.Sprintf("upgraded from %s where %d routes meet", t.Shape, merged[t.Pos()]+1)
			stats.upgraded++
		}
		t.Shape = shape

		rot, ok := rotationFor(shape, required)
		if !ok {
			stats.mismatched++
		}
		t.SolutionRotation = rot
		t.Rotation = rot
	}

	for _, r := range routes {
		lm := g.At(r.landmark)
		if lm == nil || len(r.cells) < 2 {
			continue
		}
		next := r.cells[1]
		for _, d := range engine.Directions {
			if r.landmark.Step(d) == next {
				lm.SolutionRotation = facing(d)
				lm.Rotation = lm.SolutionRotation
				break
			}
		}
	}

	for _, hub := range g.TilesOfType(engine.Turnpike) {
		hub.Rotation = 0
		hub.SolutionRotation = 0
	}

	return stats
}
