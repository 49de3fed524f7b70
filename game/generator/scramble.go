package generator

import (
	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/rng"
)

// scramble draws a fresh visible rotation for every rotatable tile in
// row-major order. Solution rotations and fixed tiles are untouched.
func scramble(g *engine.Grid, src rng.Source) int {
	changed := 0
	for _, t := range g.Tiles() {
		if !t.Rotatable {
			continue
		}
		t.Rotation = engine.Rotations[rng.Intn(src, len(engine.Rotations))]
		if t.Rotation != t.SolutionRotation {
			changed++
		}
	}
	return changed
}
