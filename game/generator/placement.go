package generator

import (
	"fmt"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/rng"
)

// Placement constraints
const (
	minHubDistance      = 3
	minLandmarkDistance = 2
	alignmentWindow     = 3
)

// placeHub picks the turnpike cell for the difficulty tier
func placeHub(size engine.GridSize, d Difficulty, src rng.Source) engine.Position {
	switch d {
	case Easy:
		// center with up to one cell of jitter on each axis
		row := size.Rows/2 + rng.Intn(src, 3) - 1
		col := size.Cols/2 + rng.Intn(src, 3) - 1
		return clampPosition(size, engine.Position{Row: row, Col: col})

	case Medium:
		// a non-corner cell on one of the four edges
		edge := rng.Intn(src, 4)
		switch edge {
		case 0:
			return engine.Position{Row: 0, Col: edgeOffset(size.Cols, src)}
		case 1:
			return engine.Position{Row: edgeOffset(size.Rows, src), Col: size.Cols - 1}
		case 2:
			return engine.Position{Row: size.Rows - 1, Col: edgeOffset(size.Cols, src)}
		default:
			return engine.Position{Row: edgeOffset(size.Rows, src), Col: 0}
		}

	case Hard:
		// a corner, or one step in from it on either axis
		corner := rng.Intn(src, 4)
		rowIn := rng.Intn(src, 2)
		colIn := rng.Intn(src, 2)
		var p engine.Position
		switch corner {
		case 0:
			p = engine.Position{Row: rowIn, Col: colIn}
		case 1:
			p = engine.Position{Row: rowIn, Col: size.Cols - 1 - colIn}
		case 2:
			p = engine.Position{Row: size.Rows - 1 - rowIn, Col: colIn}
		default:
			p = engine.Position{Row: size.Rows - 1 - rowIn, Col: size.Cols - 1 - colIn}
		}
		return clampPosition(size, p)
	}
	panic(fmt.Sprintf("generator: unknown difficulty %d", int(d)))
}

// edgeOffset picks a position in [1, length-2], or anywhere along a side
// too short to have a non-corner cell.
func edgeOffset(length int, src rng.Source) int {
	if length <= 2 {
		return rng.Intn(src, length)
	}
	return 1 + rng.Intn(src, length-2)
}

func clampPosition(size engine.GridSize, p engine.Position) engine.Position {
	return engine.Position{
		Row: clamp(p.Row, 0, size.Rows-1),
		Col: clamp(p.Col, 0, size.Cols-1),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// quadrant numbers the four grid quadrants 0..3
func quadrant(size engine.GridSize, p engine.Position) int {
	q := 0
	if p.Row >= size.Rows/2 {
		q += 2
	}
	if p.Col >= size.Cols/2 {
		q++
	}
	return q
}

// landmarkCandidates returns every empty cell at least minHubDistance from
// the hub, shuffled.
func landmarkCandidates(g *engine.Grid, hub engine.Position, src rng.Source) []engine.Position {
	var candidates []engine.Position
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			p := engine.Position{Row: row, Col: col}
			if g.Occupied(p) {
				continue
			}
			if engine.ManhattanDistance(p, hub) >= minHubDistance {
				candidates = append(candidates, p)
			}
		}
	}
	rng.Shuffle(src, len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates
}

// placeLandmarks greedily assigns count landmarks to the first candidate
// that satisfies every spacing rule against those already placed.
func placeLandmarks(g *engine.Grid, hub engine.Position, count int, src rng.Source) ([]engine.Position, error) {
	candidates := landmarkCandidates(g, hub, src)
	size := g.Size()
	maxPerQuadrant := (count + 1) / 2
	perQuadrant := make([]int, 4)
	placed := make([]engine.Position, 0, count)
	used := make(map[engine.Position]bool, count)

	for i := 0; i < count; i++ {
		found := false
		for _, c := range candidates {
			if used[c] {
				continue
			}
			if !spacedFromLandmarks(c, hub, placed) {
				continue
			}
			q := quadrant(size, c)
			if perQuadrant[q] >= maxPerQuadrant {
				continue
			}
			placed = append(placed, c)
			used[c] = true
			perQuadrant[q]++
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("%w: no cell for landmark %d of %d on a %dx%d grid", ErrPlacementExhausted, i+1, count, size.Rows, size.Cols)
		}
	}
	return placed, nil
}

// spacedFromLandmarks checks the hub distance and the pairwise rules
func spacedFromLandmarks(c, hub engine.Position, placed []engine.Position) bool {
	if engine.ManhattanDistance(c, hub) < minHubDistance {
		return false
	}
	for _, p := range placed {
		dr := abs(c.Row - p.Row)
		dc := abs(c.Col - p.Col)
		if dr+dc < minLandmarkDistance {
			return false
		}
		if dr == 0 && dc <= alignmentWindow {
			return false
		}
		if dc == 0 && dr <= alignmentWindow {
			return false
		}
		if dr <= 1 && dc <= 1 {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
