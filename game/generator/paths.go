package generator

import (
	"fmt"

	"github.com/wricardo/roadlink/game/engine"
)

// route is the synthesized path of one landmark: cells from the landmark to
// the hub, both inclusive.
type route struct {
	landmark engine.Position
	cells    []engine.Position
}

// intermediates is the number of road cells between the two endpoints
func (r route) intermediates() int {
	if len(r.cells) < 2 {
		return 0
	}
	return len(r.cells) - 2
}

// synthesizeRoute lays an L-shaped route from the landmark to the hub,
// moving vertically toward the hub row first and then horizontally. Empty
// cells get a new local road; road cells laid by earlier routes are reused
// and marked in merged.
func synthesizeRoute(g *engine.Grid, landmark, hub engine.Position, minPathLength int, merged map[engine.Position]int) (route, error) {
	r := route{landmark: landmark, cells: []engine.Position{landmark}}

	cur := landmark
	for cur != hub {
		switch {
		case cur.Row < hub.Row:
			cur = cur.Step(engine.South)
		case cur.Row > hub.Row:
			cur = cur.Step(engine.North)
		case cur.Col < hub.Col:
			cur = cur.Step(engine.East)
		default:
			cur = cur.Step(engine.West)
		}

		if cur == hub {
			r.cells = append(r.cells, cur)
			break
		}

		existing := g.At(cur)
		switch {
		case existing == nil:
			if err := g.Place(&engine.Tile{
				Row:       cur.Row,
				Col:       cur.Col,
				Shape:     engine.Straight,
				RoadType:  engine.LocalRoad,
				Rotatable: true,
			}); err != nil {
				return r, err
			}
		case existing.RoadType == engine.Landmark:
			return r, fmt.Errorf("%w: route from %v is blocked by the landmark at %v", ErrUnreachableLandmark, landmark, cur)
		default:
			merged[cur]++
		}
		r.cells = append(r.cells, cur)
	}

	if r.intermediates() < minPathLength {
		return r, fmt.Errorf("%w: route from %v has %d road tiles, need at least %d", ErrPathTooShort, landmark, r.intermediates(), minPathLength)
	}
	return r, nil
}
