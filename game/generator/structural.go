package generator

import (
	"fmt"

	"github.com/wricardo/roadlink/game/engine"
)

// danglingDefects lists every solved opening that does not lead into a
// neighbor opening back. Turnpike gates facing nothing are closed toll
// gates and are skipped.
func danglingDefects(g *engine.Grid) []Defect {
	var defects []Defect
	for _, t := range g.Tiles() {
		if t.RoadType == engine.Turnpike {
			continue
		}
		open := t.SolvedOpenings()
		for _, d := range engine.Directions {
			if !open.Has(d) {
				continue
			}
			nb := g.Neighbor(t.Pos(), d)
			switch {
			case nb == nil && !g.InBounds(t.Pos().Step(d)):
				defects = append(defects, Defect{Position: t.Pos(), Direction: d, Reason: "opens off the grid"})
			case nb == nil:
				defects = append(defects, Defect{Position: t.Pos(), Direction: d, Reason: "opens into an empty cell"})
			case !nb.SolvedOpenings().Has(d.Opposite()):
				defects = append(defects, Defect{Position: t.Pos(), Direction: d, Reason: fmt.Sprintf("%s at %v does not open back", nb.Shape, nb.Pos())})
			}
		}
	}
	return defects
}

// checkSolvable runs both win rules against the solution rotations
func checkSolvable(g *engine.Grid) error {
	graph := engine.BuildGraph(g, engine.SolvedView)

	for _, lm := range g.TilesOfType(engine.Landmark) {
		if !graph.ReachesType(lm.Pos(), engine.Turnpike) {
			return fmt.Errorf("%w: %s at %v", ErrUnreachableLandmark, landmarkName(lm), lm.Pos())
		}
	}

	report := engine.Evaluate(g, engine.SolvedView)
	if !report.AllTilesReachable {
		return fmt.Errorf("%w: %d tile(s) starting at %v", ErrOrphanedTile, len(report.Unreached), report.Unreached[0])
	}
	return nil
}

func verifyGrid(g *engine.Grid) error {
	if defects := danglingDefects(g); len(defects) > 0 {
		return &DanglingOpeningError{Defects: defects}
	}
	return checkSolvable(g)
}

// Verify proves a level dangling-free and solvable under its solution
// rotations. Generated and hand-authored levels go through the same check.
func Verify(level *engine.Level) error {
	g, err := engine.GridFromLevel(level)
	if err != nil {
		return err
	}
	return verifyGrid(g)
}

func landmarkName(t *engine.Tile) string {
	if t.LandmarkKind != "" {
		return string(t.LandmarkKind)
	}
	return "landmark"
}
