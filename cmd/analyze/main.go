// Command analyze prints quick, human-readable heuristics about level files.
// It summarizes dimensions, tile mix, how scrambled the start is, and how far
// each landmark's solution route strays from the straight-line distance to
// the turnpike.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wricardo/roadlink/game/engine"
)

// LandmarkRoute describes one landmark and its recorded route
type LandmarkRoute struct {
	Position   engine.Position
	Kind       engine.LandmarkKind
	Distance   int // Manhattan distance to the nearest turnpike
	PathLength int // steps along the solution path, 0 when unrecorded
}

// Detour is how many steps the route adds over the straight-line distance
func (r LandmarkRoute) Detour() int {
	if r.PathLength == 0 {
		return 0
	}
	return r.PathLength - r.Distance
}

// Analysis is the summary of one level
type Analysis struct {
	Name             string
	GridSize         engine.GridSize
	Tiles            int
	Shapes           map[engine.TileShape]int
	RoadTypes        map[engine.RoadType]int
	Rotatable        int
	Unsolved         int
	MinimumRotations int
	StartConnected   int
	StartUnreached   int
	Routes           []LandmarkRoute
}

// FillRatio is the share of cells holding a tile
func (a Analysis) FillRatio() float64 {
	cells := a.GridSize.Rows * a.GridSize.Cols
	if cells == 0 {
		return 0
	}
	return float64(a.Tiles) / float64(cells)
}

func main() {
	dirs := os.Args[1:]
	if len(dirs) == 0 {
		dirs = []string{"levels"}
	}

	for _, dir := range dirs {
		files, err := filepath.Glob(filepath.Join(dir, "*"))
		if err != nil {
			fmt.Printf("Error listing %s: %v\n", dir, err)
			continue
		}
		for _, file := range files {
			switch filepath.Ext(file) {
			case ".json", ".yaml", ".yml":
				fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
				analyzeFile(os.Stdout, file)
			}
		}
	}
}

func analyzeFile(w io.Writer, path string) {
	level, err := engine.LoadLevelFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error loading level: %v\n", err)
		return
	}

	a, err := analyzeLevel(level)
	if err != nil {
		fmt.Fprintf(w, "Error analyzing level: %v\n", err)
		return
	}
	printAnalysis(w, a)
}

func analyzeLevel(level *engine.Level) (Analysis, error) {
	g, err := engine.GridFromLevel(level)
	if err != nil {
		return Analysis{}, err
	}

	a := Analysis{
		Name:             level.Name,
		GridSize:         level.GridSize,
		Tiles:            len(level.Tiles),
		Shapes:           make(map[engine.TileShape]int),
		RoadTypes:        make(map[engine.RoadType]int),
		Rotatable:        engine.CountRotatable(level.Tiles),
		Unsolved:         engine.CountUnsolved(level.Tiles),
		MinimumRotations: engine.MinimumRotations(level.Tiles),
	}
	for _, s := range engine.TileShapes {
		if n := engine.CountShape(level.Tiles, s); n > 0 {
			a.Shapes[s] = n
		}
	}
	for _, rt := range engine.RoadTypes {
		if n := engine.CountRoadType(level.Tiles, rt); n > 0 {
			a.RoadTypes[rt] = n
		}
	}

	report := engine.Evaluate(g, engine.CurrentView)
	a.StartConnected = report.ConnectedCount()
	a.StartUnreached = len(report.Unreached)

	pathLengths := make(map[engine.Position]int)
	for _, sp := range level.SolutionPaths {
		if len(sp.Path) > 1 {
			pathLengths[sp.Path[0]] = len(sp.Path) - 1
		}
	}

	hubs := g.TilesOfType(engine.Turnpike)
	for _, lm := range g.TilesOfType(engine.Landmark) {
		route := LandmarkRoute{
			Position:   lm.Pos(),
			Kind:       lm.LandmarkKind,
			Distance:   -1,
			PathLength: pathLengths[lm.Pos()],
		}
		for _, hub := range hubs {
			d := engine.ManhattanDistance(lm.Pos(), hub.Pos())
			if route.Distance < 0 || d < route.Distance {
				route.Distance = d
			}
		}
		a.Routes = append(a.Routes, route)
	}

	return a, nil
}

func printAnalysis(w io.Writer, a Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d (%d tiles, %.0f%% filled)\n", a.GridSize.Rows, a.GridSize.Cols, a.Tiles, a.FillRatio()*100)

	fmt.Fprintf(w, "Shapes:")
	for _, s := range engine.TileShapes {
		if n := a.Shapes[s]; n > 0 {
			fmt.Fprintf(w, " %s=%d", s, n)
		}
	}
	fmt.Fprintf(w, "\nRoad types:")
	for _, rt := range engine.RoadTypes {
		if n := a.RoadTypes[rt]; n > 0 {
			fmt.Fprintf(w, " %s=%d", rt, n)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Rotatable: %d, scrambled: %d, minimum rotations: %d\n", a.Rotatable, a.Unsolved, a.MinimumRotations)
	fmt.Fprintf(w, "At start: %d/%d landmarks connected, %d tiles unreached\n", a.StartConnected, len(a.Routes), a.StartUnreached)

	if a.Rotatable > 0 && a.Unsolved == 0 {
		fmt.Fprintf(w, "⚠️  WARNING: every rotatable tile starts solved\n")
	}

	for _, r := range a.Routes {
		kind := string(r.Kind)
		if kind == "" {
			kind = "landmark"
		}
		if r.PathLength == 0 {
			fmt.Fprintf(w, "   %s at %v: %d from turnpike, no recorded route\n", kind, r.Position, r.Distance)
			continue
		}
		fmt.Fprintf(w, "   %s at %v: %d from turnpike, route %d (detour %d)\n", kind, r.Position, r.Distance, r.PathLength, r.Detour())
	}
}
