package engine

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

var ErrLevelComplete = errors.New("level already complete")

// View selects which rotation the graph is derived from
type View int

const (
	// CurrentView uses the player-visible rotation
	CurrentView View = iota
	// SolvedView uses the generator's solution rotation
	SolvedView
)

func (v View) openings(t *Tile) Openings {
	switch v {
	case CurrentView:
		return t.Openings()
	case SolvedView:
		return t.SolvedOpenings()
	}
	panic(fmt.Sprintf("engine: unknown view %d", int(v)))
}

// ConnectivityGraph is the directed adjacency derived from one set of
// rotations. It is rebuilt from scratch and never patched.
type ConnectivityGraph struct {
	grid *Grid
	out  [][]int
	in   [][]int
}

// BuildGraph derives edges for every tile. An edge a->b exists iff a opens
// toward b, b opens back toward a, and b's road type is allowed from a.
func BuildGraph(g *Grid, view View) *ConnectivityGraph {
	return BuildGraphWith(g, view, DefaultCompatibility)
}

// BuildGraphWith is BuildGraph over a custom road hierarchy
func BuildGraphWith(g *Grid, view View, compat Compatibility) *ConnectivityGraph {
	n := g.rows * g.cols
	cg := &ConnectivityGraph{
		grid: g,
		out:  make([][]int, n),
		in:   make([][]int, n),
	}

	for idx, t := range g.cells {
		if t == nil {
			continue
		}
		open := view.openings(t)
		for _, d := range Directions {
			if !open.Has(d) {
				continue
			}
			np := t.Pos().Step(d)
			nb := g.At(np)
			if nb == nil {
				continue
			}
			if !view.openings(nb).Has(d.Opposite()) {
				continue
			}
			if !compat.Allows(t.RoadType, nb.RoadType) {
				continue
			}
			nidx := g.Index(np)
			cg.out[idx] = append(cg.out[idx], nidx)
			cg.in[nidx] = append(cg.in[nidx], idx)
		}
	}

	return cg
}

// Connected reports whether the edge from a to b exists
func (cg *ConnectivityGraph) Connected(a, b Position) bool {
	if !cg.grid.InBounds(a) || !cg.grid.InBounds(b) {
		return false
	}
	target := cg.grid.Index(b)
	for _, idx := range cg.out[cg.grid.Index(a)] {
		if idx == target {
			return true
		}
	}
	return false
}

// Neighbors returns the positions a currently connects to
func (cg *ConnectivityGraph) Neighbors(p Position) []Position {
	if !cg.grid.InBounds(p) {
		return nil
	}
	edges := cg.out[cg.grid.Index(p)]
	out := make([]Position, 0, len(edges))
	for _, idx := range edges {
		out = append(out, cg.grid.PositionOf(idx))
	}
	return out
}

// EdgeCount returns the number of directed edges
func (cg *ConnectivityGraph) EdgeCount() int {
	n := 0
	for _, e := range cg.out {
		n += len(e)
	}
	return n
}

// ReachesType runs a forward BFS from start and reports whether any tile of
// road type target is reached. The frontier is an explicit queue.
func (cg *ConnectivityGraph) ReachesType(start Position, target RoadType) bool {
	if cg.grid.At(start) == nil {
		return false
	}
	visited := mapset.New[int]()
	queue := []int{cg.grid.Index(start)}
	visited.Put(queue[0])

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if cg.grid.cells[current].RoadType == target {
			return true
		}
		for _, next := range cg.out[current] {
			if !visited.Has(next) {
				visited.Put(next)
				queue = append(queue, next)
			}
		}
	}
	return false
}

// ReverseReachable walks edges backwards from every seed and returns the set
// of arena indices that can reach one of the seeds.
func (cg *ConnectivityGraph) ReverseReachable(seeds []Position) mapset.Set[int] {
	visited := mapset.New[int]()
	queue := make([]int, 0, len(seeds))
	for _, s := range seeds {
		if cg.grid.At(s) == nil {
			continue
		}
		idx := cg.grid.Index(s)
		if !visited.Has(idx) {
			visited.Put(idx)
			queue = append(queue, idx)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, prev := range cg.in[current] {
			if !visited.Has(prev) {
				visited.Put(prev)
				queue = append(queue, prev)
			}
		}
	}
	return visited
}

// Report is the outcome of one validation pass
type Report struct {
	LandmarksConnected []bool     `json:"landmarks_connected"`
	AllTilesReachable  bool       `json:"all_tiles_reachable"`
	IsComplete         bool       `json:"is_complete"`
	Unreached          []Position `json:"unreached,omitempty"`
}

// ConnectedCount returns how many landmarks reach the hub
func (r Report) ConnectedCount() int {
	n := 0
	for _, ok := range r.LandmarksConnected {
		if ok {
			n++
		}
	}
	return n
}

// Evaluate rebuilds the graph for the given view and applies both win rules:
// every landmark reaches a turnpike, and every tile is reachable backwards
// from the turnpikes.
func Evaluate(g *Grid, view View) Report {
	return evaluateGraph(g, BuildGraph(g, view))
}

func evaluateGraph(g *Grid, cg *ConnectivityGraph) Report {
	landmarks := g.TilesOfType(Landmark)
	report := Report{
		LandmarksConnected: make([]bool, len(landmarks)),
	}

	allConnected := true
	for i, lm := range landmarks {
		report.LandmarksConnected[i] = cg.ReachesType(lm.Pos(), Turnpike)
		if !report.LandmarksConnected[i] {
			allConnected = false
		}
	}

	var hubs []Position
	for _, t := range g.TilesOfType(Turnpike) {
		hubs = append(hubs, t.Pos())
	}
	reached := cg.ReverseReachable(hubs)
	for idx, t := range g.cells {
		if t != nil && !reached.Has(idx) {
			report.Unreached = append(report.Unreached, t.Pos())
		}
	}
	report.AllTilesReachable = len(report.Unreached) == 0

	report.IsComplete = allConnected && report.AllTilesReachable && len(hubs) > 0
	return report
}

// Phase is the state of the runtime connectivity engine
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRebuildGraph
	PhaseValidate
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRebuildGraph:
		return "rebuild_graph"
	case PhaseValidate:
		return "validate"
	case PhaseComplete:
		return "complete"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhaseRebuildGraph, PhaseValidate, PhaseComplete} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(text))
}

// RotationEvent is fired by the input collaborator when a player rotates a tile
type RotationEvent struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pos returns the event's target position
func (e RotationEvent) Pos() Position {
	return Position{Row: e.Row, Col: e.Col}
}

// Connectivity is the runtime engine owning one grid during play.
// Every rotation is one synchronous mutation followed by one full rebuild.
type Connectivity struct {
	grid   *Grid
	phase  Phase
	graph  *ConnectivityGraph
	report Report
}

// NewConnectivity takes ownership of g and evaluates its starting state
func NewConnectivity(g *Grid) *Connectivity {
	c := &Connectivity{grid: g}
	c.rebuildAndValidate()
	return c
}

// Phase returns the current state
func (c *Connectivity) Phase() Phase {
	return c.phase
}

// Report returns the latest report
func (c *Connectivity) Report() Report {
	return c.report
}

// Graph returns the latest graph
func (c *Connectivity) Graph() *ConnectivityGraph {
	return c.graph
}

// Grid returns the owned grid
func (c *Connectivity) Grid() *Grid {
	return c.grid
}

// HandleRotation applies a tile_rotated event. Invalid targets leave the
// engine Idle and return the contract error from the rotation API.
func (c *Connectivity) HandleRotation(ev RotationEvent) (Report, error) {
	if c.phase == PhaseComplete {
		return c.report, ErrLevelComplete
	}
	if _, err := c.grid.Rotate(ev.Pos()); err != nil {
		return c.report, err
	}
	c.rebuildAndValidate()
	return c.report, nil
}

// Validate re-derives the report without mutating the grid
func (c *Connectivity) Validate() Report {
	if c.phase == PhaseComplete {
		return c.report
	}
	c.rebuildAndValidate()
	return c.report
}

func (c *Connectivity) rebuildAndValidate() {
	c.phase = PhaseRebuildGraph
	c.graph = BuildGraph(c.grid, CurrentView)

	c.phase = PhaseValidate
	c.report = evaluateGraph(c.grid, c.graph)

	if c.report.IsComplete {
		c.phase = PhaseComplete
	} else {
		c.phase = PhaseIdle
	}
}
