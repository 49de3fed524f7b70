package engine

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrCellOccupied = errors.New("cell already occupied")
	ErrNoTile       = errors.New("no tile at position")
	ErrNotRotatable = errors.New("tile is not rotatable")
)

// GridSize holds grid dimensions
type GridSize struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// Grid is a fixed-size arena of optional tiles addressed by (row, col).
// Neighbors are found by arithmetic, tiles never reference each other.
type Grid struct {
	rows  int
	cols  int
	cells []*Tile
}

// NewGrid creates an empty grid
func NewGrid(rows, cols int) *Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]*Tile, rows*cols),
	}
}

// Rows returns the number of rows
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns
func (g *Grid) Cols() int { return g.cols }

// Size returns the grid dimensions
func (g *Grid) Size() GridSize {
	return GridSize{Rows: g.rows, Cols: g.cols}
}

// InBounds reports whether p lies inside the grid
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// Index converts a position to its arena index
func (g *Grid) Index(p Position) int {
	return p.Row*g.cols + p.Col
}

// PositionOf converts an arena index back to a position
func (g *Grid) PositionOf(idx int) Position {
	return Position{Row: idx / g.cols, Col: idx % g.cols}
}

// At returns the tile at p, or nil if the cell is empty or out of bounds
func (g *Grid) At(p Position) *Tile {
	if !g.InBounds(p) {
		return nil
	}
	return g.cells[g.Index(p)]
}

// Occupied reports whether p holds a tile
func (g *Grid) Occupied(p Position) bool {
	return g.At(p) != nil
}

// Place puts a tile into its cell
func (g *Grid) Place(t *Tile) error {
	p := t.Pos()
	if !g.InBounds(p) {
		return fmt.Errorf("%w: %v in %dx%d grid", ErrOutOfBounds, p, g.rows, g.cols)
	}
	idx := g.Index(p)
	if g.cells[idx] != nil {
		return fmt.Errorf("%w: %v", ErrCellOccupied, p)
	}
	g.cells[idx] = t
	return nil
}

// Neighbor returns the tile adjacent to p in direction d
func (g *Grid) Neighbor(p Position, d Direction) *Tile {
	return g.At(p.Step(d))
}

// OccupiedNeighbors returns the directions around p that hold a tile
func (g *Grid) OccupiedNeighbors(p Position) Openings {
	var o Openings
	for _, d := range Directions {
		if g.Neighbor(p, d) != nil {
			o |= OpeningsOf(d)
		}
	}
	return o
}

// Tiles returns every placed tile in row-major order
func (g *Grid) Tiles() []*Tile {
	tiles := make([]*Tile, 0, len(g.cells))
	for _, t := range g.cells {
		if t != nil {
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// TilesOfType returns tiles with the given road type in row-major order
func (g *Grid) TilesOfType(rt RoadType) []*Tile {
	var tiles []*Tile
	for _, t := range g.cells {
		if t != nil && t.RoadType == rt {
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// Count returns the number of placed tiles
func (g *Grid) Count() int {
	n := 0
	for _, t := range g.cells {
		if t != nil {
			n++
		}
	}
	return n
}

// Rotate turns the tile at p one quarter clockwise. This is the only way
// player input mutates a grid.
func (g *Grid) Rotate(p Position) (*Tile, error) {
	t, err := g.rotatableAt(p)
	if err != nil {
		return nil, err
	}
	t.Rotation = t.Rotation.Next()
	return t, nil
}

// SetRotation sets the visible rotation of the tile at p
func (g *Grid) SetRotation(p Position, r Rotation) error {
	if !r.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidRotation, int(r))
	}
	t, err := g.rotatableAt(p)
	if err != nil {
		return err
	}
	t.Rotation = r
	return nil
}

func (g *Grid) rotatableAt(p Position) (*Tile, error) {
	if !g.InBounds(p) {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	t := g.At(p)
	if t == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTile, p)
	}
	if !t.Rotatable {
		return nil, fmt.Errorf("%w: %s at %v", ErrNotRotatable, t.Shape, p)
	}
	return t, nil
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.rows, g.cols)
	for i, t := range g.cells {
		if t != nil {
			copied := *t
			c.cells[i] = &copied
		}
	}
	return c
}

// Snapshot returns copies of every tile in row-major order
func (g *Grid) Snapshot() []Tile {
	tiles := make([]Tile, 0, len(g.cells))
	for _, t := range g.cells {
		if t != nil {
			tiles = append(tiles, *t)
		}
	}
	return tiles
}
