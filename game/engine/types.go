package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidRotation  = errors.New("rotation must be one of 0, 90, 180, 270")
	ErrUnknownDirection = errors.New("unknown direction")
	ErrUnknownRoadType  = errors.New("unknown road type")
	ErrUnknownShape     = errors.New("unknown tile shape")
)

// Validation constants
const (
	MinGridSize      = 1
	MaxGridSize      = 12
	MaxBulkRotations = 50
)

// Direction is one side of a tile
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists every direction in clockwise order
var Directions = [4]Direction{North, East, South, West}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Valid reports whether d is one of the four cardinal directions
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

// Opposite returns the direction facing back at d
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Rotate turns d clockwise by the given rotation
func (d Direction) Rotate(r Rotation) Direction {
	return (d + Direction(r.Steps())) % 4
}

// Delta returns the row and column offsets of the neighbor in direction d
func (d Direction) Delta() (dRow, dCol int) {
	switch d {
	case North:
		return -1, 0
	case East:
		return 0, 1
	case South:
		return 1, 0
	case West:
		return 0, -1
	}
	panic(fmt.Sprintf("engine: delta of invalid %v", d))
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDirection, int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection parses a direction name, accepting single letter forms
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "north", "n", "N", "North":
		return North, nil
	case "east", "e", "E", "East":
		return East, nil
	case "south", "s", "S", "South":
		return South, nil
	case "west", "w", "W", "West":
		return West, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// RoadType is the hierarchy tag of a tile
type RoadType int

const (
	House RoadType = iota
	LocalRoad
	ArterialRoad
	Highway
	Turnpike
	Landmark
)

// RoadTypes lists every road type
var RoadTypes = []RoadType{House, LocalRoad, ArterialRoad, Highway, Turnpike, Landmark}

func (rt RoadType) String() string {
	switch rt {
	case House:
		return "house"
	case LocalRoad:
		return "local_road"
	case ArterialRoad:
		return "arterial_road"
	case Highway:
		return "highway"
	case Turnpike:
		return "turnpike"
	case Landmark:
		return "landmark"
	}
	return fmt.Sprintf("road_type(%d)", int(rt))
}

func (rt RoadType) MarshalText() ([]byte, error) {
	if rt < House || rt > Landmark {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRoadType, int(rt))
	}
	return []byte(rt.String()), nil
}

func (rt *RoadType) UnmarshalText(text []byte) error {
	parsed, err := ParseRoadType(string(text))
	if err != nil {
		return err
	}
	*rt = parsed
	return nil
}

// ParseRoadType parses a road type name
func ParseRoadType(s string) (RoadType, error) {
	for _, rt := range RoadTypes {
		if rt.String() == s {
			return rt, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRoadType, s)
}

// TileShape determines the base openings of a tile before rotation
type TileShape int

const (
	Straight TileShape = iota
	Corner
	TJunction
	Crossroads
	TurnpikeShape
	LandmarkShape
)

// TileShapes lists every tile shape
var TileShapes = []TileShape{Straight, Corner, TJunction, Crossroads, TurnpikeShape, LandmarkShape}

func (s TileShape) String() string {
	switch s {
	case Straight:
		return "straight"
	case Corner:
		return "corner"
	case TJunction:
		return "t_junction"
	case Crossroads:
		return "crossroads"
	case TurnpikeShape:
		return "turnpike"
	case LandmarkShape:
		return "landmark"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

func (s TileShape) MarshalText() ([]byte, error) {
	if s < Straight || s > LandmarkShape {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShape, int(s))
	}
	return []byte(s.String()), nil
}

func (s *TileShape) UnmarshalText(text []byte) error {
	parsed, err := ParseTileShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseTileShape parses a tile shape name
func ParseTileShape(s string) (TileShape, error) {
	for _, shape := range TileShapes {
		if shape.String() == s {
			return shape, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

// Fixed reports whether the shape belongs to a fixed (non-road) tile
func (s TileShape) Fixed() bool {
	switch s {
	case TurnpikeShape, LandmarkShape:
		return true
	case Straight, Corner, TJunction, Crossroads:
		return false
	}
	return false
}

// BaseOpenings returns the canonical openings of the shape at 0 degrees
func (s TileShape) BaseOpenings() Openings {
	switch s {
	case Straight:
		return OpeningsOf(North, South)
	case Corner:
		return OpeningsOf(North, East)
	case TJunction:
		return OpeningsOf(North, East, South)
	case Crossroads, TurnpikeShape:
		return OpeningsOf(North, East, South, West)
	case LandmarkShape:
		return OpeningsOf(South)
	}
	return 0
}

// Rotation is a clockwise rotation in degrees
type Rotation int

// Rotations lists every legal rotation in ascending order
var Rotations = [4]Rotation{0, 90, 180, 270}

// Valid reports whether r is a multiple of 90 in [0, 270]
func (r Rotation) Valid() bool {
	return r == 0 || r == 90 || r == 180 || r == 270
}

// Steps returns the number of quarter turns
func (r Rotation) Steps() int {
	return int(r) / 90
}

// Next returns the rotation after one more clockwise quarter turn
func (r Rotation) Next() Rotation {
	return (r + 90) % 360
}

// TurnsTo returns how many clockwise quarter turns lead from r to target
func (r Rotation) TurnsTo(target Rotation) int {
	return ((target.Steps()-r.Steps())%4 + 4) % 4
}

// ParseRotation validates a raw degree value
func ParseRotation(degrees int) (Rotation, error) {
	r := Rotation(degrees)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRotation, degrees)
	}
	return r, nil
}

func (r *Rotation) UnmarshalJSON(data []byte) error {
	degrees, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRotation, string(data))
	}
	parsed, err := ParseRotation(degrees)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Openings is a bit set of directions
type Openings uint8

// OpeningsOf builds a set from directions
func OpeningsOf(dirs ...Direction) Openings {
	var o Openings
	for _, d := range dirs {
		o |= 1 << uint(d)
	}
	return o
}

// Has reports whether d is open
func (o Openings) Has(d Direction) bool {
	return o&(1<<uint(d)) != 0
}

// Count returns the number of open sides
func (o Openings) Count() int {
	n := 0
	for _, d := range Directions {
		if o.Has(d) {
			n++
		}
	}
	return n
}

// Rotate turns every opening clockwise by r
func (o Openings) Rotate(r Rotation) Openings {
	var out Openings
	for _, d := range Directions {
		if o.Has(d) {
			out |= OpeningsOf(d.Rotate(r))
		}
	}
	return out
}

// List returns the open directions in clockwise order starting at North
func (o Openings) List() []Direction {
	dirs := make([]Direction, 0, 4)
	for _, d := range Directions {
		if o.Has(d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Position addresses a cell
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Step returns the neighboring position in direction d
func (p Position) Step(d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// LandmarkKind names what a landmark tile represents
type LandmarkKind string

const (
	Diner       LandmarkKind = "diner"
	Museum      LandmarkKind = "museum"
	Stadium     LandmarkKind = "stadium"
	Lighthouse  LandmarkKind = "lighthouse"
	Observatory LandmarkKind = "observatory"
	Library     LandmarkKind = "library"
	Aquarium    LandmarkKind = "aquarium"
	Ballpark    LandmarkKind = "ballpark"
)

// LandmarkKinds is the order in which generated landmarks are named
var LandmarkKinds = []LandmarkKind{Diner, Museum, Stadium, Lighthouse, Observatory, Library, Aquarium, Ballpark}

// Tile is a single placed tile
type Tile struct {
	Row              int          `json:"row" yaml:"row"`
	Col              int          `json:"col" yaml:"col"`
	Shape            TileShape    `json:"shape" yaml:"shape"`
	RoadType         RoadType     `json:"road_type" yaml:"road_type"`
	Rotatable        bool         `json:"rotatable" yaml:"rotatable"`
	Rotation         Rotation     `json:"rotation" yaml:"rotation"`
	SolutionRotation Rotation     `json:"solution_rotation" yaml:"solution_rotation"`
	LandmarkKind     LandmarkKind `json:"landmark_kind,omitempty" yaml:"landmark_kind,omitempty"`
	Note             string       `json:"note,omitempty" yaml:"note,omitempty"`
}

// Pos returns the tile's grid position
func (t *Tile) Pos() Position {
	return Position{Row: t.Row, Col: t.Col}
}

// Openings returns the openings under the player-visible rotation
func (t *Tile) Openings() Openings {
	return t.Shape.BaseOpenings().Rotate(t.Rotation)
}

// SolvedOpenings returns the openings under the solution rotation
func (t *Tile) SolvedOpenings() Openings {
	return t.Shape.BaseOpenings().Rotate(t.SolutionRotation)
}

// IsSolved reports whether the visible rotation produces the solved openings.
// Symmetric shapes can be solved at more than one rotation.
func (t *Tile) IsSolved() bool {
	return t.Openings() == t.SolvedOpenings()
}
