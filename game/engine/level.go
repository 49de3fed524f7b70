package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidLevel = errors.New("invalid level")

// SolutionPath is the route of one landmark in the solved arrangement.
// Path holds grid coordinates from the landmark to the hub, both inclusive.
type SolutionPath struct {
	LandmarkID string     `json:"landmark_id" yaml:"landmark_id"`
	Path       []Position `json:"path" yaml:"path"`
}

// Level is the shared schema for generated and hand-authored levels
type Level struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Difficulty    string         `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Seed          *uint32        `json:"seed,omitempty" yaml:"seed,omitempty"`
	GridSize      GridSize       `json:"grid_size" yaml:"grid_size"`
	Tiles         []Tile         `json:"tiles" yaml:"tiles"`
	SolutionPaths []SolutionPath `json:"solution_paths,omitempty" yaml:"solution_paths,omitempty"`
}

// Clone returns a deep copy of the level
func (l *Level) Clone() *Level {
	c := *l
	if l.Seed != nil {
		seed := *l.Seed
		c.Seed = &seed
	}
	c.Tiles = append([]Tile(nil), l.Tiles...)
	c.SolutionPaths = make([]SolutionPath, len(l.SolutionPaths))
	for i, sp := range l.SolutionPaths {
		c.SolutionPaths[i] = SolutionPath{
			LandmarkID: sp.LandmarkID,
			Path:       append([]Position(nil), sp.Path...),
		}
	}
	return &c
}

// ValidateLevel checks the level record itself: dimensions, tile bounds,
// enum values, rotations and hub/landmark presence. Structural solvability
// is checked by the generator's verifier.
func ValidateLevel(level *Level) error {
	if level == nil {
		return fmt.Errorf("%w: level is nil", ErrInvalidLevel)
	}
	if level.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLevel)
	}

	size := level.GridSize
	if size.Rows < MinGridSize || size.Rows > MaxGridSize {
		return fmt.Errorf("%w: grid_size.rows must be between %d and %d, got %d", ErrInvalidLevel, MinGridSize, MaxGridSize, size.Rows)
	}
	if size.Cols < MinGridSize || size.Cols > MaxGridSize {
		return fmt.Errorf("%w: grid_size.cols must be between %d and %d, got %d", ErrInvalidLevel, MinGridSize, MaxGridSize, size.Cols)
	}

	seen := make(map[Position]bool, len(level.Tiles))
	hubs, landmarks := 0, 0
	for i, t := range level.Tiles {
		p := t.Pos()
		if p.Row < 0 || p.Row >= size.Rows || p.Col < 0 || p.Col >= size.Cols {
			return fmt.Errorf("%w: tile %d at %v is outside the %dx%d grid", ErrInvalidLevel, i, p, size.Rows, size.Cols)
		}
		if seen[p] {
			return fmt.Errorf("%w: more than one tile at %v", ErrInvalidLevel, p)
		}
		seen[p] = true

		if !t.Rotation.Valid() || !t.SolutionRotation.Valid() {
			return fmt.Errorf("%w: tile at %v: %w", ErrInvalidLevel, p, ErrInvalidRotation)
		}
		if t.Shape < Straight || t.Shape > LandmarkShape {
			return fmt.Errorf("%w: tile at %v: %w", ErrInvalidLevel, p, ErrUnknownShape)
		}
		if t.RoadType < House || t.RoadType > Landmark {
			return fmt.Errorf("%w: tile at %v: %w", ErrInvalidLevel, p, ErrUnknownRoadType)
		}

		if !t.Rotatable && t.Rotation != t.SolutionRotation {
			return fmt.Errorf("%w: fixed tile at %v has rotation %d but solution %d", ErrInvalidLevel, p, int(t.Rotation), int(t.SolutionRotation))
		}

		switch t.RoadType {
		case Turnpike:
			hubs++
			if t.Rotatable {
				return fmt.Errorf("%w: turnpike at %v must not be rotatable", ErrInvalidLevel, p)
			}
		case Landmark:
			landmarks++
		}
	}

	if hubs == 0 {
		return fmt.Errorf("%w: level must contain a turnpike", ErrInvalidLevel)
	}
	if landmarks == 0 {
		return fmt.Errorf("%w: level must contain at least one landmark", ErrInvalidLevel)
	}

	for _, sp := range level.SolutionPaths {
		if len(sp.Path) < 2 {
			return fmt.Errorf("%w: solution path %q must have at least two cells", ErrInvalidLevel, sp.LandmarkID)
		}
		for _, p := range sp.Path {
			if !seen[p] {
				return fmt.Errorf("%w: solution path %q references empty cell %v", ErrInvalidLevel, sp.LandmarkID, p)
			}
		}
	}

	return nil
}

// GridFromLevel builds a fresh arena from the level's tile records
func GridFromLevel(level *Level) (*Grid, error) {
	if err := ValidateLevel(level); err != nil {
		return nil, err
	}
	g := NewGrid(level.GridSize.Rows, level.GridSize.Cols)
	for i := range level.Tiles {
		t := level.Tiles[i]
		if err := g.Place(&t); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
		}
	}
	return g, nil
}

// LoadLevelFile reads a level from a .json, .yaml or .yml file
func LoadLevelFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	level, err := DecodeLevel(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse level file '%s': %w", path, err)
	}
	return level, nil
}

// DecodeLevel parses level bytes; ext selects YAML for ".yaml"/".yml" and
// JSON otherwise.
func DecodeLevel(data []byte, ext string) (*Level, error) {
	var level Level
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &level); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &level); err != nil {
			return nil, err
		}
	}
	if err := ValidateLevel(&level); err != nil {
		return nil, err
	}
	return &level, nil
}

// EncodeLevel is the inverse of DecodeLevel
func EncodeLevel(level *Level, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Marshal(level)
	default:
		return json.MarshalIndent(level, "", "  ")
	}
}
