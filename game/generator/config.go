package generator

import (
	"fmt"

	"github.com/wricardo/roadlink/game/engine"
)

// Generation limits
const (
	MinDimension = 2
	MaxDimension = engine.MaxGridSize
	MaxLandmarks = 8
)

// Difficulty biases where the hub is placed
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// Difficulties lists every tier
var Difficulties = []Difficulty{Easy, Medium, Hard}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if d < Easy || d > Hard {
		return nil, fmt.Errorf("%w: unknown difficulty %d", ErrInvalidConfig, int(d))
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDifficulty parses "easy", "medium" or "hard"
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, s)
}

// Config is the generation input
type Config struct {
	Name          string          `json:"name,omitempty" yaml:"name,omitempty"`
	GridSize      engine.GridSize `json:"grid_size" yaml:"grid_size"`
	LandmarkCount int             `json:"landmark_count" yaml:"landmark_count"`
	Difficulty    Difficulty      `json:"difficulty" yaml:"difficulty"`
	MinPathLength int             `json:"min_path_length" yaml:"min_path_length"`
	Seed          *uint32         `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// WithSeed returns a copy of the config pinned to seed
func (c Config) WithSeed(seed uint32) Config {
	c.Seed = &seed
	return c
}

// Validate checks the config before any generation work is done
func (c Config) Validate() error {
	if c.GridSize.Rows < MinDimension || c.GridSize.Rows > MaxDimension {
		return fmt.Errorf("%w: rows must be between %d and %d, got %d", ErrInvalidConfig, MinDimension, MaxDimension, c.GridSize.Rows)
	}
	if c.GridSize.Cols < MinDimension || c.GridSize.Cols > MaxDimension {
		return fmt.Errorf("%w: cols must be between %d and %d, got %d", ErrInvalidConfig, MinDimension, MaxDimension, c.GridSize.Cols)
	}
	if c.LandmarkCount < 1 || c.LandmarkCount > MaxLandmarks {
		return fmt.Errorf("%w: landmark_count must be between 1 and %d, got %d", ErrInvalidConfig, MaxLandmarks, c.LandmarkCount)
	}
	if c.Difficulty < Easy || c.Difficulty > Hard {
		return fmt.Errorf("%w: unknown difficulty %d", ErrInvalidConfig, int(c.Difficulty))
	}
	if c.MinPathLength < 0 {
		return fmt.Errorf("%w: min_path_length must not be negative, got %d", ErrInvalidConfig, c.MinPathLength)
	}
	return nil
}
