// Package progression maps level numbers to generator parameters and runs
// the bounded retry policy with a fixed fallback level.
package progression

import (
	"fmt"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
	"github.com/wricardo/roadlink/game/rng"
	"github.com/wricardo/roadlink/logger"
)

const (
	// WaveLength is the number of levels before the escalation restarts
	WaveLength = 5
	// DefaultMaxAttempts bounds the reseeded retries per level
	DefaultMaxAttempts = 24

	minSide      = 4
	maxSide      = 9
	maxLandmarks = 4
	minPath      = 2
	maxPath      = 4
)

const (
	baseSeed   uint32 = 0x5EED
	seedSpread uint32 = 2654435761
)

// Params is what the generator needs for one level number
type Params struct {
	Level  int              `json:"level"`
	Wave   int              `json:"wave"`
	Config generator.Config `json:"config"`
}

// Outcome records how a level was obtained. Relaxed marks a level built
// from a stepped-down config.
type Outcome struct {
	Level    *engine.Level `json:"level"`
	Params   Params        `json:"params"`
	Attempts int           `json:"attempts"`
	Seeds    []uint32      `json:"seeds"`
	Failures []string      `json:"failures,omitempty"`
	Relaxed  bool          `json:"relaxed,omitempty"`
	FellBack bool          `json:"fell_back"`
}

// LevelSeed is the base seed of level n. It is a pure function of n.
func LevelSeed(n int) uint32 {
	return baseSeed ^ (uint32(n) * seedSpread)
}

// SeedFor is the seed of a given retry attempt of a base seed
func SeedFor(base uint32, attempt int) uint32 {
	return rng.SeedFor(base, attempt)
}

// ParamsForLevel resolves level n (1-based) into generator input. Inside a
// wave of five, positions 0-1 are easy, 2-3 medium and 4 hard; grid side,
// landmark count and path length climb with the position and restart each
// wave from a higher base.
func ParamsForLevel(n int) Params {
	if n < 1 {
		n = 1
	}
	idx := n - 1
	wave := idx / WaveLength
	pos := idx % WaveLength

	var d generator.Difficulty
	switch {
	case pos < 2:
		d = generator.Easy
	case pos < 4:
		d = generator.Medium
	default:
		d = generator.Hard
	}

	side := min(minSide+wave+pos/2, maxSide)
	landmarks := min(1+wave+pos/3, maxLandmarks)
	// a route needs room for its road tiles between landmark and hub
	path := min(minPath+pos/2, maxPath, max(side/2, minPath))

	return Params{
		Level: n,
		Wave:  wave,
		Config: generator.Config{
			Name:          fmt.Sprintf("level-%d", n),
			GridSize:      engine.GridSize{Rows: side, Cols: side},
			LandmarkCount: landmarks,
			Difficulty:    d,
			MinPathLength: path,
		},
	}
}

// Generate builds level n, retrying with SeedFor(LevelSeed(n), attempt) for
// attempt in [0, maxAttempts). The last quarter of the budget steps the
// landmark count and path length down toward one landmark at the minimum
// path, which always places on a grid of side 4 or more. When every attempt
// still fails the fixed fallback level is returned instead of an error.
func Generate(n, maxAttempts int) *Outcome {
	params := ParamsForLevel(n)
	return GenerateParams(params, LevelSeed(params.Level), maxAttempts)
}

// GenerateParams runs the retry policy for explicit params and base seed
func GenerateParams(params Params, base uint32, maxAttempts int) *Outcome {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	out := &Outcome{Params: params}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		seed := SeedFor(base, attempt)
		out.Attempts++
		out.Seeds = append(out.Seeds, seed)

		cfg := relaxedConfig(params.Config, attempt, maxAttempts)
		level, err := generator.Generate(cfg.WithSeed(seed))
		if err != nil {
			logger.Warning("level generation attempt failed",
				"level", params.Level, "attempt", attempt, "seed", seed,
				"landmarks", cfg.LandmarkCount, "min_path", cfg.MinPathLength, "error", err)
			out.Failures = append(out.Failures, err.Error())
			continue
		}
		out.Level = level
		out.Relaxed = cfg.LandmarkCount != params.Config.LandmarkCount ||
			cfg.MinPathLength != params.Config.MinPathLength
		if out.Relaxed {
			logger.Info("level generated from a relaxed config", "level", params.Level,
				"attempt", attempt, "landmarks", cfg.LandmarkCount, "min_path", cfg.MinPathLength)
		}
		return out
	}

	logger.Audit("falling back to the fixed level",
		"level", params.Level, "attempts", out.Attempts)
	out.Level = FallbackLevel()
	out.FellBack = true
	return out
}

// relaxedConfig is the config of one attempt. Budgets under four attempts
// never relax. Otherwise attempts in the last quarter drop landmarks and
// path length in even steps, reaching one landmark at minPath on the final
// attempt. Values already at or below those floors are kept.
func relaxedConfig(cfg generator.Config, attempt, maxAttempts int) generator.Config {
	steps := maxAttempts / 4
	start := maxAttempts - steps
	if steps == 0 || attempt < start {
		return cfg
	}
	k := attempt - start + 1

	if extra := cfg.LandmarkCount - 1; extra > 0 {
		cfg.LandmarkCount -= extra * k / steps
	}
	if extra := cfg.MinPathLength - minPath; extra > 0 {
		cfg.MinPathLength -= extra * k / steps
	}
	return cfg
}

// FallbackLevel is a hand-verified 1x4 level: a diner facing east, two
// straight roads scrambled a quarter turn off, and the turnpike.
func FallbackLevel() *engine.Level {
	return &engine.Level{
		ID:          "fallback-1x4",
		Name:        "fallback",
		Description: "Turn both roads so the diner reaches the turnpike.",
		Difficulty:  generator.Easy.String(),
		GridSize:    engine.GridSize{Rows: 1, Cols: 4},
		Tiles: []engine.Tile{
			{Row: 0, Col: 0, Shape: engine.LandmarkShape, RoadType: engine.Landmark, Rotation: 270, SolutionRotation: 270, LandmarkKind: engine.Diner},
			{Row: 0, Col: 1, Shape: engine.Straight, RoadType: engine.LocalRoad, Rotatable: true, Rotation: 0, SolutionRotation: 90},
			{Row: 0, Col: 2, Shape: engine.Straight, RoadType: engine.LocalRoad, Rotatable: true, Rotation: 0, SolutionRotation: 90},
			{Row: 0, Col: 3, Shape: engine.TurnpikeShape, RoadType: engine.Turnpike},
		},
		SolutionPaths: []engine.SolutionPath{
			{
				LandmarkID: "landmark_0",
				Path: []engine.Position{
					{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3},
				},
			},
		},
	}
}
