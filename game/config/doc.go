// Package config provides the level store for Roadlink.
//
// The config package handles:
//   - Loading hand-authored levels from JSON and YAML files
//   - Record validation and a solvability proof for every loaded level
//   - Default level management
//   - Level discovery and listing
//
// Level Format:
//
// Levels live in the levels directory as .json, .yaml or .yml files using
// the same schema the generator emits: a grid size, tile records with
// their scrambled and solution rotations, and optional solution paths.
// A level is addressed by its file name without extension, so
// "starter.yaml" is loaded as "starter".
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.LoadLevel("starter")
//	defaultLevel := manager.GetDefault()
//	levels, err := manager.ListLevels()
//
// Validation:
//
// Every file goes through engine.ValidateLevel and then generator.Verify,
// so a level with a dangling opening, an unreachable landmark or an
// orphaned tile is rejected with ErrInvalidLevel before anyone plays it.
// When no starter level exists the first valid file becomes the default,
// and an empty directory falls back to the built-in 1x4 level.
package config
