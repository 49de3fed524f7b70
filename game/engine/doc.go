// Package engine provides the puzzle model and runtime rules for Roadlink.
//
// A level is a grid of road tiles. Each tile exposes openings on some of
// its four sides and a player rotates tiles a quarter turn at a time. Two
// neighboring tiles connect when both open toward each other and the road
// hierarchy allows the acting tile's type to feed the neighbor's type.
//
// Core Types:
//
// Grid is a flat row-major arena of optional tiles. ConnectivityGraph is the
// directed adjacency derived from either the visible or the solved
// rotations. Connectivity is the runtime state machine that rebuilds the
// graph after each rotation and reports whether the level is complete.
// GameEngine wraps one level for a play session with history, reset and
// hints.
//
// Usage:
//
//	level, err := engine.LoadLevelFile("levels/starter.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(level)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Rotate the tile at row 0, column 1
//	_, err = gameEngine.Rotate(0, 1)
//	state := gameEngine.GetState()
//
// Win Rules:
//
// A level is complete when every landmark reaches a turnpike by following
// edges forward, and every tile can reach a turnpike, so no road is left
// disconnected from the hub.
package engine
