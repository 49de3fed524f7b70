// Package service provides the business logic layer for Roadlink.
//
// The service package implements:
//   - Multi-session play management
//   - Level selection from the level store, the progression or an inline
//     generator config
//   - Rotation processing with per-rotation and batch results
//   - Rotation history and hints
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager handles session creation, retrieval, and persistence.
// LevelManager loads and stores hand-authored levels.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the game engine. Each session owns its own engine instance, so
// rotations in one session never touch another session's grid.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr, _ := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, levelMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{LevelNumber: 1})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Rotate(ctx, info.ID, 0, 1, false)
//
// Errors:
//
// Missing sessions and levels wrap ErrSessionNotFound and ErrLevelNotFound,
// bad input wraps ErrInvalidRequest, and rotating a finished level wraps
// engine.ErrLevelComplete. Rotations rejected by the rotation contract (a
// fixed tile, an empty cell) are reported in the result, not as errors.
package service
