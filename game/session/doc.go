// Package session provides play session management for Roadlink.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Random short session IDs
//   - Session lifecycle management and expiry
//   - File and SQLite persistence
//
// Core Types:
//
// Manager keeps live sessions in memory and writes through to an optional
// SessionPersistence. Each session owns its own engine over its own copy
// of the level, so sessions never share grid state.
//
// Session Identifiers:
//
// Generated IDs are the first eight hex characters of a random UUID. IDs
// are matched case-insensitively.
//
// Persistence:
//
// FilePersistence writes one JSON document per session. SQLitePersistence
// keeps the same document in a sessions table with indexed metadata. Both
// store the full level next to the game state, so sessions playing a
// generated level survive restarts without the level store.
//
// Usage:
//
//	store, err := session.NewSQLitePersistence("data/sessions.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", level)
package session
