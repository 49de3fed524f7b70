// Package api provides the HTTP REST API for Roadlink.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session from {level_id}, {level_number} or {generate:{...}}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=n)
//   - GET /api/sessions/unified - Several sessions in one payload (?sessionIds=a,b or ?levelId=x)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Play:
//   - GET /api/sessions/{id}/state - Current game state and connectivity report
//   - POST /api/sessions/{id}/rotate - Rotate one tile {row, col, reset?}
//   - POST /api/sessions/{id}/bulk-rotate - Rotate several tiles {rotations:[{row,col}], reset?}
//   - POST /api/sessions/{id}/reset - Restore the scrambled start
//   - GET /api/sessions/{id}/history - Rotation history (?page=&limit=&order=)
//   - GET /api/sessions/{id}/hint - Next tile to turn
//
// Levels:
//   - GET /api/levels - List hand-authored levels
//   - POST /api/levels - Save a level (?name= overrides the file name)
//   - GET /api/levels/{name} - Get one level
//   - POST /api/generate - Generate a level from a generator config without a session
//
// Other:
//   - GET /health - Liveness and version
//   - GET /ws?session={id} - WebSocket stream of state updates
//
// Errors are returned as {"error": "..."}. Missing sessions and levels are
// 404, bad input and invalid levels are 400, and rotating a completed level
// is 409. A rotation rejected for a fixed tile or an empty cell is a 200 with
// success=false and a reject_code.
//
// Every successful state change is broadcast to the session's WebSocket
// clients.
package api
