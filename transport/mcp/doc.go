// Package mcp provides the Model Context Protocol server for Roadlink.
//
// The server is a thin client of the REST API: every tool call becomes an
// HTTP request against the running game server, and the JSON answer is
// rendered as text for the agent.
//
// Tools:
//   - create_session: Start a session from a level id, a level number or generator fields
//   - list_sessions, get_session: Inspect sessions
//   - game_state: Grid, landmark connectivity and unreached tiles
//   - rotate: Turn one tile 90° clockwise
//   - bulk_rotate: Turn several tiles, stopping once the level is complete
//   - reset_game: Restore the scrambled start
//   - rotation_history: Paginated rotation log
//   - hint: Next tile that is not in its solved orientation
//   - list_levels, generate_level: Hand-authored and generated levels
//   - game_instructions, describe_tile: Rules and per-tile diagnostics
//
// Transport modes:
//   - Stdio via ServeStdio for local MCP clients
//   - Streamable HTTP via HTTPHandler, mounted by the server at /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
