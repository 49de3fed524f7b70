// Package websocket pushes live session state to UI clients.
//
// A central Hub tracks clients per session. Clients connect with
// ?session=<id>; every state change in that session (a rotation, a bulk
// rotation, a reset) is broadcast as a JSON Message carrying the full
// GameState, including the connectivity report and the unreached tiles used
// for highlighting. Completed states are sent with the level_complete event.
//
// Clients only listen. Messages they send are read and discarded to keep the
// connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(sessionID, state)
package websocket
