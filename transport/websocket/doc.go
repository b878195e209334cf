// Package websocket pushes live game state to browser viewers.
//
// A central Hub tracks clients per session. Clients connect with a session
// ID and receive a JSON Message whenever a call mutates that session:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// Broadcasts are queued and never block the caller; a client that cannot
// keep up is dropped. Incoming client messages are ignored.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastToSession(sessionID, state)
package websocket
