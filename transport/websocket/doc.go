// Package websocket provides WebSocket transport for the warehouse simulator.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every move, bulk move, replay and reset
//   - Fault events when a session halts on an integrity violation
//
// Architecture:
//
// A central Hub owns every connection. Registration, broadcasts and client
// count queries are all processed on the Run goroutine, so callers on HTTP
// handler goroutines never touch the client map. Each client has a write
// pump and a read pump; the read pump only keeps the connection alive.
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//	{"session_id": "a1b2", "event": "fault", "data": "..."}
//
// Clients choose a session with the ?session= query parameter.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Cancelling ctx stops the hub and closes every client.
package websocket
