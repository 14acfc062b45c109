// Package api provides HTTP REST API handlers for the warehouse simulator.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session {config_id, enlarged}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Sessions grouped for a multi-session view
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Simulation:
//   - GET /api/sessions/{id}/state - Current state
//   - GET /api/sessions/{id}/render - Rendered rows (?format=text for plain text)
//   - GET /api/sessions/{id}/cell?x=&y= - Describe one cell
//   - POST /api/sessions/{id}/move - {direction, reset}
//   - POST /api/sessions/{id}/bulk-move - {moves: [...]} or {instructions: "<^v>"}
//   - POST /api/sessions/{id}/replay - Reset and run the configured instructions
//   - POST /api/sessions/{id}/reset - Restore the initial warehouse
//   - GET /api/sessions/{id}/history - Paginated history (?page=&limit=&order=)
//
// Configuration:
//   - GET /api/configs - List configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration
//
// Operations:
//   - GET /health - Liveness
//   - GET /metrics - Prometheus metrics
//   - GET /ws?session={id} - WebSocket state updates
//
// Error Handling:
//
// Errors are returned as JSON with the HTTP status code repeated in the body:
//
//	{"error": "session \"zz99\": session not found", "code": 404}
//
// Unknown sessions and configs map to 404, malformed directions, instruction
// streams and configs to 400, and a halted simulation to 409.
//
// Enriched Responses:
//
// Move returns a step {idx, dir, from, to, pushed, objects} on success and
// attempted_to {x, y, tile_char, tile_type, out_of_bounds} when blocked.
// Bulk move and replay return requested_moves, moves_executed, moves_blocked,
// pushes, start/end positions and scores, stop_reason_code
// (halted|truncated|cancelled), possible_moves and local_view_3x3.
package api
