// Package mcp exposes the warehouse simulator to MCP clients.
//
// The Client is a thin proxy: every tool call becomes a REST request against a
// running API server and the JSON response is formatted as plain text for the
// model. No simulation state lives in this package.
//
// MCP Tools:
//   - create_session: Create a session, optionally enlarged
//   - list_sessions / get_session: Inspect sessions
//   - warehouse_state: Grid, agent position, objects and GPS score
//   - move: Single move with an intent explanation
//   - bulk_move: A list of moves or an instruction stream such as "<^^>"
//   - replay: Reset and run the configured instruction stream
//   - reset_warehouse: Restore the initial layout
//   - move_history: Paginated history plus the current segment
//   - list_configs: Available layouts
//   - warehouse_instructions: Rules and symbols
//   - describe_cell: What occupies one cell
//
// API errors are surfaced as tool errors (IsError set) rather than protocol
// errors, so the model can read the message and recover.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
