// Package service provides the business logic layer for the warehouse simulator.
//
// The service package implements:
//   - Multi-session warehouse management
//   - Configuration loading by config ID, optionally enlarged per session
//   - Move processing with per-step diagnostics
//   - Bulk moves and replay of a configured instruction stream
//   - Move history pagination
//   - Prometheus metrics for moves, pushes and integrity faults
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP/WebSocket/MCP) and the
// engine. Engines are not safe for concurrent use, so every call runs under
// the service mutex. Each session owns its own engine and its own agent.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := svc.CreateSession(ctx, "sample", false)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.Move(ctx, info.ID, "left", false)
//
// Errors:
//
// Unknown sessions and configurations match ErrSessionNotFound and
// ErrConfigNotFound. A blocked move is not an error. Once an integrity
// violation halts a session's engine, moves on it fail with an error
// matching engine.ErrSimulationHalted.
package service
