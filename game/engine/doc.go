// Package engine provides the core logic of the warehouse push simulator.
//
// The engine package implements:
//   - A bounded grid of tagged cells (empty, obstacle, object, agent)
//   - An arena of rectangular movable objects addressed by handles
//   - The two-phase push resolver (read-only collect, then commit)
//   - The enlarged geometry, where every column is doubled
//   - Configuration loading and validation (JSON or YAML)
//
// Core Types:
//
// Grid stores cells; an object cell holds only a Handle into the
// ObjectTable, which owns the object records. Warehouse bundles a grid, its
// object table and the single Agent. TryMove, Resolve and Probe implement
// movement. GameEngine wraps a Warehouse with history, messages and the
// halt-on-integrity-fault contract used by the service layer.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("sample")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	moved, err := gameEngine.Move("up")
//	state := gameEngine.GetState()
//
// Movement Rules:
//
// A move first walks every object the agent would push, recursively through
// each object's leading edge. If any of them would hit an obstacle or the
// grid boundary nothing changes. Otherwise every collected object moves one
// step, then the agent moves. An object reached by several paths moves once.
//
// Broken invariants (the agent found ahead of itself, a dangling handle, a
// write outside the grid) panic with *IntegrityError inside the resolver.
// GameEngine recovers them once and halts; later calls return
// ErrSimulationHalted.
package engine
