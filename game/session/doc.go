// Package session keeps running warehouse simulations in memory.
//
// A session pairs an ID with one engine.GameEngine, and therefore with one
// warehouse and one agent. Independent sessions run side by side, each
// guarded by its own engine lock. The Manager only guards the table of
// sessions.
//
// IDs are 4 hex characters when generated. Callers may also choose their own
// (up to 64 characters, usable as a URL path segment). Lookups ignore case,
// while the ID keeps the spelling it was created with.
//
//	manager := session.NewManager()
//	sess, err := manager.Create("", cfg)
//	...
//	sess, err = manager.Get("A1B2")
//
// Nothing is written to disk. A session ends when it is deleted or when
// CleanupExpiredSessions finds it idle for longer than the given age.
package session
