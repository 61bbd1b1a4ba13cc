// Package session provides game sessions and the registry that owns them.
//
// The session package implements:
//   - Score, turn and won/lost bookkeeping around one engine.Grid
//   - Move outcomes that carry a snapshot and a leaderboard write
//   - A registry keyed by (server, player) with at most one live game per key
//
// Core Types:
//
// Session wraps a grid. Move returns an Outcome record; the caller hands its
// Snapshot to renderers and its Leaderboard entry to the recorder after the
// session lock is released. Registry stores sessions by Key, a plain value,
// so callers never hold live handles across requests.
//
// Concurrency:
//
// Each session serialises its own moves. The registry map is guarded by an
// RWMutex and Create is an atomic check-and-insert. Different sessions move
// in parallel.
//
// Usage:
//
//	registry := session.NewRegistry()
//
//	res, err := registry.Create(session.Key{ServerID: "s1", PlayerID: "p1"}, session.Labels{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !res.Created {
//		// an active game is already running for this player
//	}
//
//	out := res.Session.Move(engine.Left)
//
// Cleanup:
//
// Sessions live until Remove is called. Nothing expires on its own.
package session
