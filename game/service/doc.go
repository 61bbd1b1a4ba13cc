// Package service provides the business logic layer for Ten.
//
// The service package implements:
//   - Starting, inspecting and exiting per-player games
//   - Move processing with fire-and-forget render and leaderboard dispatch
//   - Leaderboard standings per server
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionRegistry is the storage contract implemented by session.Registry.
// Renderer and LeaderboardSink are the two outbound sinks; both must return
// without waiting on I/O.
//
// Architecture:
//
// The service layer sits between the transports (REST, WebSocket, MCP) and
// the session package. A move locks only its own session. The leaderboard
// entry is queued before that lock is released, so concurrent moves on one
// game reach the recorder in move order; the snapshot is rendered after the
// lock is gone, so a slow viewer never delays gameplay.
//
// Usage:
//
//	registry := session.NewRegistry()
//	store := leaderboard.NewMemoryStore()
//	recorder := leaderboard.NewRecorder(store, leaderboard.RecorderOptions{})
//
//	svc := service.NewGameService(service.Dependencies{
//		Sessions:  registry,
//		Standings: store,
//		Recorder:  recorder,
//	})
//
//	key := session.Key{ServerID: "s1", PlayerID: "p1"}
//	start, err := svc.StartGame(ctx, key, session.Labels{Player: "ann"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := svc.Move(ctx, key, "left")
package service
