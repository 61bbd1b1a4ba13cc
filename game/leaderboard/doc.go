// Package leaderboard keeps the latest score and turn count for each player
// on each server.
//
// Store is the persistence contract; MemoryStore serves tests and
// database-less runs, and storage/sqlite provides the durable store.
// Recorder sits in front of a Store and turns writes into fire-and-forget
// submissions drained by one worker goroutine.
package leaderboard
