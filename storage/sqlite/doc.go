// Package sqlite provides SQLite-backed leaderboard persistence.
//
// One row is kept per (player, server). Writes delete any previous row and
// insert the new one inside a single transaction, so the newest result
// always replaces the old one.
package sqlite
