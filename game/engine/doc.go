// Package engine implements the board for Ten, a 2048 variant that ends at
// the tenth merge level instead of the 2048 tile.
//
// The engine package implements:
//   - Sliding and merging of tiles on a 4x4 board
//   - Scoring of merges
//   - Tile spawns from an injectable random source
//   - Win and loss detection
//
// Core Types:
//
// Grid owns the board and exposes Move, which returns a MoveOutcome record
// (moved flag, score delta and Continue/Won/Lost result). The grid never
// calls out to collaborators; the caller applies score and state changes.
//
// Usage:
//
//	grid := engine.NewGrid(engine.NewRandomSource())
//
//	out := grid.Move(engine.Left)
//	if out.Moved {
//		score += out.ScoreDelta
//	}
//
// Game Rules:
//
// Each move slides every tile toward one wall. Two equal tiles that meet
// combine into one tile of the next rank, and a tile produced by a merge
// cannot merge again in the same move. Merging two rank r tiles scores
// 2^(r+2). After a move that changed the board, a rank 10 tile wins the
// game; otherwise a new tile spawns (rank 0, or rank 1 one time in ten) and
// a full board with no equal neighbours loses the game.
package engine
