package service

import (
	"time"

	"github.com/wricardo/tengame/game/session"
)

// GameInfo is a game snapshot plus its chat rendering
type GameInfo struct {
	Game session.Snapshot `json:"game"`
	Text string           `json:"text"`
}

// StartResult reports the outcome of StartGame. When Created is false the
// player already had an active game, and Game describes that game.
type StartResult struct {
	Created bool      `json:"created"`
	Game    *GameInfo `json:"game"`
	Message string    `json:"message"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Moved      bool        `json:"moved"`
	ScoreDelta int         `json:"score_delta"`
	Game       *GameInfo   `json:"game"`
	Message    string      `json:"message"`
	Events     []GameEvent `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "move", "merge", "no_op", "game_over", "won", "lost"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
