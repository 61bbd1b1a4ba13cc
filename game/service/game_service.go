package service

import (
	"context"

	"github.com/wricardo/tengame/game/leaderboard"
	"github.com/wricardo/tengame/game/session"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	StartGame(ctx context.Context, key session.Key, labels session.Labels) (*StartResult, error)
	GetGame(ctx context.Context, key session.Key) (*GameInfo, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)
	ExitGame(ctx context.Context, key session.Key) error

	// Game Operations
	Move(ctx context.Context, key session.Key, direction string) (*MoveResult, error)
	MoveGame(ctx context.Context, key session.Key, gameID, direction string) (*MoveResult, error)

	// Standings
	Leaderboard(ctx context.Context, serverID string, limit int) ([]leaderboard.Entry, error)
}

// SessionRegistry defines session storage operations
type SessionRegistry interface {
	Create(key session.Key, labels session.Labels) (session.CreateResult, error)
	Lookup(key session.Key) (*session.Session, error)
	Remove(key session.Key) bool
	List() []*session.Session
}

// Renderer receives a complete snapshot once when a game starts and after
// every move that changed the board. Implementations must not block.
type Renderer interface {
	Render(snap session.Snapshot)
}

// LeaderboardSink accepts leaderboard writes without blocking
type LeaderboardSink interface {
	Submit(entry leaderboard.Entry) bool
}

// MultiRenderer fans a snapshot out to several renderers
type MultiRenderer []Renderer

func (m MultiRenderer) Render(snap session.Snapshot) {
	for _, r := range m {
		r.Render(snap)
	}
}
