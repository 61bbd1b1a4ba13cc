package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/tengame/game/engine"
	"github.com/wricardo/tengame/game/leaderboard"
	"github.com/wricardo/tengame/game/render"
	"github.com/wricardo/tengame/game/session"
)

// Dependencies wires a GameService. Sessions and Standings are required;
// a nil Recorder or Renderer disables that sink.
type Dependencies struct {
	Sessions  SessionRegistry
	Standings leaderboard.Store
	Recorder  LeaderboardSink
	Renderer  Renderer
	Logger    *zap.Logger
	Now       func() time.Time
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionRegistry
	standings leaderboard.Store
	recorder  LeaderboardSink
	renderer  Renderer
	logger    *zap.Logger
	now       func() time.Time
}

type nopRenderer struct{}

func (nopRenderer) Render(session.Snapshot) {}

type nopSink struct{}

func (nopSink) Submit(leaderboard.Entry) bool { return false }

// NewGameService creates a new game service instance
func NewGameService(deps Dependencies) GameService {
	s := &gameServiceImpl{
		sessions:  deps.Sessions,
		standings: deps.Standings,
		recorder:  deps.Recorder,
		renderer:  deps.Renderer,
		logger:    deps.Logger,
		now:       deps.Now,
	}
	if s.recorder == nil {
		s.recorder = nopSink{}
	}
	if s.renderer == nil {
		s.renderer = nopRenderer{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// StartGame creates a game for the key unless one is already running
func (s *gameServiceImpl) StartGame(ctx context.Context, key session.Key, labels session.Labels) (*StartResult, error) {
	res, err := s.sessions.Create(key, labels)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	snap := res.Session.Snapshot()
	if !res.Created {
		return &StartResult{
			Created: false,
			Game:    gameInfo(snap),
			Message: render.AlreadyInProgress,
		}, nil
	}

	s.renderer.Render(snap)
	s.logger.Info("game started",
		zap.String("key", key.String()),
		zap.String("session_id", snap.ID))

	return &StartResult{
		Created: true,
		Game:    gameInfo(snap),
		Message: render.Welcome(labels.Player),
	}, nil
}

// GetGame returns the current state of a player's game
func (s *gameServiceImpl) GetGame(ctx context.Context, key session.Key) (*GameInfo, error) {
	sess, err := s.sessions.Lookup(key)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", key, err)
	}
	return gameInfo(sess.Snapshot()), nil
}

// ListGames returns every registered game
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	sessions := s.sessions.List()
	result := make([]*GameInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, gameInfo(sess.Snapshot()))
	}
	return result, nil
}

// ExitGame tears down a player's game
func (s *gameServiceImpl) ExitGame(ctx context.Context, key session.Key) error {
	if !s.sessions.Remove(key) {
		return fmt.Errorf("game %s: %w", key, session.ErrSessionNotFound)
	}
	s.logger.Info("game exited", zap.String("key", key.String()))
	return nil
}

// Move executes a single move on whatever game the key holds
func (s *gameServiceImpl) Move(ctx context.Context, key session.Key, direction string) (*MoveResult, error) {
	return s.MoveGame(ctx, key, "", direction)
}

// MoveGame executes a single move. A non-empty gameID must match the
// session the key resolves to. The leaderboard entry is submitted while the
// session is still locked so writes arrive in move order; the render is
// dispatched after the lock is released.
func (s *gameServiceImpl) MoveGame(ctx context.Context, key session.Key, gameID, direction string) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Lookup(key)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", key, err)
	}
	if gameID != "" && sess.ID != gameID {
		return nil, fmt.Errorf("game %s is not %s: %w", key, gameID, session.ErrGameMismatch)
	}

	out := sess.Move(dir, s.submit)

	if out.Mutated {
		s.renderer.Render(out.Snapshot)
	}

	s.logger.Debug("move",
		zap.String("key", key.String()),
		zap.String("direction", dir.String()),
		zap.Bool("mutated", out.Mutated),
		zap.Int("score", out.Snapshot.Score),
		zap.Int("turn", out.Snapshot.Turn),
		zap.String("state", string(out.Snapshot.State)))

	return &MoveResult{
		Moved:      out.Mutated,
		ScoreDelta: out.ScoreDelta,
		Game:       gameInfo(out.Snapshot),
		Message:    moveMessage(out),
		Events:     s.moveEvents(dir, out),
	}, nil
}

// submit runs under the session lock; the recorder logs its own drops
func (s *gameServiceImpl) submit(entry leaderboard.Entry) {
	s.recorder.Submit(entry)
}

// Leaderboard returns the standings for a server
func (s *gameServiceImpl) Leaderboard(ctx context.Context, serverID string, limit int) ([]leaderboard.Entry, error) {
	if serverID == "" {
		return nil, errors.New("server id is required")
	}
	entries, err := s.standings.Top(ctx, serverID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

func gameInfo(snap session.Snapshot) *GameInfo {
	return &GameInfo{Game: snap, Text: render.Game(snap)}
}

func moveMessage(out session.Outcome) string {
	snap := out.Snapshot
	if final := render.Final(snap.State, snap.Score, snap.Turn); final != "" {
		if out.Mutated {
			return final
		}
		return "The game is over. " + final
	}
	if !out.Mutated {
		return "Nothing moved. Try another direction."
	}
	return render.Status(snap.Score, snap.Turn)
}

func (s *gameServiceImpl) moveEvents(dir engine.Direction, out session.Outcome) []GameEvent {
	now := s.now()
	snap := out.Snapshot

	if !out.Mutated {
		if snap.State.Terminal() {
			return []GameEvent{{Type: "game_over", Message: "game already finished", Timestamp: now}}
		}
		return []GameEvent{{Type: "no_op", Message: fmt.Sprintf("nothing can move %s", dir), Timestamp: now}}
	}

	events := []GameEvent{{Type: "move", Message: fmt.Sprintf("tiles moved %s", dir), Timestamp: now}}
	if out.ScoreDelta > 0 {
		events = append(events, GameEvent{
			Type:      "merge",
			Message:   fmt.Sprintf("merges scored %d", out.ScoreDelta),
			Timestamp: now,
		})
	}
	switch snap.State {
	case session.StateWon:
		events = append(events, GameEvent{Type: "won", Message: render.Final(snap.State, snap.Score, snap.Turn), Timestamp: now})
	case session.StateLost:
		events = append(events, GameEvent{Type: "lost", Message: render.Final(snap.State, snap.Score, snap.Turn), Timestamp: now})
	}
	return events
}
