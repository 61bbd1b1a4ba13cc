package session

import (
	"net/url"
	"sync"
	"time"

	"github.com/wricardo/tengame/game/engine"
	"github.com/wricardo/tengame/game/leaderboard"
)

// Key identifies the single game a player may have on a server
type Key struct {
	ServerID string `json:"server_id"`
	PlayerID string `json:"player_id"`
}

// String is "server/player" with both parts path-escaped, so a slash
// inside an id cannot make two keys collide.
func (k Key) String() string {
	return url.PathEscape(k.ServerID) + "/" + url.PathEscape(k.PlayerID)
}

// Labels are display names carried into leaderboard writes
type Labels struct {
	Player string `json:"player,omitempty"`
	Server string `json:"server,omitempty"`
}

// State is the lifecycle stage of a game
type State string

const (
	StateActive State = "active"
	StateWon    State = "won"
	StateLost   State = "lost"
)

// Terminal reports whether no further move can change the game
func (s State) Terminal() bool {
	return s == StateWon || s == StateLost
}

// Session is one game: a grid plus score, turn and state. Moves are
// serialised by the session's own lock.
type Session struct {
	ID        string
	Key       Key
	Labels    Labels
	CreatedAt time.Time

	mu        sync.Mutex
	grid      *engine.Grid
	score     int
	turn      int
	state     State
	updatedAt time.Time
	now       func() time.Time
}

// Snapshot is a complete copy of a session's visible state
type Snapshot struct {
	ID        string       `json:"id"`
	Key       Key          `json:"key"`
	Labels    Labels       `json:"labels"`
	Grid      engine.Cells `json:"grid"`
	Score     int          `json:"score"`
	Turn      int          `json:"turn"`
	State     State        `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Outcome is what a call to Move produced. Leaderboard is set whenever the
// grid changed; renders are dispatched by the caller after the lock is gone.
type Outcome struct {
	Snapshot    Snapshot
	Mutated     bool
	ScoreDelta  int
	Result      engine.Result
	Leaderboard *leaderboard.Entry
}

// NewSession wraps grid in a fresh active session at turn 1
func NewSession(id string, key Key, labels Labels, grid *engine.Grid, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	created := now()
	return &Session{
		ID:        id,
		Key:       key,
		Labels:    labels,
		CreatedAt: created,
		grid:      grid,
		turn:      1,
		state:     StateActive,
		updatedAt: created,
		now:       now,
	}
}

// Move applies dir to the grid. Terminal sessions and moves that change
// nothing return the current snapshot with Mutated false.
//
// Each commit func is called with the leaderboard entry of a mutating move
// before the lock is released, so entries reach it in move order. Commit
// funcs must not block.
func (s *Session) Move(dir engine.Direction, commit ...func(leaderboard.Entry)) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return Outcome{Snapshot: s.snapshotLocked()}
	}

	res := s.grid.Move(dir)
	if !res.Moved {
		return Outcome{Snapshot: s.snapshotLocked()}
	}

	s.score += res.ScoreDelta
	s.turn++
	switch res.Result {
	case engine.Won:
		s.state = StateWon
	case engine.Lost:
		s.state = StateLost
	}
	s.updatedAt = s.now()

	entry := &leaderboard.Entry{
		PlayerID:    s.Key.PlayerID,
		ServerID:    s.Key.ServerID,
		PlayerLabel: s.Labels.Player,
		ServerLabel: s.Labels.Server,
		Score:       s.score,
		Turns:       s.turn,
	}
	for _, fn := range commit {
		fn(*entry)
	}

	return Outcome{
		Snapshot:    s.snapshotLocked(),
		Mutated:     true,
		ScoreDelta:  res.ScoreDelta,
		Result:      res.Result,
		Leaderboard: entry,
	}
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current lifecycle stage
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        s.ID,
		Key:       s.Key,
		Labels:    s.Labels,
		Grid:      s.grid.Cells(),
		Score:     s.score,
		Turn:      s.turn,
		State:     s.state,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}
