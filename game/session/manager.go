package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/tengame/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidKey      = errors.New("invalid session key")
	ErrGameMismatch    = errors.New("game id does not match the active game")
)

// CreateResult reports the session for a key after Create. Created is false
// when an active game already held the key; Session is then that game.
type CreateResult struct {
	Session *Session
	Created bool
}

// Registry maps (server, player) keys to their live session
type Registry struct {
	sessions  map[Key]*Session
	mu        sync.RWMutex
	newSource func() engine.Source
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithSourceFactory sets the randomness given to each new grid
func WithSourceFactory(f func() engine.Source) Option {
	return func(r *Registry) { r.newSource = f }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithLogger sets the logger used for registry events
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions:  make(map[Key]*Session),
		newSource: engine.NewRandomSource,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a game for key unless an active one already exists. A
// finished game left under the key is replaced.
func (r *Registry) Create(key Key, labels Labels) (CreateResult, error) {
	if strings.TrimSpace(key.ServerID) == "" || strings.TrimSpace(key.PlayerID) == "" {
		return CreateResult{}, fmt.Errorf("%w: server and player are required", ErrInvalidKey)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[key]; ok {
		if !existing.State().Terminal() {
			return CreateResult{Session: existing, Created: false}, nil
		}
		r.logger.Debug("replacing finished session",
			zap.String("key", key.String()),
			zap.String("session_id", existing.ID))
	}

	sess := NewSession(uuid.NewString(), key, labels, engine.NewGrid(r.newSource()), r.now)
	r.sessions[key] = sess

	r.logger.Info("session created",
		zap.String("key", key.String()),
		zap.String("session_id", sess.ID))

	return CreateResult{Session: sess, Created: true}, nil
}

// Lookup returns the session registered under key
func (r *Registry) Lookup(key Key) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove deletes the entry for key. Removing a missing key is a no-op and
// reports false.
func (r *Registry) Remove(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[key]
	if !ok {
		return false
	}
	delete(r.sessions, key)

	r.logger.Info("session removed",
		zap.String("key", key.String()),
		zap.String("session_id", sess.ID))
	return true
}

// List returns all sessions, oldest first
func (r *Registry) List() []*Session {
	r.mu.RLock()
	result := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		result = append(result, sess)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Count returns the number of registered sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
