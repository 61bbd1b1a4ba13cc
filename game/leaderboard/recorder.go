package leaderboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultQueueSize    = 256
	DefaultWriteTimeout = 5 * time.Second
)

// RecorderOptions tunes a Recorder. Zero values fall back to the defaults.
type RecorderOptions struct {
	QueueSize    int
	WriteTimeout time.Duration
	Logger       *zap.Logger
}

// Recorder writes entries to a Store from a single background worker so
// that callers never wait on storage. Entries are written in submission
// order; callers submit while holding the game's lock so that order is the
// move order.
type Recorder struct {
	store   Store
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Entry
	done   chan struct{}
}

// NewRecorder starts the worker goroutine. Call Close to drain it.
func NewRecorder(store Store, opts RecorderOptions) *Recorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &Recorder{
		store:   store,
		logger:  opts.Logger,
		timeout: opts.WriteTimeout,
		queue:   make(chan Entry, opts.QueueSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Submit enqueues an entry without blocking. It reports false when the
// entry was dropped because the queue is full or the recorder is closed.
func (r *Recorder) Submit(entry Entry) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("leaderboard recorder closed, dropping entry",
			zap.String("server_id", entry.ServerID),
			zap.String("player_id", entry.PlayerID))
		return false
	}

	select {
	case r.queue <- entry:
		return true
	default:
		r.logger.Warn("leaderboard queue full, dropping entry",
			zap.String("server_id", entry.ServerID),
			zap.String("player_id", entry.PlayerID),
			zap.Int("score", entry.Score))
		return false
	}
}

// Close stops accepting entries and waits for queued writes to finish or
// for ctx to expire.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.queue {
		r.write(entry)
	}
}

func (r *Recorder) write(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.store.Record(ctx, entry); err != nil {
		r.logger.Error("failed to record leaderboard entry",
			zap.String("server_id", entry.ServerID),
			zap.String("player_id", entry.PlayerID),
			zap.Int("score", entry.Score),
			zap.Int("turns", entry.Turns),
			zap.Error(err))
		return
	}

	r.logger.Debug("leaderboard entry recorded",
		zap.String("server_id", entry.ServerID),
		zap.String("player_id", entry.PlayerID),
		zap.Int("score", entry.Score),
		zap.Int("turns", entry.Turns))
}
