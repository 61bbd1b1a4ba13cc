package leaderboard

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrNotFound = errors.New("leaderboard entry not found")

// DefaultLimit is used when a standings query does not name a limit
const DefaultLimit = 10

// Entry is the latest recorded result for one player on one server
type Entry struct {
	PlayerID    string    `json:"player_id"`
	ServerID    string    `json:"server_id"`
	PlayerLabel string    `json:"player_label"`
	ServerLabel string    `json:"server_label"`
	Score       int       `json:"score"`
	Turns       int       `json:"turns"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Store persists leaderboard entries keyed by (server, player).
// Record replaces any previous entry for the same key.
type Store interface {
	Record(ctx context.Context, entry Entry) error
	Get(ctx context.Context, serverID, playerID string) (Entry, error)
	Top(ctx context.Context, serverID string, limit int) ([]Entry, error)
}

// SortStandings orders entries by score descending, then fewer turns, then
// earliest recording
func SortStandings(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Turns != b.Turns {
			return a.Turns < b.Turns
		}
		return a.RecordedAt.Before(b.RecordedAt)
	})
}

type entryKey struct {
	serverID string
	playerID string
}

// MemoryStore is an in-process Store used when no database is configured
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[entryKey]Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[entryKey]Entry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Record(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry.RecordedAt = m.now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entryKey{entry.ServerID, entry.PlayerID}] = entry
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, serverID, playerID string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[entryKey{serverID, playerID}]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (m *MemoryStore) Top(ctx context.Context, serverID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	m.mu.RLock()
	result := make([]Entry, 0, len(m.entries))
	for k, e := range m.entries {
		if k.serverID == serverID {
			result = append(result, e)
		}
	}
	m.mu.RUnlock()

	SortStandings(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
