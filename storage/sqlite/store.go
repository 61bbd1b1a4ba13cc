package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/tengame/game/leaderboard"
	"github.com/wricardo/tengame/storage/sqlite/migrations"
	"github.com/wricardo/tengame/storage/sqlitemigrate"
)

const timeFormat = time.RFC3339Nano

// Store is a SQLite-backed leaderboard.Store
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (or creates) the database at path and applies migrations
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record replaces the entry for (server, player) in one transaction.
// RecordedAt is always assigned from the store clock.
func (s *Store) Record(ctx context.Context, entry leaderboard.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(entry.PlayerID) == "" || strings.TrimSpace(entry.ServerID) == "" {
		return errors.New("player id and server id are required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin leaderboard write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM leaderboard WHERE player_id = ? AND server_id = ?`,
		entry.PlayerID, entry.ServerID,
	); err != nil {
		return fmt.Errorf("delete leaderboard entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO leaderboard (player_id, server_id, player_label, server_label, score, turns, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.PlayerID, entry.ServerID, entry.PlayerLabel, entry.ServerLabel,
		entry.Score, entry.Turns, s.now().UTC().Format(timeFormat),
	); err != nil {
		return fmt.Errorf("insert leaderboard entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit leaderboard write: %w", err)
	}
	return nil
}

// Get returns the entry for (server, player)
func (s *Store) Get(ctx context.Context, serverID, playerID string) (leaderboard.Entry, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT player_id, server_id, player_label, server_label, score, turns, recorded_at
		 FROM leaderboard WHERE player_id = ? AND server_id = ?`,
		playerID, serverID,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return leaderboard.Entry{}, leaderboard.ErrNotFound
	}
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("get leaderboard entry: %w", err)
	}
	return entry, nil
}

// Top returns the best entries on a server by score, then fewest turns
func (s *Store) Top(ctx context.Context, serverID string, limit int) ([]leaderboard.Entry, error) {
	if limit <= 0 {
		limit = leaderboard.DefaultLimit
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT player_id, server_id, player_label, server_label, score, turns, recorded_at
		 FROM leaderboard WHERE server_id = ?
		 ORDER BY score DESC, turns ASC, recorded_at ASC
		 LIMIT ?`,
		serverID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var result []leaderboard.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return result, nil
}

// Servers lists every server with at least one entry
func (s *Store) Servers(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT DISTINCT server_id FROM leaderboard ORDER BY server_id`)
	if err != nil {
		return nil, fmt.Errorf("query servers: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan server: %w", err)
		}
		result = append(result, id)
	}
	return result, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (leaderboard.Entry, error) {
	var (
		e          leaderboard.Entry
		recordedAt string
	)
	if err := row.Scan(&e.PlayerID, &e.ServerID, &e.PlayerLabel, &e.ServerLabel, &e.Score, &e.Turns, &recordedAt); err != nil {
		return leaderboard.Entry{}, err
	}
	t, err := time.Parse(timeFormat, recordedAt)
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	e.RecordedAt = t
	return e, nil
}

var _ leaderboard.Store = (*Store)(nil)
