// Package store persists usage statistics in SQLite: all-time per-word
// counts and per-run session summaries.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store wraps a sql.DB with tracker-specific helpers.
type Store struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{DB: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory database (useful for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	s := &Store{DB: db, path: ":memory:"}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS word_usage (
    word TEXT PRIMARY KEY,
    is_emote INTEGER NOT NULL DEFAULT 0,
    count INTEGER NOT NULL DEFAULT 0,
    last_seen DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_word_usage_count ON word_usage(count);

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    channel TEXT NOT NULL,
    started_at DATETIME NOT NULL,
    ended_at DATETIME,
    messages INTEGER NOT NULL DEFAULT 0,
    top_word TEXT NOT NULL DEFAULT '',
    top_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
`

// WordCount is one row of the usage leaderboard.
type WordCount struct {
	Word     string
	IsEmote  bool
	Count    int
	LastSeen time.Time
}

// RecordUsage increments the all-time count for word.
func (s *Store) RecordUsage(word string, isEmote bool) error {
	_, err := s.Exec(`
		INSERT INTO word_usage (word, is_emote, count, last_seen)
		VALUES (?, ?, 1, datetime('now'))
		ON CONFLICT(word) DO UPDATE SET
			count = count + 1,
			is_emote = excluded.is_emote,
			last_seen = excluded.last_seen`,
		word, isEmote)
	if err != nil {
		return fmt.Errorf("recording usage for %q: %w", word, err)
	}
	return nil
}

// TopWords returns the n most used words, highest count first.
func (s *Store) TopWords(n int) ([]WordCount, error) {
	rows, err := s.Query(`
		SELECT word, is_emote, count, last_seen
		FROM word_usage
		ORDER BY count DESC, word ASC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying top words: %w", err)
	}
	defer rows.Close()

	var out []WordCount
	for rows.Next() {
		var wc WordCount
		if err := rows.Scan(&wc.Word, &wc.IsEmote, &wc.Count, &wc.LastSeen); err != nil {
			return nil, err
		}
		out = append(out, wc)
	}
	return out, rows.Err()
}

// Session is one tracker run.
type Session struct {
	ID        string
	Channel   string
	StartedAt time.Time
	EndedAt   *time.Time
	Messages  int
	TopWord   string
	TopCount  int
}

// BeginSession records the start of a tracker run and returns its id.
func (s *Store) BeginSession(channel string) (string, error) {
	id := uuid.NewString()
	_, err := s.Exec(`
		INSERT INTO sessions (id, channel, started_at)
		VALUES (?, ?, datetime('now'))`,
		id, channel)
	if err != nil {
		return "", fmt.Errorf("beginning session: %w", err)
	}
	return id, nil
}

// EndSession closes a session with its final counters.
func (s *Store) EndSession(id string, messages int, topWord string, topCount int) error {
	_, err := s.Exec(`
		UPDATE sessions
		SET ended_at = datetime('now'), messages = ?, top_word = ?, top_count = ?
		WHERE id = ?`,
		messages, topWord, topCount, id)
	if err != nil {
		return fmt.Errorf("ending session %s: %w", id, err)
	}
	return nil
}

// LatestSession returns the most recently started session, or nil when
// none exist.
func (s *Store) LatestSession() (*Session, error) {
	row := s.QueryRow(`
		SELECT id, channel, started_at, ended_at, messages, top_word, top_count
		FROM sessions
		ORDER BY started_at DESC, id DESC
		LIMIT 1`)

	var sess Session
	var ended sql.NullTime
	err := row.Scan(&sess.ID, &sess.Channel, &sess.StartedAt, &ended, &sess.Messages, &sess.TopWord, &sess.TopCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest session: %w", err)
	}
	if ended.Valid {
		sess.EndedAt = &ended.Time
	}
	return &sess, nil
}
