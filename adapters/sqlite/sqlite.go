// Package sqlite archives finalized sessions in a local SQLite file,
// implementing core.HistoryStore.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/questlog/questlog/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	project_id      TEXT NOT NULL DEFAULT '',
	task_id         TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	started_at      INTEGER NOT NULL,
	ended_at        INTEGER NOT NULL,
	elapsed_seconds INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
`

// Store is a HistoryStore backed by a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at path and applies the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply archive schema: %w", err)
	}

	return &Store{db: db}, nil
}

// AppendSession archives one finalized session. Entries are immutable:
// appending an id twice is an error.
func (s *Store) AppendSession(session *core.Session) error {
	if session == nil || session.ID == "" {
		return core.ErrSessionNotFound
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, project_id, task_id, description, status, started_at, ended_at, elapsed_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.ProjectID,
		session.TaskID,
		session.Description,
		string(session.Status),
		session.StartedAt.Unix(),
		session.EndedAt.Unix(),
		session.ElapsedSeconds,
	)
	if err != nil {
		return fmt.Errorf("archive session %s: %w", session.ID, err)
	}
	return nil
}

// ListSessions returns archived sessions with StartedAt in [from, to),
// ordered by start time.
func (s *Store) ListSessions(from, to time.Time) ([]*core.Session, error) {
	rows, err := s.db.Query(`
		SELECT id, project_id, task_id, description, status, started_at, ended_at, elapsed_seconds
		FROM sessions
		WHERE started_at >= ? AND started_at < ?
		ORDER BY started_at`,
		from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("list archived sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*core.Session
	for rows.Next() {
		var session core.Session
		var status string
		var startedAt, endedAt int64
		if err := rows.Scan(
			&session.ID,
			&session.ProjectID,
			&session.TaskID,
			&session.Description,
			&status,
			&startedAt,
			&endedAt,
			&session.ElapsedSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan archived session: %w", err)
		}
		session.Status = core.SessionStatus(status)
		session.StartedAt = time.Unix(startedAt, 0).UTC()
		session.EndedAt = time.Unix(endedAt, 0).UTC()
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
