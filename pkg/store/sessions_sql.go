package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/session"
)

const createSessionsTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id VARCHAR(255) PRIMARY KEY,
    agent_id VARCHAR(255) NOT NULL,
    user_id VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_agent_user ON sessions(agent_id, user_id);
`

const createTurnsTableSQL = `
CREATE TABLE IF NOT EXISTS session_turns (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id VARCHAR(255) NOT NULL,
    sequence_num INTEGER NOT NULL,
    role VARCHAR(50) NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_turns_session ON session_turns(session_id, sequence_num);
`

const createTurnsTablePostgresSQL = `
CREATE TABLE IF NOT EXISTS session_turns (
    seq SERIAL PRIMARY KEY,
    session_id VARCHAR(255) NOT NULL,
    sequence_num BIGINT NOT NULL,
    role VARCHAR(50) NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_turns_session ON session_turns(session_id, sequence_num);
`

// SQLSessionStore persists sessions and their turn sequences. Turns
// are ordered by an explicit per-session sequence number, assigned
// inside the append transaction.
type SQLSessionStore struct {
	db *DB
}

// NewSQLSessionStore initializes the schema and returns the store.
func NewSQLSessionStore(db *DB) (*SQLSessionStore, error) {
	turnsSQL := createTurnsTableSQL
	if db.dialect == config.BackendPostgres {
		turnsSQL = createTurnsTablePostgresSQL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := db.db.ExecContext(ctx, createSessionsTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	if _, err := db.db.ExecContext(ctx, turnsSQL); err != nil {
		return nil, fmt.Errorf("failed to create session_turns table: %w", err)
	}

	return &SQLSessionStore{db: db}, nil
}

func (s *SQLSessionStore) Create(ctx context.Context, sess *session.Session) error {
	query := s.db.rebind(`
INSERT INTO sessions (id, agent_id, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`)

	_, err := s.db.db.ExecContext(ctx, query,
		sess.ID, sess.AgentID, sess.UserID, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *SQLSessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	query := s.db.rebind(`
SELECT id, agent_id, user_id, created_at, updated_at FROM sessions WHERE id = ?`)

	sess := &session.Session{}
	err := s.db.db.QueryRowContext(ctx, query, id).Scan(
		&sess.ID, &sess.AgentID, &sess.UserID, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	turns, err := s.loadTurns(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Turns = turns
	return sess, nil
}

func (s *SQLSessionStore) Find(ctx context.Context, agentID, userID string) (*session.Session, bool, error) {
	query := s.db.rebind(`
SELECT id FROM sessions WHERE agent_id = ? AND user_id = ?
ORDER BY created_at DESC LIMIT 1`)

	var id string
	err := s.db.db.QueryRowContext(ctx, query, agentID, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find session: %w", err)
	}

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

func (s *SQLSessionStore) AppendTurns(ctx context.Context, id string, turns ...session.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	exists, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return session.ErrNotExist
	}

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var start int64
	countQuery := s.db.rebind(`SELECT COALESCE(MAX(sequence_num), 0) FROM session_turns WHERE session_id = ?`)
	if err = tx.QueryRowContext(ctx, countQuery, id).Scan(&start); err != nil {
		return fmt.Errorf("failed to get sequence number: %w", err)
	}

	insertQuery := s.db.rebind(`
INSERT INTO session_turns (session_id, sequence_num, role, content, created_at)
VALUES (?, ?, ?, ?, ?)`)

	for i, turn := range turns {
		if _, err = tx.ExecContext(ctx, insertQuery,
			id, start+int64(i)+1, string(turn.Role), turn.Content, turn.Timestamp); err != nil {
			return fmt.Errorf("failed to insert turn %d: %w", i, err)
		}
	}

	updateQuery := s.db.rebind(`UPDATE sessions SET updated_at = ? WHERE id = ?`)
	if _, err = tx.ExecContext(ctx, updateQuery, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update session timestamp: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLSessionStore) Clear(ctx context.Context, id string) error {
	exists, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return session.ErrNotExist
	}

	query := s.db.rebind(`DELETE FROM session_turns WHERE session_id = ?`)
	if _, err := s.db.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to clear session turns: %w", err)
	}

	updateQuery := s.db.rebind(`UPDATE sessions SET updated_at = ? WHERE id = ?`)
	if _, err := s.db.db.ExecContext(ctx, updateQuery, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update session timestamp: %w", err)
	}
	return nil
}

func (s *SQLSessionStore) loadTurns(ctx context.Context, id string) ([]session.Turn, error) {
	query := s.db.rebind(`
SELECT role, content, created_at FROM session_turns
WHERE session_id = ? ORDER BY sequence_num ASC`)

	rows, err := s.db.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load turns: %w", err)
	}
	defer rows.Close()

	var out []session.Turn
	for rows.Next() {
		var t session.Turn
		var role string
		if err := rows.Scan(&role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", err)
		}
		t.Role = session.Role(role)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLSessionStore) exists(ctx context.Context, id string) (bool, error) {
	query := s.db.rebind(`SELECT COUNT(*) FROM sessions WHERE id = ?`)
	var n int
	if err := s.db.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return n > 0, nil
}

func (s *SQLSessionStore) Close() error {
	return s.db.Close()
}

var _ session.Store = (*SQLSessionStore)(nil)
