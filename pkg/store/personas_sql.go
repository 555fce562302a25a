package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/persona"
)

const createPersonasTableSQL = `
CREATE TABLE IF NOT EXISTS custom_personas (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id VARCHAR(255) NOT NULL UNIQUE,
    record_json TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_personas_id ON custom_personas(id);
`

const createPersonasTablePostgresSQL = `
CREATE TABLE IF NOT EXISTS custom_personas (
    seq SERIAL PRIMARY KEY,
    id VARCHAR(255) NOT NULL UNIQUE,
    record_json TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_personas_id ON custom_personas(id);
`

// SQLPersonaStore persists custom personas as JSON records ordered by
// an autoincrementing sequence, preserving creation order in List.
type SQLPersonaStore struct {
	db *DB
}

// NewSQLPersonaStore initializes the schema and returns the store.
func NewSQLPersonaStore(db *DB) (*SQLPersonaStore, error) {
	schema := createPersonasTableSQL
	if db.dialect == config.BackendPostgres {
		schema = createPersonasTablePostgresSQL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := db.db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create personas table: %w", err)
	}

	return &SQLPersonaStore{db: db}, nil
}

func (s *SQLPersonaStore) List(ctx context.Context) ([]persona.Persona, error) {
	query := s.db.rebind(`SELECT record_json FROM custom_personas ORDER BY seq ASC`)

	rows, err := s.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	defer rows.Close()

	var out []persona.Persona
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan persona row: %w", err)
		}
		var p persona.Persona
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("failed to decode persona record: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLPersonaStore) Get(ctx context.Context, id string) (persona.Persona, bool, error) {
	query := s.db.rebind(`SELECT record_json FROM custom_personas WHERE id = ?`)

	var raw string
	err := s.db.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return persona.Persona{}, false, nil
	}
	if err != nil {
		return persona.Persona{}, false, fmt.Errorf("failed to load persona: %w", err)
	}

	var p persona.Persona
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return persona.Persona{}, false, fmt.Errorf("failed to decode persona record: %w", err)
	}
	return p, true, nil
}

func (s *SQLPersonaStore) Create(ctx context.Context, p persona.Persona) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode persona record: %w", err)
	}

	query := s.db.rebind(`INSERT INTO custom_personas (id, record_json, created_at) VALUES (?, ?, ?)`)
	if _, err := s.db.db.ExecContext(ctx, query, p.ID, string(raw), p.CreatedAt); err != nil {
		if exists, checkErr := s.exists(ctx, p.ID); checkErr == nil && exists {
			return persona.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert persona: %w", err)
	}
	return nil
}

func (s *SQLPersonaStore) Update(ctx context.Context, p persona.Persona) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode persona record: %w", err)
	}

	query := s.db.rebind(`UPDATE custom_personas SET record_json = ? WHERE id = ?`)
	res, err := s.db.db.ExecContext(ctx, query, string(raw), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update persona: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		return persona.ErrNotExist
	}
	return nil
}

func (s *SQLPersonaStore) Delete(ctx context.Context, id string) error {
	query := s.db.rebind(`DELETE FROM custom_personas WHERE id = ?`)
	res, err := s.db.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete persona: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return persona.ErrNotExist
	}
	return nil
}

func (s *SQLPersonaStore) exists(ctx context.Context, id string) (bool, error) {
	query := s.db.rebind(`SELECT COUNT(*) FROM custom_personas WHERE id = ?`)
	var n int
	if err := s.db.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLPersonaStore) Close() error {
	return s.db.Close()
}

var _ persona.Store = (*SQLPersonaStore)(nil)
