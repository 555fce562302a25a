// Package store provides durable persistence for custom personas and
// conversation sessions over database/sql, with sqlite and postgres
// backends. The memory backend short-circuits to the in-memory
// implementations owned by the persona and session packages.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/persona"
	"github.com/frankx-ai/frankx/pkg/session"
)

// DB wraps a sql.DB with its dialect so query builders can pick the
// right placeholder style.
type DB struct {
	db      *sql.DB
	dialect config.StorageBackend
}

// Open connects to the configured backend and applies pool settings.
// It fails fast on an unreachable database rather than at first query.
func Open(cfg config.StoreConfig) (*DB, error) {
	driver := cfg.DriverName()
	if driver == "" {
		return nil, fmt.Errorf("backend %q has no SQL driver", cfg.Backend)
	}

	db, err := sql.Open(driver, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Backend, err)
	}

	return &DB{db: db, dialect: cfg.Backend}, nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// rebind rewrites ? placeholders to $1..$n for postgres.
func (d *DB) rebind(query string) string {
	if d.dialect != config.BackendPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Stores bundles the persona and session stores behind one connection
// pool. SQL backends share the pool to avoid sqlite lock contention;
// the memory backend carries no pool at all.
type Stores struct {
	Personas persona.Store
	Sessions session.Store

	db *DB
}

// NewStores opens the configured backend once and builds both stores
// over it.
func NewStores(cfg config.StoreConfig) (*Stores, error) {
	if cfg.Backend == config.BackendMemory {
		return &Stores{
			Personas: persona.NewMemoryStore(),
			Sessions: session.NewMemoryStore(),
		}, nil
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	personas, err := NewSQLPersonaStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	sessions, err := NewSQLSessionStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Stores{Personas: personas, Sessions: sessions, db: db}, nil
}

// Close releases the shared connection pool, if any.
func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewPersonaStore returns the persona store for the configured backend.
func NewPersonaStore(cfg config.StoreConfig) (persona.Store, error) {
	if cfg.Backend == config.BackendMemory {
		return persona.NewMemoryStore(), nil
	}
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewSQLPersonaStore(db)
}

// NewSessionStore returns the session store for the configured backend.
func NewSessionStore(cfg config.StoreConfig) (session.Store, error) {
	if cfg.Backend == config.BackendMemory {
		return session.NewMemoryStore(), nil
	}
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewSQLSessionStore(db)
}
