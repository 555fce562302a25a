package config

import "fmt"

// StorageBackend identifies a storage backend type.
type StorageBackend string

const (
	BackendMemory   StorageBackend = "memory"
	BackendSQLite   StorageBackend = "sqlite"
	BackendPostgres StorageBackend = "postgres"
)

// StoreConfig configures persona and session persistence.
//
// The in-memory backend loses all custom personas and sessions on
// restart; sqlite or postgres are required for durability.
type StoreConfig struct {
	// Backend is one of memory, sqlite, postgres.
	Backend StorageBackend `yaml:"backend,omitempty" json:"backend,omitempty" jsonschema:"title=Backend,enum=memory,enum=sqlite,enum=postgres,default=memory"`

	// Path is the database file path (sqlite only).
	Path string `yaml:"path,omitempty" json:"path,omitempty" jsonschema:"title=Path,description=SQLite database file path"`

	// DSN is the connection string (postgres only). Supports ${VAR}.
	DSN string `yaml:"dsn,omitempty" json:"dsn,omitempty" jsonschema:"title=DSN,description=Postgres connection string"`

	// MaxConns caps open connections.
	MaxConns int `yaml:"max_conns,omitempty" json:"max_conns,omitempty" jsonschema:"title=Max Connections,default=10"`

	// MaxIdle caps idle connections.
	MaxIdle int `yaml:"max_idle,omitempty" json:"max_idle,omitempty" jsonschema:"title=Max Idle,default=2"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Backend == BackendSQLite && c.Path == "" {
		c.Path = "frankx.db"
	}
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MaxIdle == 0 {
		c.MaxIdle = 2
	}
}

func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.DSN == "" {
			return fmt.Errorf("dsn is required for postgres backend")
		}
	default:
		return fmt.Errorf("unsupported backend %q (supported: memory, sqlite, postgres)", c.Backend)
	}
	return nil
}

// DriverName maps the backend to its database/sql driver name.
// The go-sqlite3 driver registers as "sqlite3".
func (c *StoreConfig) DriverName() string {
	switch c.Backend {
	case BackendSQLite:
		return "sqlite3"
	case BackendPostgres:
		return "postgres"
	default:
		return ""
	}
}

// ConnectionString returns the database/sql connection string.
func (c *StoreConfig) ConnectionString() string {
	if c.Backend == BackendSQLite {
		return c.Path
	}
	return c.DSN
}
