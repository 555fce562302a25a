package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotExist is returned by stores for unknown session ids.
var ErrNotExist = errors.New("session does not exist")

// Store persists sessions. Implementations must be safe for concurrent
// use; turn-ordering across concurrent writers is the Service's job.
type Store interface {
	// Create inserts a new session. The id must not exist.
	Create(ctx context.Context, s *Session) error

	// Get returns a copy of the session with the given id.
	Get(ctx context.Context, id string) (*Session, error)

	// Find returns the most recent session for an agent+user pair.
	Find(ctx context.Context, agentID, userID string) (*Session, bool, error)

	// AppendTurns appends turns to an existing session atomically.
	AppendTurns(ctx context.Context, id string, turns ...Turn) error

	// Clear empties the turn sequence. Identity and agent/user
	// association persist.
	Clear(ctx context.Context, id string) error

	// Close releases store resources.
	Close() error
}

// MemoryStore is the in-memory Store implementation. Sessions are lost
// on restart; production deployments configure the SQL store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return errors.New("session id already exists")
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotExist
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Find(ctx context.Context, agentID, userID string) (*Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *Session
	for _, s := range m.sessions {
		if s.AgentID != agentID || s.UserID != userID {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, false, nil
	}
	return best.Clone(), true, nil
}

func (m *MemoryStore) AppendTurns(ctx context.Context, id string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotExist
	}
	s.Turns = append(s.Turns, turns...)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotExist
	}
	s.Turns = s.Turns[:0]
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
