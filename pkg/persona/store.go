package persona

import (
	"context"
	"sync"
)

// Store persists custom personas. Implementations must preserve
// creation order in List and must be safe for concurrent use.
//
// The in-memory implementation loses records on restart; production
// deployments configure the SQL store.
type Store interface {
	// List returns custom personas in creation order.
	List(ctx context.Context) ([]Persona, error)

	// Get returns the custom persona with the given id.
	Get(ctx context.Context, id string) (Persona, bool, error)

	// Create inserts a new custom persona. The id must not exist.
	Create(ctx context.Context, p Persona) error

	// Update replaces an existing custom persona.
	Update(ctx context.Context, p Persona) error

	// Delete removes a custom persona.
	Delete(ctx context.Context, id string) error

	// Close releases store resources.
	Close() error
}

// MemoryStore is the in-memory Store implementation.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Persona
	order []string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Persona),
	}
}

func (s *MemoryStore) List(ctx context.Context) ([]Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Persona, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Persona, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	return p, ok, nil
}

func (s *MemoryStore) Create(ctx context.Context, p Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[p.ID]; exists {
		return ErrAlreadyExists
	}
	s.items[p.ID] = p
	s.order = append(s.order, p.ID)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, p Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[p.ID]; !exists {
		return ErrNotExist
	}
	s.items[p.ID] = p
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ErrNotExist
	}
	delete(s.items, id)
	for i, n := range s.order {
		if n == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
