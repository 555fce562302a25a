package persona

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frankx-ai/frankx/pkg/apierr"
	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/registry"
)

// Store-level sentinels, translated to apierr codes by the Service.
var (
	ErrAlreadyExists = errors.New("persona already exists")
	ErrNotExist      = errors.New("persona does not exist")
)

// CreateRequest carries the fields accepted when creating a custom
// persona. Name and SystemPrompt are required.
type CreateRequest struct {
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt"`
	Model        string `json:"model,omitempty"`
	Provider     string `json:"provider,omitempty"`
	Description  string `json:"description,omitempty"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
	IsCustom     bool   `json:"isCustom,omitempty"`
	CreatedBy    string `json:"createdBy,omitempty"`
}

// UpdateRequest carries partial-update fields. Nil pointers leave the
// existing value unchanged.
type UpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	SystemPrompt *string `json:"systemPrompt,omitempty"`
	Model        *string `json:"model,omitempty"`
	Provider     *string `json:"provider,omitempty"`
	Description  *string `json:"description,omitempty"`
	AvatarURL    *string `json:"avatarUrl,omitempty"`
}

// Service enforces the registry rules over built-in and custom
// personas, and serves the agent catalog.
type Service struct {
	builtins *registry.BaseRegistry[Persona]
	agents   *registry.BaseRegistry[Agent]
	store    Store
	now      func() time.Time
}

// NewService builds a Service over the given built-in catalogs and
// custom-persona store.
func NewService(builtins []Persona, agents []Agent, store Store) (*Service, error) {
	breg := registry.NewBaseRegistry[Persona]()
	for _, p := range builtins {
		p.IsCustom = false
		if p.ID == "" {
			p.ID = Slugify(p.Name)
		}
		if err := breg.Register(p.ID, p); err != nil {
			return nil, fmt.Errorf("built-in persona catalog: %w", err)
		}
	}

	areg := registry.NewBaseRegistry[Agent]()
	for _, a := range agents {
		if a.ID == "" {
			a.ID = Slugify(a.Name)
		}
		if err := areg.Register(a.ID, a); err != nil {
			return nil, fmt.Errorf("agent catalog: %w", err)
		}
	}

	return &Service{
		builtins: breg,
		agents:   areg,
		store:    store,
		now:      time.Now,
	}, nil
}

// List returns built-in personas first, then custom personas in
// creation order.
func (s *Service) List(ctx context.Context) ([]Persona, error) {
	out := s.builtins.List()

	custom, err := s.store.List(ctx)
	if err != nil {
		return nil, apierr.Internal("listing custom personas", err)
	}
	return append(out, custom...), nil
}

// Get returns the persona with the given id, built-in or custom.
func (s *Service) Get(ctx context.Context, id string) (Persona, error) {
	if p, ok := s.builtins.Get(id); ok {
		return p, nil
	}

	p, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Persona{}, apierr.Internal("loading persona", err)
	}
	if !ok {
		return Persona{}, apierr.NotFound("persona", id)
	}
	return p, nil
}

// IsBuiltin reports whether id names a built-in persona.
func (s *Service) IsBuiltin(id string) bool {
	_, ok := s.builtins.Get(id)
	return ok
}

// Create inserts a custom persona. The id is derived from the name.
// Colliding with a built-in id fails with Conflict unless the request
// is explicitly marked custom, in which case the custom record shadows
// nothing: the derived id gets a "-custom" suffix.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Persona, error) {
	if req.Name == "" {
		return Persona{}, apierr.Validation("name", "name is required")
	}
	if req.SystemPrompt == "" {
		return Persona{}, apierr.Validation("systemPrompt", "systemPrompt is required")
	}

	id := Slugify(req.Name)
	if id == "" {
		return Persona{}, apierr.Validation("name", "name must contain at least one letter or digit")
	}

	if s.IsBuiltin(id) {
		if !req.IsCustom {
			return Persona{}, apierr.Conflict(fmt.Sprintf("persona id %q collides with a built-in persona", id))
		}
		id = id + "-custom"
	}

	p := Persona{
		ID:           id,
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
		Description:  req.Description,
		AvatarURL:    req.AvatarURL,
		IsCustom:     true,
		CreatedBy:    req.CreatedBy,
		CreatedAt:    s.now().UTC(),
	}
	if req.Provider != "" {
		prov, err := config.ParseProvider(req.Provider)
		if err != nil {
			return Persona{}, apierr.Validation("provider", err.Error())
		}
		p.Provider = prov
	}

	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return Persona{}, apierr.Conflict(fmt.Sprintf("persona %q already exists", id))
		}
		return Persona{}, apierr.Internal("creating persona", err)
	}

	return p, nil
}

// Update merges the given fields into an existing custom persona.
// Built-ins cannot be modified.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Persona, error) {
	if s.IsBuiltin(id) {
		return Persona{}, apierr.Forbidden(fmt.Sprintf("cannot modify built-in persona %q", id))
	}

	p, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Persona{}, apierr.Internal("loading persona", err)
	}
	if !ok {
		return Persona{}, apierr.NotFound("persona", id)
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.SystemPrompt != nil {
		if *req.SystemPrompt == "" {
			return Persona{}, apierr.Validation("systemPrompt", "systemPrompt cannot be empty")
		}
		p.SystemPrompt = *req.SystemPrompt
	}
	if req.Model != nil {
		p.Model = *req.Model
	}
	if req.Provider != nil {
		prov, err := config.ParseProvider(*req.Provider)
		if err != nil {
			return Persona{}, apierr.Validation("provider", err.Error())
		}
		p.Provider = prov
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.AvatarURL != nil {
		p.AvatarURL = *req.AvatarURL
	}

	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotExist) {
			return Persona{}, apierr.NotFound("persona", id)
		}
		return Persona{}, apierr.Internal("updating persona", err)
	}

	return p, nil
}

// Delete removes a custom persona. Built-ins cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.IsBuiltin(id) {
		return apierr.Forbidden(fmt.Sprintf("cannot delete built-in persona %q", id))
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotExist) {
			return apierr.NotFound("persona", id)
		}
		return apierr.Internal("deleting persona", err)
	}
	return nil
}

// ListAgents returns the agent catalog in declared order.
func (s *Service) ListAgents() []Agent {
	return s.agents.List()
}

// GetAgent returns the agent with the given id.
func (s *Service) GetAgent(id string) (Agent, error) {
	a, ok := s.agents.Get(id)
	if !ok {
		return Agent{}, apierr.NotFound("agent", id)
	}
	return a, nil
}

// RegisterAgent adds a custom agent to the catalog. Built-in ids are
// protected by the same rules as personas.
func (s *Service) RegisterAgent(a Agent) (Agent, error) {
	if a.Name == "" {
		return Agent{}, apierr.Validation("name", "name is required")
	}
	if a.ID == "" {
		a.ID = Slugify(a.Name)
	}
	if existing, ok := s.agents.Get(a.ID); ok && !existing.IsCustom {
		return Agent{}, apierr.Conflict(fmt.Sprintf("agent id %q collides with a built-in agent", a.ID))
	}
	a.IsCustom = true
	if err := s.agents.Replace(a.ID, a); err != nil {
		return Agent{}, apierr.Internal("registering agent", err)
	}
	return a, nil
}

// RemoveAgent deletes a custom agent. Built-ins cannot be removed.
func (s *Service) RemoveAgent(id string) error {
	a, ok := s.agents.Get(id)
	if !ok {
		return apierr.NotFound("agent", id)
	}
	if !a.IsCustom {
		return apierr.Forbidden(fmt.Sprintf("cannot delete built-in agent %q", id))
	}
	if err := s.agents.Remove(id); err != nil {
		return apierr.Internal("removing agent", err)
	}
	return nil
}
