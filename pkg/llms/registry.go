package llms

import (
	"fmt"

	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/registry"
)

// Registry holds one client per configured provider.
type Registry struct {
	*registry.BaseRegistry[Provider]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		BaseRegistry: registry.NewBaseRegistry[Provider](),
	}
}

// NewRegistryFromConfig builds clients for every configured provider.
// Providers without an API key are still constructed; their requests
// fail at call time and the dispatch fallback engages.
func NewRegistryFromConfig(providers map[string]*config.ProviderConfig) (*Registry, error) {
	r := NewRegistry()
	for name, cfg := range providers {
		if _, err := r.CreateFromConfig(name, cfg); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// CreateFromConfig builds and registers the client for one provider.
func (r *Registry) CreateFromConfig(name string, cfg *config.ProviderConfig) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider config cannot be nil")
	}

	prov, err := config.ParseProvider(name)
	if err != nil {
		return nil, err
	}

	var client Provider
	switch prov {
	case config.ProviderOpenAI, config.ProviderOpenRouter:
		client, err = NewOpenAIProvider(prov, cfg)
	case config.ProviderAnthropic:
		client, err = NewAnthropicProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", prov)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", name, err)
	}

	if err := r.Register(name, client); err != nil {
		return nil, fmt.Errorf("failed to register %s client: %w", name, err)
	}
	return client, nil
}

// GetProvider returns the client for a provider.
func (r *Registry) GetProvider(prov config.Provider) (Provider, error) {
	client, exists := r.Get(string(prov))
	if !exists {
		return nil, fmt.Errorf("provider %q is not configured", prov)
	}
	return client, nil
}

// CloseAll closes every registered client.
func (r *Registry) CloseAll() error {
	var firstErr error
	for _, client := range r.List() {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
