// Package models holds the static catalog of language models the
// platform can dispatch to.
//
// The catalog is loaded once at process start, either from a YAML file
// or from the compiled-in defaults, and never mutated afterwards.
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/frankx-ai/frankx/pkg/apierr"
	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/registry"
)

// Descriptor describes one language model.
type Descriptor struct {
	// ID is globally unique, in provider-namespace/model-name form.
	ID string `yaml:"id" json:"id"`

	// Name is the human display name.
	Name string `yaml:"name" json:"name"`

	// Provider that serves this model.
	Provider config.Provider `yaml:"provider" json:"provider"`

	// ContextWindow in tokens.
	ContextWindow int `yaml:"context_window" json:"contextWindow"`

	// CostPer1K is the blended cost per 1K tokens in USD.
	CostPer1K float64 `yaml:"cost_per_1k" json:"costPer1k"`

	// Tags describe capabilities (chat, reasoning, coding, cheap, ...).
	Tags []string `yaml:"tags" json:"tags"`

	// Description for humans.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// APIName returns the model name as the serving provider expects it:
// the catalog id with the provider-namespace prefix stripped.
// "openrouter/meta-llama/llama-3.1-70b-instruct" becomes
// "meta-llama/llama-3.1-70b-instruct".
func (d Descriptor) APIName() string {
	prefix := string(d.Provider) + "/"
	if len(d.ID) > len(prefix) && d.ID[:len(prefix)] == prefix {
		return d.ID[len(prefix):]
	}
	return d.ID
}

// HasTag reports whether the descriptor carries the given tag.
func (d Descriptor) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Registry is the immutable model catalog.
type Registry struct {
	reg       *registry.BaseRegistry[Descriptor]
	defaultID string
}

// catalogFile is the YAML shape of a model catalog.
type catalogFile struct {
	Default string       `yaml:"default"`
	Models  []Descriptor `yaml:"models"`
}

// NewRegistry builds a registry from the given descriptors. The first
// descriptor is the designated default unless defaultID names another.
func NewRegistry(descriptors []Descriptor, defaultID string) (*Registry, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("model catalog cannot be empty")
	}

	reg := registry.NewBaseRegistry[Descriptor]()
	for _, d := range descriptors {
		if d.ID == "" {
			return nil, fmt.Errorf("model descriptor missing id")
		}
		if d.ContextWindow <= 0 {
			return nil, fmt.Errorf("model %q: context window must be positive", d.ID)
		}
		if err := reg.Register(d.ID, d); err != nil {
			return nil, fmt.Errorf("model catalog: %w", err)
		}
	}

	if defaultID == "" {
		defaultID = descriptors[0].ID
	}
	if _, ok := reg.Get(defaultID); !ok {
		return nil, fmt.Errorf("default model %q not in catalog", defaultID)
	}

	return &Registry{reg: reg, defaultID: defaultID}, nil
}

// LoadRegistry loads the catalog from path, or the compiled-in defaults
// when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(defaultCatalog, defaultModelID)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog %s: %w", path, err)
	}

	return NewRegistry(file.Models, file.Default)
}

// ListModels returns all descriptors in catalog order.
func (r *Registry) ListModels() []Descriptor {
	return r.reg.List()
}

// GetModel returns the descriptor for id.
func (r *Registry) GetModel(id string) (Descriptor, error) {
	d, ok := r.reg.Get(id)
	if !ok {
		return Descriptor{}, apierr.NotFound("model", id)
	}
	return d, nil
}

// Default returns the designated default model.
func (r *Registry) Default() Descriptor {
	d, _ := r.reg.Get(r.defaultID)
	return d
}

// BestModelFor returns the first catalog model tagged with taskTag,
// falling back to the designated default. It never fails.
func (r *Registry) BestModelFor(taskTag string) Descriptor {
	if taskTag != "" {
		for _, d := range r.reg.List() {
			if d.HasTag(taskTag) {
				return d
			}
		}
	}
	return r.Default()
}
