// Package persona holds the persona and agent catalogs.
//
// Built-in entries are created at process start and are read-only.
// Custom personas are end-user records kept in an injected Store, so
// the in-memory implementation can be swapped for a durable one without
// touching the registry rules.
package persona

import (
	"regexp"
	"strings"
	"time"

	"github.com/frankx-ai/frankx/pkg/config"
)

// Persona pairs a system prompt with a model/provider selection.
type Persona struct {
	// ID is the slug derived from Name.
	ID string `yaml:"id" json:"id"`

	// Name is the display name.
	Name string `yaml:"name" json:"name"`

	// SystemPrompt steers the model. Required.
	SystemPrompt string `yaml:"system_prompt" json:"systemPrompt"`

	// Model is a model catalog id, or an opaque pass-through value for
	// models the catalog does not know.
	Model string `yaml:"model,omitempty" json:"model,omitempty"`

	// Provider overrides the model's provider when set.
	Provider config.Provider `yaml:"provider,omitempty" json:"provider,omitempty"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	AvatarURL   string `yaml:"avatar_url,omitempty" json:"avatarUrl,omitempty"`

	// IsCustom marks end-user records; built-ins are read-only.
	IsCustom bool `yaml:"is_custom,omitempty" json:"isCustom"`

	// CreatedBy is an opaque user identifier for custom personas.
	CreatedBy string `yaml:"created_by,omitempty" json:"createdBy,omitempty"`

	CreatedAt time.Time `yaml:"-" json:"createdAt,omitempty"`
}

// Agent describes an autonomous agent configuration: persona-like, but
// oriented toward multi-turn task completion.
type Agent struct {
	ID           string          `yaml:"id" json:"id"`
	Name         string          `yaml:"name" json:"name"`
	Description  string          `yaml:"description,omitempty" json:"description,omitempty"`
	SystemPrompt string          `yaml:"system_prompt" json:"systemPrompt"`
	Capabilities []string        `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
	Model        string          `yaml:"model,omitempty" json:"model,omitempty"`
	Provider     config.Provider `yaml:"provider,omitempty" json:"provider,omitempty"`
	AvatarURL    string          `yaml:"avatar_url,omitempty" json:"avatarUrl,omitempty"`

	// Memory controls whether prior turns are replayed on dispatch.
	Memory bool `yaml:"memory,omitempty" json:"memory"`

	// Tools names optional tool integrations. Informational only.
	Tools []string `yaml:"tools,omitempty" json:"tools,omitempty"`

	// IsCustom marks end-user records; built-ins are read-only.
	IsCustom bool `yaml:"is_custom,omitempty" json:"isCustom"`
}

// HasCapability reports whether the agent carries the given tag.
func (a Agent) HasCapability(tag string) bool {
	for _, c := range a.Capabilities {
		if c == tag {
			return true
		}
	}
	return false
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a persona/agent id from a display name:
// "Test Bot" -> "test-bot".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
