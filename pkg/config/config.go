// Package config defines the FrankX server configuration.
//
// Each section struct carries its own SetDefaults and Validate; the root
// Config fans out to them. Values support ${VAR} and ${VAR:-default}
// environment expansion, applied by the Loader before decoding.
package config

import (
	"fmt"

	"github.com/frankx-ai/frankx/pkg/observability"
)

// Config is the root configuration.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server,omitempty" json:"server,omitempty" jsonschema:"title=Server,description=HTTP server settings"`

	// Providers configures the upstream AI providers, keyed by name.
	Providers map[string]*ProviderConfig `yaml:"providers,omitempty" json:"providers,omitempty" jsonschema:"title=Providers,description=Upstream AI provider settings keyed by provider name"`

	// Store configures persona/session persistence.
	Store StoreConfig `yaml:"store,omitempty" json:"store,omitempty" jsonschema:"title=Store,description=Persona and session storage backend"`

	// Catalog points at the YAML catalogs for models, personas, agents
	// and resources. Empty paths fall back to the compiled-in defaults.
	Catalog CatalogConfig `yaml:"catalog,omitempty" json:"catalog,omitempty" jsonschema:"title=Catalog,description=Catalog file locations"`

	// Logging configures the slog logger.
	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" jsonschema:"title=Logging,description=Logger settings"`

	// Observability configures tracing and metrics.
	Observability *observability.Config `yaml:"observability,omitempty" json:"observability,omitempty" jsonschema:"title=Observability,description=Tracing and metrics settings"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty" json:"level,omitempty" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info"`

	// Format is "simple" or "verbose".
	Format string `yaml:"format,omitempty" json:"format,omitempty" jsonschema:"title=Format,enum=simple,enum=verbose,default=simple"`

	// File is an optional log file path (empty = stderr).
	File string `yaml:"file,omitempty" json:"file,omitempty" jsonschema:"title=File,description=Log file path"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "simple"
	}
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", c.Level)
	}
	return nil
}

// SetDefaults applies default values to all sections.
func (c *Config) SetDefaults() {
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}

	// Every known provider gets a config entry so personas can reference
	// it; API keys come from the environment when not set explicitly.
	for _, name := range []Provider{ProviderOpenAI, ProviderOpenRouter, ProviderAnthropic} {
		if _, ok := c.Providers[string(name)]; !ok {
			c.Providers[string(name)] = &ProviderConfig{Type: name}
		}
	}

	c.Server.SetDefaults()
	for name, pc := range c.Providers {
		if pc.Type == "" {
			pc.Type = Provider(name)
		}
		pc.SetDefaults()
	}
	c.Store.SetDefaults()
	c.Catalog.SetDefaults()
	c.Logging.SetDefaults()
	if c.Observability != nil {
		c.Observability.SetDefaults()
	}
}

// Validate checks all sections.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	for name, pc := range c.Providers {
		if err := pc.Validate(); err != nil {
			return fmt.Errorf("provider %q: %w", name, err)
		}
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
