package config

import (
	"fmt"
	"os"
)

// Provider identifies an upstream AI provider type.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderAnthropic  Provider = "anthropic"
)

// ParseProvider converts a string to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "openai":
		return ProviderOpenAI, nil
	case "openrouter":
		return ProviderOpenRouter, nil
	case "anthropic":
		return ProviderAnthropic, nil
	default:
		return "", fmt.Errorf("unknown provider %q (valid: openai, openrouter, anthropic)", s)
	}
}

// ProviderConfig configures one upstream AI provider.
type ProviderConfig struct {
	// Type of the provider (openai, openrouter, anthropic).
	Type Provider `yaml:"type,omitempty" json:"type,omitempty" jsonschema:"title=Type,enum=openai,enum=openrouter,enum=anthropic"`

	// APIKey for authentication. Supports ${VAR} expansion.
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"title=API Key,description=API key (use ${ENV_VAR})"`

	// BaseURL overrides the default API endpoint.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty" jsonschema:"title=Base URL"`

	// Temperature for generation.
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty" jsonschema:"title=Temperature,minimum=0,maximum=2,default=0.7"`

	// MaxTokens limits response length.
	MaxTokens int `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty" jsonschema:"title=Max Tokens,minimum=1,default=1024"`

	// Timeout in seconds for a single provider request.
	Timeout int `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"title=Timeout,default=60"`

	// MaxRetries before the dispatch fallback engages.
	MaxRetries int `yaml:"max_retries,omitempty" json:"max_retries,omitempty" jsonschema:"title=Max Retries,default=2"`

	// RetryDelay in seconds between retries.
	RetryDelay int `yaml:"retry_delay,omitempty" json:"retry_delay,omitempty" jsonschema:"title=Retry Delay,default=2"`
}

func (c *ProviderConfig) SetDefaults() {
	if c.BaseURL == "" {
		switch c.Type {
		case ProviderOpenAI:
			c.BaseURL = "https://api.openai.com/v1"
		case ProviderOpenRouter:
			c.BaseURL = "https://openrouter.ai/api/v1"
		case ProviderAnthropic:
			c.BaseURL = "https://api.anthropic.com/v1"
		}
	}
	if c.APIKey == "" {
		c.APIKey = GetProviderAPIKey(string(c.Type))
	}
	if c.Temperature == nil {
		temp := 0.7
		c.Temperature = &temp
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 2
	}
}

func (c *ProviderConfig) Validate() error {
	if _, err := ParseProvider(string(c.Type)); err != nil {
		return err
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	// A missing API key is not an error at startup: dispatch degrades to
	// the fallback path when the provider rejects the request.
	return nil
}

// GetProviderAPIKey returns the API key for a provider from the environment.
func GetProviderAPIKey(providerType string) string {
	switch providerType {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "openrouter":
		return os.Getenv("OPENROUTER_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
