// Package provider defines the config source abstraction.
//
// Providers load configuration from a source and support watching for
// changes. Only the file provider is implemented; the interface leaves
// room for remote sources.
package provider

import (
	"context"
	"fmt"
)

// Type identifies the config source type.
type Type string

const (
	TypeFile Type = "file"
)

// Provider abstracts config sources.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Type returns the provider type for logging/debugging.
	Type() Type

	// Load reads raw config bytes from the source.
	Load(ctx context.Context) ([]byte, error)

	// Watch starts watching for changes and signals via the returned
	// channel. Cancel the context to stop watching. Returns a nil
	// channel if watching is not supported.
	Watch(ctx context.Context) (<-chan struct{}, error)

	// Close releases any resources held by the provider.
	Close() error
}

// New creates a Provider for the given type and path.
func New(typ Type, path string) (Provider, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}

	switch typ {
	case TypeFile, "":
		return NewFileProvider(path)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", typ)
	}
}
