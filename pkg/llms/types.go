// Package llms implements clients for the external AI providers.
//
// The contract is deliberately small: send a system prompt plus ordered
// messages, receive text and token usage. Tool calling and streaming
// are out of scope for this surface.
package llms

import (
	"context"

	"github.com/frankx-ai/frankx/pkg/config"
)

// Message is one role-tagged message in an outbound request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-agnostic completion request. Model is the
// provider's own model name, without the catalog's provider prefix.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Response carries the assistant text and token usage.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Provider is an external AI provider client.
type Provider interface {
	// Complete sends the request and returns the assistant reply.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Name returns the provider identity.
	Name() config.Provider

	// Close releases client resources.
	Close() error
}
