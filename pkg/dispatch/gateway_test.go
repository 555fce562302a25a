package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankx-ai/frankx/pkg/apierr"
	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/llms"
	"github.com/frankx-ai/frankx/pkg/models"
	"github.com/frankx-ai/frankx/pkg/persona"
	"github.com/frankx-ai/frankx/pkg/session"
)

// fakeProvider records the last request and returns a fixed reply or
// error.
type fakeProvider struct {
	name    config.Provider
	text    string
	err     error
	lastReq *llms.Request
}

func (f *fakeProvider) Complete(ctx context.Context, req *llms.Request) (*llms.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llms.Response{Text: f.text, InputTokens: 10, OutputTokens: 5}, nil
}

func (f *fakeProvider) Name() config.Provider { return f.name }
func (f *fakeProvider) Close() error          { return nil }

func newTestGateway(t *testing.T, providers ...*fakeProvider) (*Gateway, map[config.Provider]*fakeProvider) {
	t.Helper()

	builtins, err := persona.LoadBuiltinPersonas("")
	require.NoError(t, err)
	agents, err := persona.LoadBuiltinAgents("")
	require.NoError(t, err)
	personas, err := persona.NewService(builtins, agents, persona.NewMemoryStore())
	require.NoError(t, err)

	modelReg, err := models.LoadRegistry("")
	require.NoError(t, err)

	llmReg := llms.NewRegistry()
	byName := make(map[config.Provider]*fakeProvider)
	for _, p := range providers {
		require.NoError(t, llmReg.Register(string(p.name), p))
		byName[p.name] = p
	}

	return NewGateway(personas, modelReg, llmReg), byName
}

func allFakeProviders(text string, err error) []*fakeProvider {
	return []*fakeProvider{
		{name: config.ProviderOpenAI, text: text, err: err},
		{name: config.ProviderOpenRouter, text: text, err: err},
		{name: config.ProviderAnthropic, text: text, err: err},
	}
}

func TestGateway_Dispatch_UnknownAgent(t *testing.T) {
	g, _ := newTestGateway(t, allFakeProviders("ok", nil)...)

	_, err := g.Dispatch(context.Background(), "no-such-agent", nil, "hello")
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestGateway_Dispatch_Success(t *testing.T) {
	g, fakes := newTestGateway(t, allFakeProviders("real answer", nil)...)

	reply, err := g.Dispatch(context.Background(), "frankbot", nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "real answer", reply.Text)
	assert.False(t, reply.Degraded)

	// frankbot runs on openai/gpt-4o-mini; the provider sees the model
	// name without the catalog prefix
	req := fakes[config.ProviderOpenAI].lastReq
	require.NotNil(t, req)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.NotEmpty(t, req.System)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "hello", req.Messages[0].Content)
}

func TestGateway_Dispatch_MemoryReplaysHistory(t *testing.T) {
	g, fakes := newTestGateway(t, allFakeProviders("ok", nil)...)

	history := []session.Turn{
		{Role: session.RoleUser, Content: "first"},
		{Role: session.RoleAssistant, Content: "first reply"},
	}
	_, err := g.Dispatch(context.Background(), "frankbot", history, "second")
	require.NoError(t, err)

	req := fakes[config.ProviderOpenAI].lastReq
	require.NotNil(t, req)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "first", req.Messages[0].Content)
	assert.Equal(t, "first reply", req.Messages[1].Content)
	assert.Equal(t, "second", req.Messages[2].Content)
}

func TestGateway_Dispatch_FallbackOnProviderError(t *testing.T) {
	g, _ := newTestGateway(t, allFakeProviders("", errors.New("quota exceeded"))...)

	reply, err := g.Dispatch(context.Background(), "frankbot", nil, "What is a center of excellence?")
	require.NoError(t, err)
	assert.True(t, reply.Degraded)
	assert.Contains(t, reply.Text, "Center of Excellence")

	// same message, same fallback text
	again, err := g.Dispatch(context.Background(), "frankbot", nil, "What is a center of excellence?")
	require.NoError(t, err)
	assert.Equal(t, reply.Text, again.Text)
}

func TestGateway_Dispatch_FallbackOnMissingProvider(t *testing.T) {
	// no providers registered at all
	g, _ := newTestGateway(t)

	reply, err := g.Dispatch(context.Background(), "frankbot", nil, "hello")
	require.NoError(t, err)
	assert.True(t, reply.Degraded)
	assert.Equal(t, fallbackDefault, reply.Text)
}

func TestGateway_DispatchPersona(t *testing.T) {
	g, fakes := newTestGateway(t, allFakeProviders("persona answer", nil)...)

	reply, err := g.DispatchPersona(context.Background(), "FrankBot", "hello", "User is on the pricing page")
	require.NoError(t, err)
	assert.Equal(t, "persona answer", reply.Text)
	assert.False(t, reply.Degraded)

	req := fakes[config.ProviderOpenAI].lastReq
	require.NotNil(t, req)
	assert.Contains(t, req.System, "Context:")
	assert.Contains(t, req.System, "pricing page")
}

func TestGateway_DispatchPersona_Unknown(t *testing.T) {
	g, _ := newTestGateway(t, allFakeProviders("ok", nil)...)

	_, err := g.DispatchPersona(context.Background(), "No Such Character", "hello", "")
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestFallbackResponse(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "center of excellence",
			message: "How do I set up a Center of Excellence?",
			want:    fallbackRules[0].response,
		},
		{
			name:    "maturity",
			message: "What maturity stage are we at?",
			want:    fallbackRules[1].response,
		},
		{
			name:    "getting started",
			message: "I'm not sure where do I start with AI",
			want:    fallbackRules[2].response,
		},
		{
			name:    "generic",
			message: "Tell me a joke",
			want:    fallbackDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fallbackResponse(tt.message))
			// deterministic on repeat
			assert.Equal(t, tt.want, fallbackResponse(tt.message))
		})
	}
}
