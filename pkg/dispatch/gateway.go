// Package dispatch turns a session's state plus a new user message
// into a model request and interprets the result.
//
// Provider failures never reach the end user as errors. The gateway
// substitutes a deterministic canned response and tags the reply as
// degraded so callers and telemetry can tell real answers from
// fallback ones. Unknown agent ids do fail: fabricating a reply for an
// agent that does not exist would hide a caller bug.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/frankx-ai/frankx/pkg/apierr"
	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/llms"
	"github.com/frankx-ai/frankx/pkg/models"
	"github.com/frankx-ai/frankx/pkg/observability"
	"github.com/frankx-ai/frankx/pkg/persona"
	"github.com/frankx-ai/frankx/pkg/session"
	"github.com/frankx-ai/frankx/pkg/tokens"
)

// replyReserve is the context-window share held back for the model's
// reply when trimming history.
const replyReserve = 1024

// Gateway resolves agents/personas to prompts and models, calls the
// configured provider, and degrades to canned responses on failure.
type Gateway struct {
	personas  *persona.Service
	models    *models.Registry
	providers *llms.Registry
	logger    *slog.Logger
}

// NewGateway builds a Gateway.
func NewGateway(personas *persona.Service, modelReg *models.Registry, providers *llms.Registry) *Gateway {
	return &Gateway{
		personas:  personas,
		models:    modelReg,
		providers: providers,
		logger:    slog.Default().With("component", "dispatch"),
	}
}

// Dispatch resolves the agent, replays history when the agent has
// memory enabled, and calls the provider. It implements
// session.Dispatcher.
func (g *Gateway) Dispatch(ctx context.Context, agentID string, history []session.Turn, message string) (session.Reply, error) {
	agent, err := g.personas.GetAgent(agentID)
	if err != nil {
		return session.Reply{}, err
	}

	var msgs []llms.Message
	if agent.Memory {
		msgs = turnsToMessages(history)
	}

	return g.complete(ctx, agentID, agent.SystemPrompt, agent.Model, agent.Provider, msgs, message), nil
}

// DispatchPersona is the single-turn path: resolve a persona by name
// or id, send one message with optional caller-supplied context, no
// session bookkeeping.
func (g *Gateway) DispatchPersona(ctx context.Context, characterName, message, extraContext string) (session.Reply, error) {
	p, err := g.personas.Get(ctx, persona.Slugify(characterName))
	if err != nil {
		return session.Reply{}, err
	}

	system := p.SystemPrompt
	if extraContext != "" {
		system += "\n\nContext:\n" + extraContext
	}

	return g.complete(ctx, p.ID, system, p.Model, p.Provider, nil, message), nil
}

// complete runs the provider call with tracing and metrics, degrading
// to the fallback table on any provider-side failure.
func (g *Gateway) complete(ctx context.Context, id, system, modelID string, providerOverride config.Provider, history []llms.Message, message string) session.Reply {
	startTime := time.Now()

	tracer := observability.GetTracer("frankx.dispatch")
	ctx, span := tracer.Start(ctx, observability.SpanDispatch,
		trace.WithAttributes(attribute.String(observability.AttrAgentID, id)),
	)
	defer span.End()

	text, err := g.callProvider(ctx, system, modelID, providerOverride, history, message)
	duration := time.Since(startTime)

	degraded := false
	if err != nil {
		degraded = true
		text = fallbackResponse(message)

		g.logger.Warn("provider call failed, serving fallback response",
			"agent", id,
			"message", truncate(message, 80),
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "success")
	}
	span.SetAttributes(attribute.Bool(observability.AttrDegraded, degraded))

	if metrics := observability.GetGlobalMetrics(); metrics != nil {
		metrics.RecordDispatch(ctx, id, duration, degraded, err)
	}

	return session.Reply{Text: text, Degraded: degraded}
}

// callProvider resolves the model and provider and performs the call.
// Every error return is a provider-side failure from the caller's
// point of view; agent resolution happened before this.
func (g *Gateway) callProvider(ctx context.Context, system, modelID string, providerOverride config.Provider, history []llms.Message, message string) (string, error) {
	apiName, prov, window := g.resolveModel(modelID, providerOverride)

	client, err := g.providers.GetProvider(prov)
	if err != nil {
		return "", apierr.Provider("provider not configured", err)
	}

	msgs := history
	if window > 0 && len(msgs) > 0 {
		if counter, cErr := tokens.NewCounter(apiName); cErr == nil {
			budget := window - replyReserve - counter.Count(system)
			if budget > 0 {
				msgs = counter.FitWithinLimit(msgs, budget)
			}
		}
	}
	msgs = append(msgs, llms.Message{Role: string(session.RoleUser), Content: message})

	resp, err := client.Complete(ctx, &llms.Request{
		Model:    apiName,
		System:   system,
		Messages: msgs,
	})
	if err != nil {
		return "", apierr.Provider("completion failed", err)
	}
	return resp.Text, nil
}

// resolveModel maps a catalog id (or empty, or an opaque pass-through
// value) to the provider-facing model name, the serving provider, and
// the context window. Unknown ids pass through untrimmed with the
// override provider, or the default model's provider when no override
// is set.
func (g *Gateway) resolveModel(modelID string, override config.Provider) (string, config.Provider, int) {
	if modelID == "" {
		d := g.models.Default()
		prov := d.Provider
		if override != "" {
			prov = override
		}
		return d.APIName(), prov, d.ContextWindow
	}

	d, err := g.models.GetModel(modelID)
	if err != nil {
		prov := override
		if prov == "" {
			prov = g.models.Default().Provider
		}
		return modelID, prov, 0
	}

	prov := d.Provider
	if override != "" {
		prov = override
	}
	return d.APIName(), prov, d.ContextWindow
}

func turnsToMessages(turns []session.Turn) []llms.Message {
	out := make([]llms.Message, 0, len(turns))
	for _, t := range turns {
		if t.Role == session.RoleSystem {
			continue
		}
		out = append(out, llms.Message{Role: string(t.Role), Content: t.Content})
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ session.Dispatcher = (*Gateway)(nil)
