package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/dispatch"
	"github.com/frankx-ai/frankx/pkg/llms"
	"github.com/frankx-ai/frankx/pkg/models"
	"github.com/frankx-ai/frankx/pkg/persona"
	"github.com/frankx-ai/frankx/pkg/recommend"
	"github.com/frankx-ai/frankx/pkg/session"
)

type stubProvider struct {
	name config.Provider
	text string
	err  error
}

func (p *stubProvider) Complete(ctx context.Context, req *llms.Request) (*llms.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llms.Response{Text: p.text}, nil
}

func (p *stubProvider) Name() config.Provider { return p.name }
func (p *stubProvider) Close() error          { return nil }

func newTestRouter(t *testing.T, providerErr error) http.Handler {
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
	for _, name := range []config.Provider{config.ProviderOpenAI, config.ProviderOpenRouter, config.ProviderAnthropic} {
		require.NoError(t, llmReg.Register(string(name), &stubProvider{name: name, text: "stub reply", err: providerErr}))
	}

	gateway := dispatch.NewGateway(personas, modelReg, llmReg)
	sessions := session.NewService(session.NewMemoryStore(), gateway)

	resources, err := recommend.LoadResources("")
	require.NoError(t, err)
	engine := recommend.NewEngine(agents, resources)

	cfg := config.ServerConfig{}
	cfg.SetDefaults()

	return New(cfg, personas, sessions, gateway, modelReg, engine).Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServer_ListModels(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := doJSON(t, router, http.MethodGet, "/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Models  []models.Descriptor `json:"models"`
		Default string              `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Models)
	assert.Equal(t, "openai/gpt-4o-mini", body.Default)
}

func TestServer_PersonaCRUD(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/personas", map[string]string{
		"name":         "Test Bot",
		"systemPrompt": "You are helpful.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created persona.Persona
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "test-bot", created.ID)
	assert.True(t, created.IsCustom)

	rec = doJSON(t, router, http.MethodGet, "/personas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []persona.Persona
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "test-bot", list[len(list)-1].ID, "custom personas follow built-ins")

	rec = doJSON(t, router, http.MethodPut, "/personas/test-bot", map[string]string{
		"systemPrompt": "Updated.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated persona.Persona
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Updated.", updated.SystemPrompt)
	assert.Equal(t, "Test Bot", updated.Name)

	rec = doJSON(t, router, http.MethodDelete, "/personas/test-bot", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/personas/test-bot", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_PersonaErrors(t *testing.T) {
	router := newTestRouter(t, nil)

	// missing required fields
	rec := doJSON(t, router, http.MethodPost, "/personas", map[string]string{"name": "No Prompt"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// built-in id collision
	rec = doJSON(t, router, http.MethodPost, "/personas", map[string]string{
		"name":         "FrankBot",
		"systemPrompt": "p",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// built-in mutation
	rec = doJSON(t, router, http.MethodPut, "/personas/frankbot", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/personas/frankbot", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// malformed body
	req := httptest.NewRequest(http.MethodPost, "/personas", bytes.NewBufferString("{not json"))
	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestServer_ListAgents(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := doJSON(t, router, http.MethodGet, "/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var agents []persona.Agent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agents))
	require.NotEmpty(t, agents)
	assert.Equal(t, "frankbot", agents[0].ID)
}

func TestServer_ConversationLifecycle(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/agents/conversation", map[string]string{
		"agentId": "frankbot",
		"userId":  "user-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created session.CreateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.SessionID)

	rec = doJSON(t, router, http.MethodPost, "/agents/message", map[string]string{
		"sessionId": created.SessionID,
		"message":   "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var msg sendMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "stub reply", msg.Response)
	assert.False(t, msg.Degraded)
	assert.False(t, msg.Timestamp.IsZero())

	rec = doJSON(t, router, http.MethodPost, "/agents/clear-conversation", map[string]string{
		"sessionId": created.SessionID,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// clear twice is fine
	rec = doJSON(t, router, http.MethodPost, "/agents/clear-conversation", map[string]string{
		"sessionId": created.SessionID,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_ConversationWithInitialMessage(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/agents/conversation", map[string]string{
		"agentId":        "frankbot",
		"userId":         "user-1",
		"initialMessage": "hi there",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created session.CreateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "stub reply", created.InitialResponse)
}

func TestServer_ConversationErrors(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/agents/conversation", map[string]string{
		"agentId": "no-such-agent",
		"userId":  "user-1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/agents/message", map[string]string{
		"sessionId": "no-such-session",
		"message":   "hello",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/agents/clear-conversation", map[string]string{
		"sessionId": "no-such-session",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// no session id and no agent+user pair
	rec = doJSON(t, router, http.MethodPost, "/agents/message", map[string]string{
		"message": "hello",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_MessageCreatesSessionForAgentUserPair(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/agents/message", map[string]string{
		"agentId": "frankbot",
		"userId":  "user-9",
		"message": "first contact",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var msg sendMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.NotEmpty(t, msg.SessionID)

	// a second message without sessionId lands in the same session
	rec = doJSON(t, router, http.MethodPost, "/agents/message", map[string]string{
		"agentId": "frankbot",
		"userId":  "user-9",
		"message": "second",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var msg2 sendMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg2))
	assert.Equal(t, msg.SessionID, msg2.SessionID)
}

func TestServer_DegradedMessage(t *testing.T) {
	router := newTestRouter(t, errors.New("provider down"))

	rec := doJSON(t, router, http.MethodPost, "/agents/conversation", map[string]string{
		"agentId":        "frankbot",
		"userId":         "user-1",
		"initialMessage": "What is a center of excellence?",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created session.CreateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Degraded)
	assert.Contains(t, created.InitialResponse, "Center of Excellence")
}

func TestServer_Recommendations(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/recommendations/agents?goals=research", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var agents []persona.Agent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agents))
	require.NotEmpty(t, agents)
	assert.Equal(t, "research-scout", agents[0].ID)

	rec = doJSON(t, router, http.MethodGet, "/recommendations/resources?industry=music", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resources []recommend.Resource
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resources))
	require.NotEmpty(t, resources)
	assert.Equal(t, "ai-music-course", resources[0].ID)

	// empty profile returns the full catalog
	rec = doJSON(t, router, http.MethodGet, "/recommendations/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []persona.Agent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, "frankbot", all[0].ID)
}

func TestServer_AIConversation(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/ai/conversation", map[string]string{
		"characterName": "FrankBot",
		"message":       "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body aiConversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "stub reply", body.Message)
	assert.False(t, body.Degraded)

	rec = doJSON(t, router, http.MethodPost, "/ai/conversation", map[string]string{
		"characterName": "Nobody Here",
		"message":       "hello",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/ai/conversation", map[string]string{
		"message": "hello",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/ai/conversation", map[string]string{
		"characterName": "FrankBot",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	builtinsRouter := func() http.Handler {
		builtins, _ := persona.LoadBuiltinPersonas("")
		agents, _ := persona.LoadBuiltinAgents("")
		personas, _ := persona.NewService(builtins, agents, persona.NewMemoryStore())
		modelReg, _ := models.LoadRegistry("")
		gateway := dispatch.NewGateway(personas, modelReg, llms.NewRegistry())
		sessions := session.NewService(session.NewMemoryStore(), gateway)
		resources, _ := recommend.LoadResources("")
		cfg := config.ServerConfig{CORS: &config.CORSConfig{AllowedOrigins: []string{"https://frankx.ai"}}}
		cfg.SetDefaults()
		return New(cfg, personas, sessions, gateway, modelReg, recommend.NewEngine(agents, resources)).Router()
	}()

	req := httptest.NewRequest(http.MethodOptions, "/personas", nil)
	rec := httptest.NewRecorder()
	builtinsRouter.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://frankx.ai", rec.Header().Get("Access-Control-Allow-Origin"))
}
