package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/frankx-ai/frankx/pkg/apierr"
	"github.com/frankx-ai/frankx/pkg/persona"
	"github.com/frankx-ai/frankx/pkg/recommend"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to HTTP statuses. Mutating a
// built-in and colliding with one are caller mistakes, so they map to
// 400 alongside validation failures; provider failures never reach
// here because dispatch degrades instead of erroring.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		writeErrorBody(w, http.StatusInternalServerError, "internal", err.Error(), "")
		return
	}

	status := http.StatusInternalServerError
	switch apiErr.Code {
	case apierr.CodeValidation, apierr.CodeConflict, apierr.CodeForbidden:
		status = http.StatusBadRequest
	case apierr.CodeNotFound:
		status = http.StatusNotFound
	case apierr.CodeProvider:
		status = http.StatusBadGateway
	}
	writeErrorBody(w, status, string(apiErr.Code), apiErr.Message, apiErr.Field)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message, field string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	body.Error.Field = field
	writeJSON(w, status, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorBody(w, http.StatusBadRequest, string(apierr.CodeValidation), "invalid request body: "+err.Error(), "")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models":  s.models.ListModels(),
		"default": s.models.Default().ID,
	})
}

func (s *Server) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	personas, err := s.personas.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, personas)
}

func (s *Server) handleCreatePersona(w http.ResponseWriter, r *http.Request) {
	var req persona.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.personas.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePersona(w http.ResponseWriter, r *http.Request) {
	var req persona.UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.personas.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePersona(w http.ResponseWriter, r *http.Request) {
	if err := s.personas.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.personas.ListAgents())
}

type createConversationRequest struct {
	AgentID        string `json:"agentId"`
	UserID         string `json:"userId"`
	InitialMessage string `json:"initialMessage,omitempty"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// sessions hold only a weak reference to the agent, so validate it
	// up front rather than on first dispatch
	if _, err := s.personas.GetAgent(req.AgentID); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.sessions.CreateConversation(r.Context(), req.AgentID, req.UserID, req.InitialMessage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type sendMessageRequest struct {
	AgentID   string `json:"agentId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

type sendMessageResponse struct {
	SessionID string    `json:"sessionId"`
	Response  string    `json:"response"`
	Degraded  bool      `json:"degraded,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		// first message for an agent+user pair creates the session
		if req.AgentID == "" || req.UserID == "" {
			writeErrorBody(w, http.StatusBadRequest, string(apierr.CodeValidation),
				"sessionId or agentId+userId is required", "sessionId")
			return
		}
		existing, ok, err := s.sessions.FindSession(r.Context(), req.AgentID, req.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		if ok {
			sessionID = existing.ID
		} else {
			created, err := s.sessions.CreateConversation(r.Context(), req.AgentID, req.UserID, "")
			if err != nil {
				writeError(w, err)
				return
			}
			sessionID = created.SessionID
		}
	}

	result, err := s.sessions.SendMessage(r.Context(), sessionID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sendMessageResponse{
		SessionID: sessionID,
		Response:  result.Response,
		Degraded:  result.Degraded,
		Timestamp: result.Timestamp,
	})
}

type clearConversationRequest struct {
	AgentID   string `json:"agentId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	var req clearConversationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.sessions.ClearConversation(r.Context(), req.SessionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecommendAgents(w http.ResponseWriter, r *http.Request) {
	profile, err := recommend.ParseProfile(r.URL.Query())
	if err != nil {
		writeError(w, apierr.Validation("profile", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, s.engine.RecommendAgents(profile))
}

func (s *Server) handleRecommendResources(w http.ResponseWriter, r *http.Request) {
	profile, err := recommend.ParseProfile(r.URL.Query())
	if err != nil {
		writeError(w, apierr.Validation("profile", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, s.engine.RecommendResources(profile))
}

type aiConversationRequest struct {
	CharacterName string `json:"characterName"`
	Message       string `json:"message"`
	Context       string `json:"context,omitempty"`
}

type aiConversationResponse struct {
	Message  string `json:"message"`
	Degraded bool   `json:"degraded,omitempty"`
}

func (s *Server) handleAIConversation(w http.ResponseWriter, r *http.Request) {
	var req aiConversationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CharacterName == "" {
		writeErrorBody(w, http.StatusBadRequest, string(apierr.CodeValidation), "characterName is required", "characterName")
		return
	}
	if req.Message == "" {
		writeErrorBody(w, http.StatusBadRequest, string(apierr.CodeValidation), "message is required", "message")
		return
	}

	reply, err := s.gateway.DispatchPersona(r.Context(), req.CharacterName, req.Message, req.Context)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, aiConversationResponse{
		Message:  reply.Text,
		Degraded: reply.Degraded,
	})
}
