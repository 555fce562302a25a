package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/frankx-ai/frankx/pkg/apierr"
)

// Reply is what a Dispatcher produced for a user message. Degraded
// marks locally generated fallback text substituted for a failed
// provider call.
type Reply struct {
	Text     string
	Degraded bool
}

// Dispatcher turns a session's history plus a new user message into an
// assistant reply. Implementations fail with an apierr NotFound when
// the agent id is unknown.
type Dispatcher interface {
	Dispatch(ctx context.Context, agentID string, history []Turn, message string) (Reply, error)
}

// Service manages conversation lifecycle over an injected Store and
// Dispatcher. A per-session mutex serializes writers to the same
// session, so the append-only ordering invariant holds even when two
// requests race on one session id.
type Service struct {
	store      Store
	dispatcher Dispatcher
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService builds a Service.
func NewService(store Store, dispatcher Dispatcher) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockSession acquires the per-session mutex for id and returns its
// release func. Lock entries are never evicted; session counts are
// bounded by session lifetime, not request volume.
func (s *Service) lockSession(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// CreateResult is the outcome of CreateConversation.
type CreateResult struct {
	SessionID       string    `json:"sessionId"`
	InitialResponse string    `json:"initialResponse,omitempty"`
	Degraded        bool      `json:"degraded,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// MessageResult is the outcome of SendMessage.
type MessageResult struct {
	Response  string    `json:"response"`
	Degraded  bool      `json:"degraded,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateConversation allocates a session for an agent+user pair. When
// initialMessage is non-empty it is dispatched immediately and both
// turns are appended before returning.
func (s *Service) CreateConversation(ctx context.Context, agentID, userID, initialMessage string) (*CreateResult, error) {
	if agentID == "" {
		return nil, apierr.Validation("agentId", "agentId is required")
	}
	if userID == "" {
		return nil, apierr.Validation("userId", "userId is required")
	}

	now := s.now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, apierr.Internal("creating session", err)
	}

	result := &CreateResult{SessionID: sess.ID, Timestamp: now}
	if initialMessage == "" {
		return result, nil
	}

	msg, err := s.SendMessage(ctx, sess.ID, initialMessage)
	if err != nil {
		return nil, err
	}
	result.InitialResponse = msg.Response
	result.Degraded = msg.Degraded
	result.Timestamp = msg.Timestamp
	return result, nil
}

// SendMessage appends a user turn, dispatches the conversation, and
// appends the assistant turn. Turn timestamps are non-decreasing within
// the session.
func (s *Service) SendMessage(ctx context.Context, sessionID, message string) (*MessageResult, error) {
	if message == "" {
		return nil, apierr.Validation("message", "message is required")
	}

	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil, apierr.NotFound("session", sessionID)
		}
		return nil, apierr.Internal("loading session", err)
	}

	userTurn := Turn{
		Role:      RoleUser,
		Content:   message,
		Timestamp: s.clampTimestamp(sess.LastTimestamp()),
	}

	reply, err := s.dispatcher.Dispatch(ctx, sess.AgentID, sess.Turns, message)
	if err != nil {
		return nil, err
	}

	assistantTurn := Turn{
		Role:      RoleAssistant,
		Content:   reply.Text,
		Timestamp: s.clampTimestamp(userTurn.Timestamp),
	}

	if err := s.store.AppendTurns(ctx, sessionID, userTurn, assistantTurn); err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil, apierr.NotFound("session", sessionID)
		}
		return nil, apierr.Internal("appending turns", err)
	}

	return &MessageResult{
		Response:  reply.Text,
		Degraded:  reply.Degraded,
		Timestamp: assistantTurn.Timestamp,
	}, nil
}

// ClearConversation empties the session's turns. Clearing an already
// empty session succeeds; an unknown session id is NotFound.
func (s *Service) ClearConversation(ctx context.Context, sessionID string) error {
	unlock := s.lockSession(sessionID)
	defer unlock()

	if err := s.store.Clear(ctx, sessionID); err != nil {
		if errors.Is(err, ErrNotExist) {
			return apierr.NotFound("session", sessionID)
		}
		return apierr.Internal("clearing session", err)
	}
	return nil
}

// GetSession returns a copy of the session with the given id.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil, apierr.NotFound("session", sessionID)
		}
		return nil, apierr.Internal("loading session", err)
	}
	return sess, nil
}

// FindSession returns the most recent session for an agent+user pair,
// if one exists.
func (s *Service) FindSession(ctx context.Context, agentID, userID string) (*Session, bool, error) {
	sess, ok, err := s.store.Find(ctx, agentID, userID)
	if err != nil {
		return nil, false, apierr.Internal("finding session", err)
	}
	return sess, ok, nil
}

// clampTimestamp returns now, pushed forward to prev if the clock
// reads behind the last appended turn.
func (s *Service) clampTimestamp(prev time.Time) time.Time {
	now := s.now().UTC()
	if now.Before(prev) {
		return prev
	}
	return now
}
