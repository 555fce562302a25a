// Package session tracks conversation sessions: ordered, append-only
// sequences of role-tagged turns keyed by a generated session id and
// associated with one agent and one user.
//
// Turn sequences are never edited in place. The only mutations are
// appending turns and clearing the whole sequence; session identity and
// agent/user association survive a clear.
package session

import "time"

// Role tags a turn's author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged message within a session.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the record of turns exchanged between a user and an agent.
type Session struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agentId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Turns     []Turn    `json:"turns"`
}

// Clone returns a deep copy so callers can read turns without holding
// store locks.
func (s *Session) Clone() *Session {
	out := *s
	out.Turns = make([]Turn, len(s.Turns))
	copy(out.Turns, s.Turns)
	return &out
}

// LastTimestamp returns the timestamp of the most recent turn, or the
// zero time for an empty session.
func (s *Session) LastTimestamp() time.Time {
	if len(s.Turns) == 0 {
		return time.Time{}
	}
	return s.Turns[len(s.Turns)-1].Timestamp
}
