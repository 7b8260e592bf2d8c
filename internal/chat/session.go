package chat

import (
	"time"

	"github.com/google/uuid"
)

// Turn is one query/reply pair of a conversation.
type Turn struct {
	Query string    `json:"query"`
	Reply string    `json:"reply"`
	At    time.Time `json:"at"`
}

// Session holds the conversation history for one logical caller. Sessions
// are caller-owned and passed explicitly into Handle; they are not shared
// across concurrent callers and are not persisted across restarts.
type Session struct {
	ID    string `json:"id"`
	turns []Turn
}

// NewSession creates an empty session with a fresh identifier.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// Append records a completed turn.
func (s *Session) Append(query, reply string) {
	if s == nil {
		return
	}
	s.turns = append(s.turns, Turn{Query: query, Reply: reply, At: time.Now()})
}

// Turns returns the recorded turns in order.
func (s *Session) Turns() []Turn {
	if s == nil {
		return nil
	}
	return s.turns
}

// Len returns the number of recorded turns.
func (s *Session) Len() int {
	if s == nil {
		return 0
	}
	return len(s.turns)
}
