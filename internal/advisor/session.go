package advisor

import (
	"context"

	"github.com/glemmtal/alpbot/internal/model"
)

// Session owns one conversation's history. History is appended only after a
// complete answer (model text or fallback) is obtained, so a request that
// fails partway leaves no partial state.
type Session struct {
	advisor *Advisor
	history []model.Turn
}

// NewSession creates a session over the given advisor.
func NewSession(a *Advisor) *Session {
	return &Session{advisor: a}
}

// Ask answers a query within the session and records both turns.
func (s *Session) Ask(ctx context.Context, query string) string {
	answer := s.advisor.Answer(ctx, query, s.history)
	s.history = append(s.history,
		model.Turn{Role: model.RoleUser, Content: query},
		model.Turn{Role: model.RoleAssistant, Content: answer},
	)
	return answer
}

// History returns a copy of the conversation so far.
func (s *Session) History() []model.Turn {
	out := make([]model.Turn, len(s.history))
	copy(out, s.history)
	return out
}
