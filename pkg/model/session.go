package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var ErrSuggestionNotFound = goerr.New("suggestion not found")

type SessionID string

// NewSessionID generates a new unique SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// Session holds the suggestion batch for one user's review of one
// document. It is the only place suggestions live: lifecycle operations
// address them by positional id through this object, never through
// ambient state.
type Session struct {
	ID          SessionID
	Suggestions []*Suggestion

	// IntakeErr keeps the informational intake failure, if any, so the
	// presentation layer can tell an empty review from a failed one
	IntakeErr string

	CreatedAt time.Time
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{
		ID:        NewSessionID(),
		CreatedAt: time.Now(),
	}
}

// SetSuggestions replaces the batch and assigns 0-based positional ids
func (s *Session) SetSuggestions(suggestions []*Suggestion) {
	for i, sg := range suggestions {
		sg.ID = i
	}
	s.Suggestions = suggestions
}

// Suggestion returns the suggestion with the given positional id
func (s *Session) Suggestion(id int) (*Suggestion, error) {
	if id < 0 || id >= len(s.Suggestions) {
		return nil, goerr.Wrap(ErrSuggestionNotFound, "suggestion id out of range",
			goerr.V("id", id), goerr.V("batch_size", len(s.Suggestions)))
	}
	return s.Suggestions[id], nil
}

// Visible returns the suggestions not yet hidden by a user decision
func (s *Session) Visible() []*Suggestion {
	visible := make([]*Suggestion, 0, len(s.Suggestions))
	for _, sg := range s.Suggestions {
		if !sg.Hidden {
			visible = append(visible, sg)
		}
	}
	return visible
}
