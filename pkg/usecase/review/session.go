package review

import (
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redlinehq/redline/pkg/model"
)

var ErrSessionNotFound = goerr.New("session not found")

// SessionStore holds the live review sessions, keyed by session ID.
// Suggestions are addressed through a session, never through ambient
// state. Entries live for the process lifetime; the demonstrated scale
// is a single interactive user.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[model.SessionID]*model.Session
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[model.SessionID]*model.Session),
	}
}

// Create registers and returns a new empty session
func (s *SessionStore) Create() *model.Session {
	session := model.NewSession()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return session
}

// Get returns the session with the given ID
func (s *SessionStore) Get(id model.SessionID) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, goerr.Wrap(ErrSessionNotFound, "unknown session", goerr.V("id", id))
	}
	return session, nil
}
