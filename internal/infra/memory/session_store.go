package memory

import (
	"context"
	"sync"

	"quizshow-game-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore with
// optimistic concurrency: Save compares the caller's Version against the
// stored one and rejects stale writes, matching the at-most-one-writer
// guarantee the game service relies on.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *SessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.Version = 1
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrInvalidSession
	}
	return cloneSession(session), nil
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.ID]
	if !ok {
		return domain.ErrInvalidSession
	}
	if stored.Version != session.Version {
		return domain.ErrWriteConflict
	}
	session.Version++
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *SessionStore) ListByRoom(_ context.Context, roomID string) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*domain.Session, 0)
	for _, session := range s.sessions {
		if session.RoomID == roomID {
			sessions = append(sessions, cloneSession(session))
		}
	}
	return sessions, nil
}

// cloneSession copies the session and its slices so callers never share
// backing arrays with the store.
func cloneSession(s *domain.Session) *domain.Session {
	out := *s
	out.Answered = append([]string(nil), s.Answered...)
	out.History = append([]domain.AnswerRecord(nil), s.History...)
	return &out
}
