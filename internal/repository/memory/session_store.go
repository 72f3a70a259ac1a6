package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sau-portal/auth-gateway/internal/domain"
)

// SessionStore is the authoritative in-memory session backend. Revocation is
// a state transition, not a deletion, so a concurrent validator never races
// with the removal of a record it is mid-read on, and revoked tokens stay
// unusable for the life of the process.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.Session),
	}
}

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.Token]; exists {
		return domain.ErrTokenExists
	}

	copied := *session
	s.sessions[session.Token] = &copied
	return nil
}

// GetByToken returns a copy of the record, or nil for an unknown token.
// Callers cannot mutate store state through the returned value.
func (s *SessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

// Revoke transitions ACTIVE -> REVOKED. Revoking an already-REVOKED token is
// a success no-op; an unknown token returns ErrSessionNotFound.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.State = domain.SessionRevoked
	return nil
}

// RevokeIdleBefore flips every ACTIVE session whose LastSeenAt predates the
// cutoff to REVOKED and reports how many it touched. Records are never
// removed; a revoked token must stay unusable, not become unknown.
func (s *SessionStore) RevokeIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var revoked int64
	for _, session := range s.sessions {
		if session.State == domain.SessionActive && session.LastSeenAt.Before(cutoff) {
			session.State = domain.SessionRevoked
			revoked++
		}
	}
	return revoked, nil
}

// Touch refreshes LastSeenAt on an ACTIVE session.
func (s *SessionStore) Touch(ctx context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if session.State != domain.SessionActive {
		return nil
	}
	session.LastSeenAt = at
	return nil
}
