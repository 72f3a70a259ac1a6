package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sau-portal/auth-gateway/internal/config"
	"github.com/sau-portal/auth-gateway/internal/domain"
	"github.com/sau-portal/auth-gateway/pkg/auth"
)

const sessionKeyPrefix = "session:"
const blockedSessionKeyPrefix = "blocked_session:"
const cacheTTL = 24 * time.Hour
const blocklistTTL = 72 * time.Hour

// ErrNoSession is returned for every presented credential that does not
// resolve to an ACTIVE session. Unknown, revoked and expired tokens are
// deliberately indistinguishable to callers.
var ErrNoSession = errors.New("no active session")

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Revoke(ctx context.Context, token string) error
	Touch(ctx context.Context, token string, at time.Time) error
}

type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Get returns the stored value, or an empty string with a nil error for
	// an absent key. A non-nil error means the cache is unreachable.
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Service owns session issuance, validation and revocation over an
// authoritative repository with an optional cache/blocklist layer.
type Service struct {
	repo  SessionRepository
	cache CacheRepository // Optional, can be nil
}

func NewService(repo SessionRepository, cache CacheRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// Issue mints an ACTIVE session for the subject and returns the session plus
// the signed cookie value the client holds.
func (s *Service) Issue(ctx context.Context, subject string) (*domain.Session, string, error) {
	now := time.Now()
	session := &domain.Session{
		Token:      auth.GenerateToken(),
		Subject:    subject,
		CreatedAt:  now,
		LastSeenAt: now,
		State:      domain.SessionActive,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %v", err)
	}

	cookieValue, err := auth.GenerateSessionJWT(subject, session.Token)
	if err != nil {
		// The orphaned record must not stay usable.
		if revokeErr := s.Revoke(ctx, session.Token); revokeErr != nil {
			log.Printf("[SESSION] Warning: Failed to revoke orphaned session: %v", revokeErr)
		}
		return nil, "", fmt.Errorf("failed to sign session cookie: %v", err)
	}

	if s.cache != nil {
		if err := s.setSessionInCache(ctx, session); err != nil {
			log.Printf("[SESSION] Warning: Failed to cache session: %v", err)
		}
	}

	return session, cookieValue, nil
}

// Validate resolves a presented cookie value to an ACTIVE session. Every
// failure mode collapses to ErrNoSession.
func (s *Service) Validate(ctx context.Context, cookieValue string) (*domain.Session, error) {
	claims, err := auth.ValidateSessionJWT(cookieValue)
	if err != nil {
		return nil, ErrNoSession
	}
	return s.ValidateToken(ctx, claims.SessionToken)
}

// ValidateToken resolves a raw session token to an ACTIVE session.
func (s *Service) ValidateToken(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	// A cached record is only trustworthy when the blocklist answered. If
	// the blocklist cannot be consulted, the authoritative store decides.
	useCache := true
	if s.cache != nil {
		blocked, err := s.isSessionBlocked(ctx, token)
		if err != nil {
			log.Printf("[SESSION] Warning: Blocklist unreachable, bypassing cache: %v", err)
			useCache = false
		} else if blocked {
			return nil, ErrNoSession
		}
	}

	session, err := s.getSession(ctx, token, useCache)
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %v", err)
	}
	if !session.Active() {
		return nil, ErrNoSession
	}

	if idleMin := config.AppConfig.SessionIdleTimeoutMin; idleMin > 0 {
		if time.Since(session.LastSeenAt) > time.Duration(idleMin)*time.Minute {
			if err := s.Revoke(ctx, token); err != nil {
				log.Printf("[SESSION] Warning: Failed to revoke idle session: %v", err)
			}
			return nil, ErrNoSession
		}
	}

	return session, nil
}

// Revoke blocklists the token, then transitions the session to REVOKED.
// Revoking an unknown or already-revoked token succeeds silently; an error
// means the revocation did not take effect anywhere and can be retried.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	// The blocklist entry lands before the authoritative flip. A cached copy
	// of the record can then never outlive the revocation; if blocklisting
	// fails, the revocation fails as a whole and the session stays ACTIVE
	// everywhere rather than half-revoked.
	if s.cache != nil {
		if err := s.cache.Set(ctx, blockedSessionKeyPrefix+token, "1", blocklistTTL); err != nil {
			return fmt.Errorf("failed to blocklist session: %v", err)
		}
	}

	err := s.repo.Revoke(ctx, token)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("failed to revoke session: %v", err)
	}

	if s.cache != nil {
		// Best effort; the blocklist entry already shadows the cached record.
		if err := s.cache.Del(ctx, sessionKeyPrefix+token); err != nil {
			log.Printf("[SESSION] Warning: Failed to delete session from cache: %v", err)
		}
	}
	return nil
}

// RevokePresented best-effort revokes whatever session a cookie value points
// at. Malformed cookie values are ignored.
func (s *Service) RevokePresented(ctx context.Context, cookieValue string) error {
	claims, err := auth.ValidateSessionJWT(cookieValue)
	if err != nil {
		return nil
	}
	return s.Revoke(ctx, claims.SessionToken)
}

// Touch refreshes LastSeenAt on each admitted request.
func (s *Service) Touch(ctx context.Context, token string) {
	now := time.Now()
	if err := s.repo.Touch(ctx, token, now); err != nil {
		log.Printf("[SESSION] Warning: Failed to update session activity: %v", err)
		return
	}
	if s.cache != nil {
		session, err := s.repo.GetByToken(ctx, token)
		if err == nil && session != nil {
			if err := s.setSessionInCache(ctx, session); err != nil {
				log.Printf("[SESSION] Warning: Failed to update session in cache: %v", err)
			}
		}
	}
}

func (s *Service) isSessionBlocked(ctx context.Context, token string) (bool, error) {
	val, err := s.cache.Get(ctx, blockedSessionKeyPrefix+token)
	if err != nil {
		return false, err
	}
	return val != "", nil
}

func (s *Service) getSession(ctx context.Context, token string, useCache bool) (*domain.Session, error) {
	if useCache && s.cache != nil {
		session, err := s.getSessionFromCache(ctx, token)
		if err == nil && session != nil {
			return session, nil
		}
	}
	session, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session != nil && s.cache != nil {
		if err := s.setSessionInCache(ctx, session); err != nil {
			log.Printf("[SESSION] Warning: Failed to populate cache: %v", err)
		}
	}
	return session, nil
}

func (s *Service) setSessionInCache(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, sessionKeyPrefix+session.Token, data, cacheTTL)
}

func (s *Service) getSessionFromCache(ctx context.Context, token string) (*domain.Session, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}
	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}
