// Package gateway computes the per-request access decision. The decision is
// a pure function of the presented credential and the current session store
// state; the filter itself holds no mutable per-request flags.
package gateway

import (
	"context"
	"errors"

	"github.com/sau-portal/auth-gateway/internal/domain"
	"github.com/sau-portal/auth-gateway/internal/service/session"
)

type SessionValidator interface {
	Validate(ctx context.Context, cookieValue string) (*domain.Session, error)
}

type Filter struct {
	sessions SessionValidator
}

func NewFilter(sessions SessionValidator) *Filter {
	return &Filter{sessions: sessions}
}

// Decide maps a presented session credential to GRANT, CHALLENGE or REJECT.
// A missing, malformed, unknown or revoked credential all yield CHALLENGE:
// the client is sent back through the login flow, never to an error page.
// REJECT is reserved for a failing session backend, where admitting the
// request would be unsafe and a challenge redirect could loop.
func (f *Filter) Decide(ctx context.Context, presented string) domain.Decision {
	if presented == "" {
		return domain.Challenge("no session credential presented")
	}

	sess, err := f.sessions.Validate(ctx, presented)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return domain.Challenge("credential does not resolve to an active session")
		}
		return domain.Reject("session store unavailable")
	}

	return domain.Grant(sess)
}
