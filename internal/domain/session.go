package domain

import "time"

// SessionState is the lifecycle state of a session. The transition
// ACTIVE -> REVOKED is one-way; tokens are never reused after revocation.
type SessionState string

const (
	SessionActive  SessionState = "ACTIVE"
	SessionRevoked SessionState = "REVOKED"
)

type Session struct {
	Token      string       `json:"token"`
	Subject    string       `json:"subject"`
	CreatedAt  time.Time    `json:"created_at"`
	LastSeenAt time.Time    `json:"last_seen_at"`
	State      SessionState `json:"state"`
}

// Active reports whether the session currently grants access.
func (s *Session) Active() bool {
	return s != nil && s.State == SessionActive
}
