package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sau-portal/auth-gateway/internal/domain"
)

// SessionRepo is the durable session backend. Revocation updates the state
// column in place; rows are never deleted, so create/revoke stay atomic with
// respect to concurrent validate calls at row granularity.
type SessionRepo struct {
	DB *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db}
}

func (r *SessionRepo) Create(ctx context.Context, session *domain.Session) error {
	query := `
	INSERT INTO portal_sessions (token, subject, created_at, last_seen_at, state)
	VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.DB.ExecContext(ctx, query,
		session.Token, session.Subject, session.CreatedAt, session.LastSeenAt, session.State)
	if err != nil {
		return fmt.Errorf("failed to create session: %v", err)
	}
	return nil
}

// GetByToken retrieves a session by token, nil when unknown.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	query := `
	SELECT token, subject, created_at, last_seen_at, state
	FROM portal_sessions
	WHERE token = $1;
	`
	var session domain.Session
	err := r.DB.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.Subject,
		&session.CreatedAt,
		&session.LastSeenAt,
		&session.State,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %v", err)
	}
	return &session, nil
}

// Revoke transitions the session to REVOKED. The single UPDATE makes the
// transition atomic; revoking an already-revoked token is a no-op success.
func (r *SessionRepo) Revoke(ctx context.Context, token string) error {
	query := `
	UPDATE portal_sessions
	SET state = $1
	WHERE token = $2;
	`
	result, err := r.DB.ExecContext(ctx, query, domain.SessionRevoked, token)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to revoke session: %v", err)
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// RevokeIdleBefore revokes every ACTIVE session whose last activity predates
// the cutoff. Rows stay in place so the tokens remain known-and-revoked.
func (r *SessionRepo) RevokeIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
	UPDATE portal_sessions
	SET state = $1
	WHERE state = $2 AND last_seen_at < $3;
	`
	result, err := r.DB.ExecContext(ctx, query, domain.SessionRevoked, domain.SessionActive, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke idle sessions: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to revoke idle sessions: %v", err)
	}
	return rows, nil
}

// Touch refreshes last_seen_at for an ACTIVE session.
func (r *SessionRepo) Touch(ctx context.Context, token string, at time.Time) error {
	query := `
	UPDATE portal_sessions
	SET last_seen_at = $1
	WHERE token = $2 AND state = $3;
	`
	_, err := r.DB.ExecContext(ctx, query, at, token, domain.SessionActive)
	if err != nil {
		return fmt.Errorf("failed to update session activity: %v", err)
	}
	return nil
}
