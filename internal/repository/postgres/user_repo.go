package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sau-portal/auth-gateway/internal/domain"
)

type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// GetUserByUsername returns nil when no such user exists. Callers must not
// surface the distinction between "no user" and "wrong password".
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
	SELECT id, username, name, password_hash, created_at
	FROM portal_users
	WHERE username = $1;
	`
	var user domain.User
	err := r.DB.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// EnsureUser inserts a user if absent. Used to apply configured seed users
// at startup; an existing user's password hash is left untouched.
func (r *UserRepo) EnsureUser(ctx context.Context, username, name, passwordHash string) error {
	query := `
	INSERT INTO portal_users (username, name, password_hash)
	VALUES ($1, $2, $3)
	ON CONFLICT (username) DO NOTHING;
	`
	_, err := r.DB.ExecContext(ctx, query, username, name, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %v", err)
	}
	return nil
}
