package verifier

import (
	"context"
	"fmt"

	"github.com/sau-portal/auth-gateway/internal/domain"
	"github.com/sau-portal/auth-gateway/pkg/auth"
)

type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Database verifies against a durable user store.
type Database struct {
	users     UserLookup
	dummyHash string
}

func NewDatabase(users UserLookup) *Database {
	dummyHash, _ := auth.HashPassword("-")
	return &Database{users: users, dummyHash: dummyHash}
}

func (v *Database) Verify(ctx context.Context, username, password string) (bool, error) {
	user, err := v.users.GetUserByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("user lookup failed: %v", err)
	}
	if user == nil {
		auth.CheckPasswordHash(password, v.dummyHash)
		return false, nil
	}
	return auth.CheckPasswordHash(password, user.PasswordHash), nil
}
