// Package verifier holds the credential-verification collaborator the login
// flow delegates to. Every implementation answers with a bare yes/no: the
// caller must never learn whether the username or the password was wrong.
package verifier

import (
	"context"
	"log"

	"github.com/sau-portal/auth-gateway/internal/config"
	"github.com/sau-portal/auth-gateway/pkg/auth"
)

type Verifier interface {
	// Verify reports whether the pair identifies a known subject. Empty
	// fields are legal input and fail by construction.
	Verify(ctx context.Context, username, password string) (bool, error)
}

// Static verifies against an in-process user set built from configured seed
// users. It is the default backend when no database is configured.
type Static struct {
	hashes    map[string]string
	dummyHash string
}

func NewStatic(seeds []config.SeedUser) *Static {
	hashes := make(map[string]string, len(seeds))
	for _, seed := range seeds {
		hash, err := auth.HashPassword(seed.Password)
		if err != nil {
			log.Printf("[VERIFIER] Warning: Failed to hash seed password for %q: %v", seed.Username, err)
			continue
		}
		hashes[seed.Username] = hash
	}
	// Compared against for unknown usernames so the failure path costs the
	// same either way.
	dummyHash, err := auth.HashPassword("-")
	if err != nil {
		log.Printf("[VERIFIER] Warning: Failed to hash dummy password: %v", err)
	}
	return &Static{hashes: hashes, dummyHash: dummyHash}
}

func (v *Static) Verify(ctx context.Context, username, password string) (bool, error) {
	hash, ok := v.hashes[username]
	if !ok {
		auth.CheckPasswordHash(password, v.dummyHash)
		return false, nil
	}
	return auth.CheckPasswordHash(password, hash), nil
}
