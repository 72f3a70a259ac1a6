package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken creates a cryptographically secure random session token.
// 32 bytes = 256 bits, collision probability with any live token is
// negligible, so tokens are generated without a uniqueness round-trip.
func GenerateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
