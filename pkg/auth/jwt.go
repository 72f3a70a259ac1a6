package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sau-portal/auth-gateway/internal/config"
)

// Claims binds a signed cookie value to a server-side session. The session
// token in here is opaque; possession of a validly signed claim alone never
// grants access, the session store is always consulted.
type Claims struct {
	Subject      string `json:"sub_name"`
	SessionToken string `json:"session_token"`
	jwt.RegisteredClaims
}

// GenerateSessionJWT signs the cookie value carried by the browser.
func GenerateSessionJWT(subject, sessionToken string) (string, error) {
	secret := config.AppConfig.JWTSecret
	ttl := time.Duration(config.AppConfig.CookieTTLHours) * time.Hour

	claims := &Claims{
		Subject:      subject,
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateSessionJWT validates a cookie value and returns the claims
func ValidateSessionJWT(tokenString string) (*Claims, error) {
	secret := config.AppConfig.JWTSecret

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
