package httputil

import (
	"errors"
	"net/http"

	"github.com/sau-portal/auth-gateway/internal/config"
)

const SessionCookieName = "portal_session"

func SetSessionCookie(w http.ResponseWriter, value string) {
	maxAge := config.AppConfig.CookieTTLHours * 60 * 60

	isProduction := config.AppConfig.Environment == "production"

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

// ClearSessionCookie instructs the client to discard its session credential.
func ClearSessionCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}

	http.SetCookie(w, cookie)
}

// GetSessionFromCookie extracts the signed session value from the cookie
func GetSessionFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", errors.New("session cookie not found")
	}

	if cookie.Value == "" {
		return "", errors.New("session cookie is empty")
	}

	return cookie.Value, nil
}
