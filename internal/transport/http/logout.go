package http

import (
	"log"
	"net/http"

	"github.com/sau-portal/auth-gateway/internal/service/session"
	"github.com/sau-portal/auth-gateway/pkg/httputil"
)

type LogoutHandler struct {
	Sessions *session.Service
}

func NewLogoutHandler(sessions *session.Service) *LogoutHandler {
	return &LogoutHandler{Sessions: sessions}
}

// Logout revokes the presented session, tells the client to discard its
// cookie and sends it back to the challenge page. It is idempotent: an
// absent, malformed or already-revoked credential still ends in the same
// redirect, never an error.
func (h *LogoutHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookieValue, err := httputil.GetSessionFromCookie(r); err == nil {
		if err := h.Sessions.RevokePresented(r.Context(), cookieValue); err != nil {
			log.Printf("[LOGOUT] Failed to revoke session: %v", err)
		}
	}

	httputil.ClearSessionCookie(w)
	http.Redirect(w, r, LoginEntryPath, http.StatusFound)
}
