package http

import (
	"log"
	"net/http"
	"time"

	"github.com/sau-portal/auth-gateway/internal/config"
	"github.com/sau-portal/auth-gateway/internal/service/session"
	"github.com/sau-portal/auth-gateway/pkg/auth"
	"github.com/sau-portal/auth-gateway/pkg/httputil"
)

const upstreamStateCookie = "upstream_state"

// stateCookieTTL bounds how long an upstream login round-trip may take.
const stateCookieTTL = 10 * time.Minute

// UpstreamHandler delegates credential verification to an external identity
// provider via the authorization-code flow, then mints a local gateway
// session for the returned subject. Any failure along the way falls back to
// the local challenge page with the generic error indication.
type UpstreamHandler struct {
	Config   *config.UpstreamConfig
	Sessions *session.Service
}

func NewUpstreamHandler(cfg *config.UpstreamConfig, sessions *session.Service) *UpstreamHandler {
	return &UpstreamHandler{Config: cfg, Sessions: sessions}
}

// UpstreamLogin redirects the client to the provider's authorize endpoint.
func (h *UpstreamHandler) UpstreamLogin(w http.ResponseWriter, r *http.Request) {
	state := auth.GenerateToken()

	http.SetCookie(w, &http.Cookie{
		Name:     upstreamStateCookie,
		Value:    state,
		Path:     "/auth/upstream",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.Config.OAuth.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// UpstreamCallback handles the provider's response.
func (h *UpstreamHandler) UpstreamCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(upstreamStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		log.Printf("[UPSTREAM] State mismatch on callback")
		h.failToLogin(w, r)
		return
	}
	// One round-trip per state value.
	http.SetCookie(w, &http.Cookie{Name: upstreamStateCookie, Value: "", Path: "/auth/upstream", MaxAge: -1, HttpOnly: true})

	code := r.URL.Query().Get("code")
	token, err := h.Config.OAuth.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("[UPSTREAM] Failed to exchange code: %v", err)
		h.failToLogin(w, r)
		return
	}

	userInfo, err := h.Config.GetUpstreamUserInfo(token.AccessToken)
	if err != nil {
		log.Printf("[UPSTREAM] Failed to get user info: %v", err)
		h.failToLogin(w, r)
		return
	}

	subject := userInfo.Username()
	if subject == "" {
		log.Printf("[UPSTREAM] Userinfo response carried no usable subject")
		h.failToLogin(w, r)
		return
	}

	_, cookieValue, err := h.Sessions.Issue(r.Context(), subject)
	if err != nil {
		log.Printf("[UPSTREAM] Failed to issue session for %q: %v", subject, err)
		h.failToLogin(w, r)
		return
	}

	httputil.SetSessionCookie(w, cookieValue)
	http.Redirect(w, r, LandingPath, http.StatusFound)
}

func (h *UpstreamHandler) failToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, LoginEntryPath+"?error=upstream_failed", http.StatusFound)
}
