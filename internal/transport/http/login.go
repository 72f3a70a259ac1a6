package http

import (
	"log"
	"net/http"

	"github.com/sau-portal/auth-gateway/internal/config"
	"github.com/sau-portal/auth-gateway/internal/service/session"
	"github.com/sau-portal/auth-gateway/internal/service/verifier"
	"github.com/sau-portal/auth-gateway/pkg/httputil"
)

// InvalidCredentialsMessage is the single user-visible rejection message.
// Unknown username, wrong password, both wrong and empty fields all surface
// this exact text, so the response never reveals which part failed.
const InvalidCredentialsMessage = "Invalid username or password."

// LoginEntryPath is where the filter sends every challenged request.
const LoginEntryPath = "/auth/login"

// LandingPath is the authenticated landing resource after a successful login.
const LandingPath = "/"

type LoginHandler struct {
	Verifier verifier.Verifier
	Sessions *session.Service
	Upstream *config.UpstreamConfig
}

func NewLoginHandler(v verifier.Verifier, sessions *session.Service, upstream *config.UpstreamConfig) *LoginHandler {
	return &LoginHandler{
		Verifier: v,
		Sessions: sessions,
		Upstream: upstream,
	}
}

// Login serves the challenge page and processes form submissions.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.showLogin(w, r)
	case http.MethodPost:
		h.submitLogin(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *LoginHandler) showLogin(w http.ResponseWriter, r *http.Request) {
	// An already-authenticated client skips the challenge.
	if cookieValue, err := httputil.GetSessionFromCookie(r); err == nil {
		if _, err := h.Sessions.Validate(r.Context(), cookieValue); err == nil {
			http.Redirect(w, r, LandingPath, http.StatusFound)
			return
		}
	}

	data := loginData{UpstreamEnabled: h.upstreamEnabled()}
	if r.URL.Query().Get("error") != "" {
		data.Error = InvalidCredentialsMessage
	}
	render(w, loginTmpl, http.StatusOK, data)
}

func (h *LoginHandler) submitLogin(w http.ResponseWriter, r *http.Request) {
	// Missing form fields parse to empty strings and are still forwarded to
	// the verifier; they fail through the same path as any bad credential.
	if err := r.ParseForm(); err != nil {
		h.renderRejection(w, "")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	ok, err := h.Verifier.Verify(r.Context(), username, password)
	if err != nil {
		log.Printf("[LOGIN] Credential verification error: %v", err)
		h.renderRejection(w, username)
		return
	}
	if !ok {
		h.renderRejection(w, username)
		return
	}

	_, cookieValue, err := h.Sessions.Issue(r.Context(), username)
	if err != nil {
		log.Printf("[LOGIN] Failed to issue session for %q: %v", username, err)
		h.renderRejection(w, username)
		return
	}

	httputil.SetSessionCookie(w, cookieValue)
	http.Redirect(w, r, LandingPath, http.StatusFound)
}

// renderRejection re-renders the challenge page with the generic message.
// The username is kept for convenience; the rejected password never is.
func (h *LoginHandler) renderRejection(w http.ResponseWriter, username string) {
	render(w, loginTmpl, http.StatusOK, loginData{
		Error:           InvalidCredentialsMessage,
		Username:        username,
		UpstreamEnabled: h.upstreamEnabled(),
	})
}

func (h *LoginHandler) upstreamEnabled() bool {
	return h.Upstream != nil && h.Upstream.Enabled
}
