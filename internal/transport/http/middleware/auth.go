package middleware

import (
	"context"
	"net/http"

	"github.com/sau-portal/auth-gateway/internal/domain"
	"github.com/sau-portal/auth-gateway/internal/service/gateway"
	"github.com/sau-portal/auth-gateway/internal/service/session"
	"github.com/sau-portal/auth-gateway/pkg/httputil"
)

// AccessFilter wraps every protected handler. The wrapped handler runs only
// behind a GRANT decision; CHALLENGE sends the client to the login entry
// point without carrying the requested URL along, so a protected resource is
// never reachable except back through this filter.
func AccessFilter(next http.HandlerFunc, filter *gateway.Filter, sessions *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		presented, _ := httputil.GetSessionFromCookie(r)

		decision := filter.Decide(r.Context(), presented)
		switch decision.Kind {
		case domain.DecisionGrant:
			// Refresh activity in the background; the request does not
			// wait on it.
			go sessions.Touch(context.Background(), decision.Session.Token)

			// Granted content must not be replayable from the browser
			// cache after the session dies.
			w.Header().Set("Cache-Control", "no-store")

			ctx := context.WithValue(r.Context(), "subject", decision.Session.Subject)
			ctx = context.WithValue(ctx, "session_token", decision.Session.Token)
			next.ServeHTTP(w, r.WithContext(ctx))

		case domain.DecisionChallenge:
			httputil.ClearSessionCookie(w)
			http.Redirect(w, r, "/auth/login", http.StatusFound)

		default:
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		}
	}
}
