package http

import (
	"net/http"

	"github.com/sau-portal/auth-gateway/internal/service/gateway"
	"github.com/sau-portal/auth-gateway/internal/service/session"
	"github.com/sau-portal/auth-gateway/internal/transport/http/middleware"
)

// NewMux wires the public auth endpoints and the filtered portal routes.
// Everything except the auth flow and the health probe sits behind the
// access filter.
func NewMux(
	login *LoginHandler,
	logout *LogoutHandler,
	portal *PortalHandler,
	upstream *UpstreamHandler,
	filter *gateway.Filter,
	sessions *session.Service,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", login.Login)
	mux.HandleFunc("/auth/logout", logout.Logout)

	if upstream != nil && upstream.Config != nil && upstream.Config.Enabled {
		mux.HandleFunc("/auth/upstream/login", upstream.UpstreamLogin)
		mux.HandleFunc("/auth/upstream/callback", upstream.UpstreamCallback)
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.AccessFilter(h, filter, sessions)
	}

	mux.HandleFunc("/", protected(portal.Dashboard))
	mux.HandleFunc("/pruefungen", protected(portal.Grades))
	mux.HandleFunc("/dokumente", protected(portal.Documents))

	return mux
}
