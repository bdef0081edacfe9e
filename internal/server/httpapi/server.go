// Package httpapi is the HTTP boundary of the auth core. It dispatches
// form-based requests, extracts the session principal before any guarded
// handler runs, and is the only layer that maps error kinds to user-visible
// messages.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/avolkov/authgate/internal/logging"
	"github.com/avolkov/authgate/internal/server/auth"
	"github.com/avolkov/authgate/internal/server/authz"
	"github.com/avolkov/authgate/internal/server/session"
)

// sessionCookie carries the opaque session handle. The handle is the only
// session state the client ever sees.
const sessionCookie = "authgate_session"

type HTTPServer struct {
	address  string
	logger   logging.Logger
	auth     *auth.Service
	sessions session.Store
	rules    authz.Rules
}

func NewHTTPServer(a string, l logging.Logger, as *auth.Service, sessions session.Store) *HTTPServer {
	return &HTTPServer{
		address:  a,
		logger:   l.With("module", "http_server"),
		auth:     as,
		sessions: sessions,
		rules:    defaultRules(),
	}
}

// defaultRules is the per-operation access requirement table, fixed at
// startup and consulted by the guard with a single Authorize call.
func defaultRules() authz.Rules {
	return authz.Rules{
		"login":    authz.NoAuth,
		"signup":   authz.NoAuth,
		"logout":   authz.NoAuth,
		"settings": authz.AnyAuth,
		"admin":    authz.RoleExpr(authz.Admin),
		"premium":  authz.RoleExpr(authz.Or(authz.Admin, authz.PremiumUser)),
	}
}

// Handler builds the route table. Every route passes through the guard,
// which resolves the principal and checks the operation's requirement
// before the handler body runs.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", s.guard("login", s.handleLogin))
	mux.HandleFunc("POST /signup", s.guard("signup", s.handleSignup))
	mux.HandleFunc("POST /logout", s.guard("logout", s.handleLogout))
	mux.HandleFunc("POST /settings", s.guard("settings", s.handleSettings))
	mux.HandleFunc("GET /admin", s.guard("admin", s.handleAdmin))
	mux.HandleFunc("GET /premium", s.guard("premium", s.handlePremium))

	return mux
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
