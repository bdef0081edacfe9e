package httpapi

import (
	"context"
	"net/http"

	"github.com/avolkov/authgate/internal/server/session"
)

type principalContextKey struct{}

// PrincipalFromContext returns the principal the guard attached to the
// request context, or false when the request is anonymous.
func PrincipalFromContext(ctx context.Context) (*session.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*session.Principal)
	return p, ok && p != nil
}

// guard resolves the session principal and checks op's access requirement.
// The handler body never runs when the requirement is not met: an anonymous
// request gets 401, a wrong-role request gets the fixed "not authorized"
// outcome.
func (s *HTTPServer) guard(op string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := s.principal(r)

		if !s.rules.Authorize(op, p) {
			if p == nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			http.Error(w, "not authorized", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey{}, p)
		next(w, r.WithContext(ctx))
	}
}

// principal extracts the principal attached to the request's session, or
// nil when there is no session cookie or nothing is attached. A session
// store failure is logged and treated as an anonymous request; the guard
// then rejects anything that needed authentication.
func (s *HTTPServer) principal(r *http.Request) *session.Principal {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}

	p, err := s.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		s.logger.Error(r.Context(), "session lookup failed", "error", err)
		return nil
	}
	return p
}

// sessionHandle returns the request's existing session handle or a fresh
// one, and reports whether a cookie must still be set on the response.
func (s *HTTPServer) sessionHandle(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, false
	}
	return session.NewHandle(), true
}

func setSessionCookie(w http.ResponseWriter, handle string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    handle,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
