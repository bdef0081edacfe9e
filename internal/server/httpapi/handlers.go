package httpapi

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/avolkov/authgate/internal/common"
)

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	handle, fresh := s.sessionHandle(r)

	p, err := s.auth.Login(r.Context(), handle, r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if fresh {
		setSessionCookie(w, handle)
	}
	fmt.Fprintf(w, "welcome, %s\n", p.Username)
}

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	handle, fresh := s.sessionHandle(r)

	p, err := s.auth.Signup(r.Context(), handle,
		r.PostFormValue("username"),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
		r.PostFormValue("confirmation"),
		remoteIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if fresh {
		setSessionCookie(w, handle)
	}
	w.WriteHeader(http.StatusCreated)
	fmt.Fprintf(w, "welcome, %s\n", p.Username)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	handle := ""
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		handle = cookie.Value
	}

	if err := s.auth.Logout(r.Context(), handle); err != nil {
		s.writeError(w, r, err)
		return
	}

	clearSessionCookie(w)
	fmt.Fprintln(w, "goodbye")
}

func (s *HTTPServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	current, _ := PrincipalFromContext(r.Context())
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	p, err := s.auth.UpdateSettings(r.Context(), cookie.Value, current,
		r.PostFormValue("username"),
		r.PostFormValue("admin") == "on",
		r.PostFormValue("premium") == "on")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fmt.Fprintf(w, "settings saved for %s\n", p.Username)
}

func (s *HTTPServer) handleAdmin(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	fmt.Fprintf(w, "admin area: hello, %s\n", p.Username)
}

func (s *HTTPServer) handlePremium(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	fmt.Fprintf(w, "premium area: hello, %s\n", p.Username)
}

// writeError maps error kinds to user-visible messages. Validation errors
// echo their message so the form can be corrected; everything else gets a
// fixed body so internals never leak.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, common.ErrBadCredentials):
		http.Error(w, "incorrect username or password", http.StatusUnauthorized)
	case errors.Is(err, common.ErrForbidden):
		http.Error(w, "not authorized", http.StatusForbidden)
	default:
		s.logger.Error(r.Context(), "request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// remoteIP returns the client's observed source address without the port.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
