package authz

import "github.com/avolkov/authgate/internal/server/session"

type kind int

const (
	noAuth kind = iota
	anyAuth
	roleExpr
)

// Requirement is the access declaration attached to a guarded operation.
// It is fixed at definition time and never recomputed at runtime.
type Requirement struct {
	kind kind
	expr Expr
}

var (
	// NoAuth marks a public operation: no session is required, and a
	// present principal is informational only.
	NoAuth = Requirement{kind: noAuth}

	// AnyAuth requires a present principal with any role.
	AnyAuth = Requirement{kind: anyAuth}
)

// RoleExpr requires a present principal whose role flags satisfy e.
func RoleExpr(e Expr) Requirement {
	return Requirement{kind: roleExpr, expr: e}
}

// Authorize evaluates req against p (nil means no session). It is pure and
// synchronous; callers must consult it before the guarded operation body
// runs and must not run the body when it returns false.
func Authorize(req Requirement, p *session.Principal) bool {
	switch req.kind {
	case noAuth:
		return true
	case anyAuth:
		return p != nil
	case roleExpr:
		return p != nil && req.expr.Eval(p)
	}
	return false
}

// Rules maps operation identifiers to their access requirements. The table
// is built once at startup; operations missing from it are denied.
type Rules map[string]Requirement

func (r Rules) Authorize(op string, p *session.Principal) bool {
	req, ok := r[op]
	if !ok {
		return false
	}
	return Authorize(req, p)
}
