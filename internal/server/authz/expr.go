// Package authz implements declarative per-operation access requirements
// and their evaluation against a session principal.
//
// A requirement is one of: NoAuth (public), AnyAuth (any authenticated
// session), or RoleExpr (a boolean formula over role flags). Role formulas
// are small expression trees, so operator precedence is fixed by the shape
// of the tree rather than by parsing, and evaluation is a pure field read.
package authz

import "github.com/avolkov/authgate/internal/server/session"

// Expr is a boolean formula over role flags, evaluated structurally
// against a principal.
type Expr interface {
	Eval(p *session.Principal) bool
}

type role int

const (
	// Admin is satisfied when the principal's IsAdmin flag is set.
	Admin role = iota
	// PremiumUser is satisfied when the principal's IsPremium flag is set.
	PremiumUser
)

func (r role) Eval(p *session.Principal) bool {
	switch r {
	case Admin:
		return p.IsAdmin
	case PremiumUser:
		return p.IsPremium
	}
	return false
}

type and []Expr

func (a and) Eval(p *session.Principal) bool {
	for _, e := range a {
		if !e.Eval(p) {
			return false
		}
	}
	return true
}

type or []Expr

func (o or) Eval(p *session.Principal) bool {
	for _, e := range o {
		if e.Eval(p) {
			return true
		}
	}
	return false
}

// And is true when every operand is true.
func And(exprs ...Expr) Expr { return and(exprs) }

// Or is true when at least one operand is true.
func Or(exprs ...Expr) Expr { return or(exprs) }
