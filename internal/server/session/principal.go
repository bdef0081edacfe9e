// Package session holds the authenticated identity attached to a session
// and the store that owns the handle→principal mapping.
package session

import "github.com/google/uuid"

// Principal is the identity carried for the lifetime of one session: the
// username plus the role flags the authorization engine evaluates. It is
// owned by exactly one session and never shared across sessions.
//
// Role flags are not persisted alongside the user record, so a freshly
// authenticated principal always starts with both flags unset.
type Principal struct {
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	IsPremium bool   `json:"is_premium"`
}

// NewHandle returns a fresh opaque session handle.
func NewHandle() string {
	return uuid.NewString()
}
