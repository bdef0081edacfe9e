package session

import "context"

// Store is the externally owned handle→principal cell. The core treats it
// as a simple mutable cell with exactly these four operations.
//
// Get returns (nil, nil) when no principal is attached to the handle; an
// error means a genuine store failure, never "absent". Replace only writes
// over an existing principal and returns common.ErrNotFound when the
// session is gone, so an expired session cannot be brought back to life.
// Destroy is idempotent. Implementations must make reading and writing a
// given handle's principal atomic with respect to concurrent requests on
// the same session.
type Store interface {
	Attach(ctx context.Context, handle string, p *Principal) error
	Get(ctx context.Context, handle string) (*Principal, error)
	Replace(ctx context.Context, handle string, p *Principal) error
	Destroy(ctx context.Context, handle string) error
}
