// Package users provides keyed persistence for account records:
// insert and lookup-by-username.
package users

import (
	"context"

	"github.com/avolkov/authgate/internal/server/models"
)

// Repository is the credential store contract. Insert returns
// common.ErrAlreadyExists when the username is already taken; GetByUsername
// returns common.ErrNotFound when no record matches. Any other error is a
// genuine store failure.
type Repository interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
