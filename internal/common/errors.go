// Package common defines sentinel errors shared across the authgate server
// layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Validation errors (user-correctable; the boundary re-displays the
	// originating form with the message).
	ErrValidation           = errors.New("validation error")
	ErrUsernameFormat       = fmt.Errorf("%w: invalid username format", ErrValidation)
	ErrUsernameTaken        = fmt.Errorf("%w: username taken", ErrValidation)
	ErrPasswordConfirmation = fmt.Errorf("%w: password confirmation does not match", ErrValidation)

	// Credential errors. Unknown username and wrong password surface the same
	// value so account existence is not revealed.
	ErrBadCredentials = errors.New("incorrect username or password")

	// Authorization errors.
	ErrForbidden = errors.New("not authorized")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")
)
