// Package auth implements the authentication flow controller: login,
// signup, logout, and self-service settings changes. It is the only entry
// point that mutates authentication state; callers never touch the
// credential store directly.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/avolkov/authgate/internal/common"
	"github.com/avolkov/authgate/internal/logging"
	"github.com/avolkov/authgate/internal/server/models"
	"github.com/avolkov/authgate/internal/server/password"
	"github.com/avolkov/authgate/internal/server/repositories/users"
	"github.com/avolkov/authgate/internal/server/session"
)

// usernamePattern is the syntactic constraint checked before any store
// access. Length is configured separately.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type Service struct {
	users          users.Repository
	codec          *password.Codec
	sessions       session.Store
	logger         logging.Logger
	maxUsernameLen int
}

func NewService(repo users.Repository, codec *password.Codec, sessions session.Store, l logging.Logger, maxUsernameLen int) *Service {
	return &Service{
		users:          repo,
		codec:          codec,
		sessions:       sessions,
		logger:         l.With("module", "auth"),
		maxUsernameLen: maxUsernameLen,
	}
}

func (s *Service) validateUsername(username string) error {
	if username == "" || len(username) > s.maxUsernameLen || !usernamePattern.MatchString(username) {
		return common.ErrUsernameFormat
	}
	return nil
}

// Login verifies the credentials and attaches a fresh principal to the
// session handle. An unknown username and a wrong password surface the same
// common.ErrBadCredentials. Role flags are not read from the store: every
// freshly logged-in principal starts with both flags unset.
func (s *Service) Login(ctx context.Context, handle, username, plaintext string) (*session.Principal, error) {
	if err := s.validateUsername(username); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrBadCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrInternal
	}

	if !s.codec.Verify(plaintext, user.PasswordSalt, user.PasswordHash) {
		return nil, common.ErrBadCredentials
	}

	p := &session.Principal{Username: user.Username}
	if err := s.sessions.Attach(ctx, handle, p); err != nil {
		return nil, fmt.Errorf("attaching session: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "username", user.Username)
	return p, nil
}

// Signup validates the request, persists a new user record, and attaches a
// freshly authenticated principal identical in shape to Login's. remoteAddr
// is recorded as the account's last known source address.
func (s *Service) Signup(ctx context.Context, handle, username, email, plaintext, confirmation, remoteAddr string) (*session.Principal, error) {
	if err := s.validateUsername(username); err != nil {
		return nil, err
	}
	if plaintext != confirmation {
		return nil, common.ErrPasswordConfirmation
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrInternal
	}

	salt, hash, err := s.codec.Hash(plaintext)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrInternal
	}

	user := &models.User{
		Username:     username,
		PasswordSalt: salt,
		PasswordHash: hash,
		Email:        email,
		LastIP:       remoteAddr,
	}

	if _, err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			// Lost a concurrent signup race for the same username.
			return nil, common.ErrUsernameTaken
		}
		s.logger.Error(ctx, "user insert failed", "error", err)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	p := &session.Principal{Username: username}
	if err := s.sessions.Attach(ctx, handle, p); err != nil {
		return nil, fmt.Errorf("attaching session: %w", err)
	}

	s.logger.Info(ctx, "user signed up", "username", username)
	return p, nil
}

// Logout destroys the session's principal. Calling it without an active
// session is a no-op, not an error.
func (s *Service) Logout(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, handle)
}

// UpdateSettings overwrites the current principal's username and role flags
// and re-attaches it to the session. The caller's existing roles are not
// consulted: any authenticated user can set either flag. The user record in
// the credential store is not touched.
func (s *Service) UpdateSettings(ctx context.Context, handle string, current *session.Principal, newUsername string, admin, premium bool) (*session.Principal, error) {
	if current == nil {
		return nil, common.ErrForbidden
	}
	if err := s.validateUsername(newUsername); err != nil {
		return nil, err
	}

	current.Username = newUsername
	current.IsAdmin = admin
	current.IsPremium = premium

	if err := s.sessions.Replace(ctx, handle, current); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Session expired between the guard's read and this write.
			return nil, common.ErrForbidden
		}
		return nil, fmt.Errorf("replacing session: %w", err)
	}

	return current, nil
}
