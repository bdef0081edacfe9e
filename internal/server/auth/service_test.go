package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/authgate/internal/common"
	"github.com/avolkov/authgate/internal/logging"
	"github.com/avolkov/authgate/internal/server/models"
	"github.com/avolkov/authgate/internal/server/password"
	"github.com/avolkov/authgate/internal/server/repositories/users"
	"github.com/avolkov/authgate/internal/server/session"
)

func newTestService(t *testing.T) (*Service, *users.MemoryRepository, *session.MemoryStore) {
	t.Helper()

	codec, err := password.NewCodec(bcrypt.MinCost)
	require.NoError(t, err)

	repo := users.NewMemoryRepository()
	sessions := session.NewMemoryStore()
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))

	return NewService(repo, codec, sessions, logger, 32), repo, sessions
}

func TestSignupThenLogin(t *testing.T) {
	s, _, sessions := newTestService(t)
	ctx := context.Background()

	p, err := s.Signup(ctx, "h1", "alice", "a@x.com", "pw1", "pw1", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.False(t, p.IsAdmin)
	assert.False(t, p.IsPremium)

	attached, err := sessions.Get(ctx, "h1")
	require.NoError(t, err)
	require.NotNil(t, attached)
	assert.Equal(t, "alice", attached.Username)

	p2, err := s.Login(ctx, "h2", "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p2.Username)
	assert.False(t, p2.IsAdmin)
	assert.False(t, p2.IsPremium)
}

func TestSignup_RecordsAccountFields(t *testing.T) {
	s, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Signup(ctx, "h1", "alice", "a@x.com", "pw1", "pw1", "10.0.0.1")
	require.NoError(t, err)

	u, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "10.0.0.1", u.LastIP)
	assert.NotEmpty(t, u.PasswordSalt)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "pw1", u.PasswordHash)
}

func TestSignup_ConfirmationMismatchWritesNothing(t *testing.T) {
	s, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Signup(ctx, "h1", "alice", "a@x.com", "pw1", "pw2", "")
	assert.ErrorIs(t, err, common.ErrPasswordConfirmation)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = repo.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSignup_UsernameTaken(t *testing.T) {
	s, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Signup(ctx, "h1", "bob", "", "pw", "pw", "")
	require.NoError(t, err)

	_, err = s.Signup(ctx, "h2", "bob", "", "pw", "pw", "")
	assert.ErrorIs(t, err, common.ErrUsernameTaken)

	u, err := repo.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
}

func TestSignup_InsertRaceSurfacesAsTaken(t *testing.T) {
	s, repo, _ := newTestService(t)
	ctx := context.Background()

	// Pre-insert after the lookup would have reported absent: the repo's
	// uniqueness check stands in for the losing side of a store-level race.
	_, err := repo.Insert(ctx, &models.User{Username: "carol", PasswordSalt: "s", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = s.Signup(ctx, "h1", "carol", "", "pw", "pw", "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSignup_InvalidUsernameNeverTouchesStore(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	for _, username := range []string{"", "has space", "semi;colon", "way-too-long-username-that-exceeds-the-cap"} {
		_, err := s.Signup(ctx, "h1", username, "", "pw", "pw", "")
		assert.ErrorIs(t, err, common.ErrUsernameFormat, "username %q", username)
	}
}

func TestLogin_UnknownUserAndWrongPasswordAreIndistinguishable(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Signup(ctx, "h1", "alice", "", "pw1", "pw1", "")
	require.NoError(t, err)

	_, errUnknown := s.Login(ctx, "h2", "nobody", "x")
	_, errWrongPw := s.Login(ctx, "h2", "alice", "wrongpw")

	assert.ErrorIs(t, errUnknown, common.ErrBadCredentials)
	assert.ErrorIs(t, errWrongPw, common.ErrBadCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestLogin_StoreFailureIsNotBadCredentials(t *testing.T) {
	s, _, _ := newTestService(t)
	s.users = failingRepo{}

	_, err := s.Login(context.Background(), "h1", "alice", "pw")
	assert.ErrorIs(t, err, common.ErrInternal)
	assert.NotErrorIs(t, err, common.ErrBadCredentials)
}

func TestLogout_Idempotent(t *testing.T) {
	s, _, sessions := newTestService(t)
	ctx := context.Background()

	_, err := s.Signup(ctx, "h1", "alice", "", "pw", "pw", "")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, "h1"))
	require.NoError(t, s.Logout(ctx, "h1"))
	require.NoError(t, s.Logout(ctx, ""))

	p, err := sessions.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestUpdateSettings_OverwritesAndReattaches(t *testing.T) {
	s, _, sessions := newTestService(t)
	ctx := context.Background()

	p, err := s.Signup(ctx, "h1", "alice", "", "pw", "pw", "")
	require.NoError(t, err)

	updated, err := s.UpdateSettings(ctx, "h1", p, "alice2", true, true)
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.True(t, updated.IsAdmin)
	assert.True(t, updated.IsPremium)

	attached, err := sessions.Get(ctx, "h1")
	require.NoError(t, err)
	require.NotNil(t, attached)
	assert.Equal(t, *updated, *attached)
}

func TestUpdateSettings_Idempotent(t *testing.T) {
	s, _, sessions := newTestService(t)
	ctx := context.Background()

	p, err := s.Signup(ctx, "h1", "alice", "", "pw", "pw", "")
	require.NoError(t, err)

	first, err := s.UpdateSettings(ctx, "h1", p, "alice2", true, false)
	require.NoError(t, err)
	second, err := s.UpdateSettings(ctx, "h1", first, "alice2", true, false)
	require.NoError(t, err)

	assert.Equal(t, *first, *second)

	attached, err := sessions.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, *second, *attached)
}

func TestUpdateSettings_NoPrincipal(t *testing.T) {
	s, _, _ := newTestService(t)

	_, err := s.UpdateSettings(context.Background(), "h1", nil, "alice", false, false)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestUpdateSettings_SessionGone(t *testing.T) {
	s, _, sessions := newTestService(t)
	ctx := context.Background()

	p, err := s.Signup(ctx, "h1", "alice", "", "pw", "pw", "")
	require.NoError(t, err)

	// session vanishes between the caller's read and the write
	require.NoError(t, sessions.Destroy(ctx, "h1"))

	_, err = s.UpdateSettings(ctx, "h1", p, "alice2", true, false)
	assert.ErrorIs(t, err, common.ErrForbidden)

	attached, err := sessions.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Nil(t, attached, "a settings write must not revive a destroyed session")
}

func TestUpdateSettings_ValidatesUsername(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.Signup(ctx, "h1", "alice", "", "pw", "pw", "")
	require.NoError(t, err)

	_, err = s.UpdateSettings(ctx, "h1", p, "bad name", false, false)
	assert.ErrorIs(t, err, common.ErrUsernameFormat)
}

type failingRepo struct{}

func (failingRepo) Insert(ctx context.Context, u *models.User) (*models.User, error) {
	return nil, errors.New("db down")
}

func (failingRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, errors.New("db down")
}
