package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/auth"
	"github.com/farellandr/coursehub/internal/policy"
)

func newUserFixture() (*store, *UserService, *auth.TokenManager) {
	st := newStore()
	tokens := auth.NewTokenManager("a", "r", time.Minute, time.Hour)
	return st, NewUserService(fakeUserRepo{store: st}, auth.NewPasswordHasher(bcrypt.MinCost), tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	st, svc, tokens := newUserFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: " Student@Example.com ", Password: "secret123", City: "Almaty"})
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.Password)

	_, err = svc.Register(ctx, RegisterInput{Email: "student@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)

	pair, err := svc.Login(ctx, "student@example.com", "secret123")
	require.NoError(t, err)
	claims, err := tokens.ValidateAccessToken(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.NotNil(t, st.users[user.ID].LastLogin)

	access, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
}

func TestLoginFailures(t *testing.T) {
	st, svc, _ := newUserFixture()
	ctx := context.Background()
	user, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "missing@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	st.users[user.ID].IsActive = false
	_, err = svc.Login(ctx, "a@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestRefreshRechecksStoredUser(t *testing.T) {
	st, svc, tokens := newUserFixture()
	ctx := context.Background()
	user, err := svc.Register(ctx, RegisterInput{Email: "staff@example.com", Password: "secret123"})
	require.NoError(t, err)
	st.users[user.ID].IsStaff = true

	pair, err := svc.Login(ctx, "staff@example.com", "secret123")
	require.NoError(t, err)
	claims, err := tokens.ValidateAccessToken(pair.Access)
	require.NoError(t, err)
	assert.True(t, claims.IsStaff)

	st.users[user.ID].IsStaff = false
	access, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	claims, err = tokens.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.False(t, claims.IsStaff)

	st.users[user.ID].IsActive = false
	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	delete(st.users, user.ID)
	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	_, svc, _ := newUserFixture()
	ctx := context.Background()
	user, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret123"})
	require.NoError(t, err)

	p := &policy.Principal{UserID: user.ID}
	updated, err := svc.UpdateProfile(ctx, p, ProfileInput{Phone: ptr("+7 700 000 00 00"), Avatar: ptr("uploads/avatars/x.png")})
	require.NoError(t, err)
	assert.Equal(t, "+7 700 000 00 00", updated.Phone)
	assert.Equal(t, "uploads/avatars/x.png", updated.Avatar)

	_, err = svc.Profile(ctx, nil)
	assert.ErrorIs(t, err, apperrors.ErrAuthenticationRequired)
}
