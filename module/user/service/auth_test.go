package service

import (
	"context"
	"testing"

	"Connectify/module/user/store"
	"Connectify/tools/errs"
	"Connectify/tools/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) *Auth {
	t.Helper()
	return NewAuth(store.NewMemUserStore(), NewMemSessionStore(),
		security.DefaultOptions([]byte("test-secret")))
}

func TestRegisterAndVerify(t *testing.T) {
	a := newAuth(t)
	ctx := context.Background()

	u, token, err := a.Register(ctx, "alice", "hunter22", "")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "hunter22", u.PasswordHash)

	got, err := a.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got)
}

func TestRegisterValidation(t *testing.T) {
	a := newAuth(t)
	ctx := context.Background()

	_, _, err := a.Register(ctx, "ab", "hunter22", "")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, _, err = a.Register(ctx, "alice", "short", "")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, _, err = a.Register(ctx, "alice", "hunter22", "")
	require.NoError(t, err)
	_, _, err = a.Register(ctx, "alice", "hunter22", "")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestLoginFailuresLookIdentical(t *testing.T) {
	a := newAuth(t)
	ctx := context.Background()

	_, _, err := a.Register(ctx, "alice", "hunter22", "")
	require.NoError(t, err)

	_, _, errWrongPass := a.Login(ctx, "alice", "wrong")
	_, _, errNoUser := a.Login(ctx, "nobody", "hunter22")

	require.Error(t, errWrongPass)
	require.Error(t, errNoUser)
	assert.ErrorIs(t, errWrongPass, errs.ErrUnauthorized)
	assert.ErrorIs(t, errNoUser, errs.ErrUnauthorized)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestLogoutRevokesToken(t *testing.T) {
	a := newAuth(t)
	ctx := context.Background()

	u, token, err := a.Register(ctx, "alice", "hunter22", "")
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, u.ID, token))

	_, err = a.VerifyToken(ctx, token)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	a := newAuth(t)
	_, err := a.VerifyToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}
