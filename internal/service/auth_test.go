package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryhaapp/ryha-server/internal/auth"
	"github.com/ryhaapp/ryha-server/internal/config"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
)

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	key, err := auth.LoadOrGenerateKey(filepath.Join(t.TempDir(), "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)
	return tokens
}

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	svc, err := NewAuthService(newTokenService(t), config.AuthConfig{
		AdminEmail:    "Admin@Ryha.dev",
		AdminPassword: "s3cret-passphrase",
	}, nil)
	require.NoError(t, err)
	return svc
}

func TestAuth_LoginAndAuthenticate(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, " admin@ryha.dev ", "s3cret-passphrase")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, 3600, res.ExpiresIn)

	session, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@ryha.dev", session.Email)
	assert.Equal(t, res.Session.TokenID, session.TokenID)
}

func TestAuth_LoginRejects(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin@ryha.dev", "wrong")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))

	_, err = svc.Login(ctx, "someone@else.dev", "s3cret-passphrase")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuth_AuthenticateRejects(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	_, err = svc.Authenticate(ctx, "v4.local.garbage")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	// A token from another key is not accepted.
	other := newAuthService(t)
	res, err := other.Login(ctx, "admin@ryha.dev", "s3cret-passphrase")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, res.AccessToken)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestAuth_NoAdminConfigured(t *testing.T) {
	svc, err := NewAuthService(newTokenService(t), config.AuthConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, svc.Enabled())

	_, err = svc.Login(context.Background(), "", "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuth_ConfigErrors(t *testing.T) {
	_, err := NewAuthService(newTokenService(t), config.AuthConfig{AdminEmail: "a@b.c"}, nil)
	assert.Error(t, err)

	_, err = NewAuthService(newTokenService(t), config.AuthConfig{AdminEmail: "a@b.c", AdminPasswordHash: "nope"}, nil)
	assert.ErrorIs(t, err, auth.ErrMalformedHash)
}
