package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap keeps the tests fast.
var cheap = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPasswordWith("correct horse battery staple", cheap)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))
	require.NoError(t, ValidateHash(hash))

	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "Correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, strings.Repeat("x", maxPasswordLength+1)))

	other, err := HashPasswordWith("correct horse battery staple", cheap)
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts differ")
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
	_, err = HashPassword(strings.Repeat("x", maxPasswordLength+1))
	assert.Error(t, err)
}

func TestValidateHash_Malformed(t *testing.T) {
	for _, h := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
	} {
		assert.ErrorIs(t, ValidateHash(h), ErrMalformedHash, h)
		assert.False(t, VerifyPassword(h, "anything"))
	}
}

func TestLoadOrGenerateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "auth.key")

	key, err := LoadOrGenerateKey(path)
	require.NoError(t, err)
	assert.Len(t, key, keyLength)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := LoadOrGenerateKey(path)
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestLoadOrGenerateKey_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := LoadOrGenerateKey(path)
	assert.ErrorContains(t, err, "invalid auth key length")
}

func newTestTokens(t *testing.T) *TokenService {
	t.Helper()
	key, err := LoadOrGenerateKey(filepath.Join(t.TempDir(), "auth.key"))
	require.NoError(t, err)
	ts, err := NewTokenService(key, time.Hour)
	require.NoError(t, err)
	return ts
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	ts := newTestTokens(t)

	token, issued, err := ts.Issue("admin@ryha.dev")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))
	assert.True(t, strings.HasPrefix(issued.TokenID, "tok-"))

	session, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@ryha.dev", session.Email)
	assert.Equal(t, issued.TokenID, session.TokenID)
	assert.True(t, issued.ExpiresAt.Equal(session.ExpiresAt))
}

func TestTokenService_Expired(t *testing.T) {
	ts := newTestTokens(t)
	start := time.Now()
	ts.now = func() time.Time { return start }

	token, _, err := ts.Issue("admin@ryha.dev")
	require.NoError(t, err)

	ts.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsForeignKeyAndGarbage(t *testing.T) {
	issuer := newTestTokens(t)
	verifier := newTestTokens(t)

	token, _, err := issuer.Issue("admin@ryha.dev")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_Validation(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Hour)
	assert.Error(t, err)
	_, err = NewTokenService(make([]byte, keyLength), 0)
	assert.Error(t, err)
}
