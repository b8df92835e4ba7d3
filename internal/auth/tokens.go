package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	jsoniter "github.com/json-iterator/go"

	"github.com/ryhaapp/ryha-server/internal/domain"
	"github.com/ryhaapp/ryha-server/internal/id"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	tokenIssuer   = "ryha-server"
	tokenAudience = "ryha-admin"
)

// ErrInvalidToken is returned for tokens that fail decryption or any claim
// rule, including expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// claims is the decrypted payload of an access token.
type claims struct {
	Email      string    `json:"email"`
	Subject    string    `json:"sub"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// TokenService issues and verifies PASETO v4.local access tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, duration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be %d bytes, got %d", keyLength, len(key))
	}
	if duration <= 0 {
		return nil, fmt.Errorf("token duration must be positive")
	}
	k, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}
	return &TokenService{key: k, duration: duration, now: time.Now}, nil
}

// Duration returns the lifetime of issued tokens.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}

// Issue creates an access token for the admin with email.
func (s *TokenService) Issue(email string) (string, *domain.AdminSession, error) {
	now := s.now().UTC().Truncate(time.Second)

	tokenID, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", nil, fmt.Errorf("generate token id: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(email)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.duration))
	token.SetJti(tokenID)
	//nolint:errcheck // Set only fails for values that cannot be marshaled
	_ = token.Set("email", email)

	session := &domain.AdminSession{
		Email:     email,
		TokenID:   tokenID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.duration),
	}
	return token.V4Encrypt(s.key, nil), session, nil
}

// Verify decrypts token and checks its claims.
func (s *TokenService) Verify(token string) (*domain.AdminSession, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	parsed, err := parser.ParseV4Local(s.key, token, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var c claims
	if err := json.Unmarshal(parsed.ClaimsJSON(), &c); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", ErrInvalidToken, err)
	}
	if c.Email == "" || c.Email != c.Subject {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &domain.AdminSession{
		Email:     c.Email,
		TokenID:   c.TokenID,
		IssuedAt:  c.IssuedAt,
		ExpiresAt: c.Expiration,
	}, nil
}
