package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ryhaapp/ryha-server/internal/auth"
	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/logger"
)

// dummyHash is verified when the email does not match so that unknown and
// known emails take the same time.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=4$c29tZXNhbHRzb21lc2FsdA$zvuIo7bLDgIN5mjhGzWWXFZ3gVKzkZ5R/BSk0GEbg9c"

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string               `json:"accessToken"`
	TokenType   string               `json:"tokenType"`
	ExpiresIn   int                  `json:"expiresIn"`
	Session     *domain.AdminSession `json:"session"`
}

// AuthService authenticates the single admin account defined in
// configuration.
type AuthService struct {
	tokens *auth.TokenService
	email  string
	hash   string
	logger *slog.Logger
}

// NewAuthService creates the service. A plain AdminPassword is hashed here;
// without an admin email every login fails.
func NewAuthService(tokens *auth.TokenService, cfg config.AuthConfig, log *slog.Logger) (*AuthService, error) {
	s := &AuthService{
		tokens: tokens,
		email:  strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		hash:   cfg.AdminPasswordHash,
		logger: logger.OrDiscard(log),
	}

	switch {
	case s.email == "":
		s.logger.Warn("no admin account configured, admin API is unavailable")
	case s.hash != "":
		if err := auth.ValidateHash(s.hash); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
	case cfg.AdminPassword != "":
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		s.hash = hash
		s.logger.Warn("using plain admin password from configuration, set ADMIN_PASSWORD_HASH instead")
	default:
		return nil, fmt.Errorf("admin account %s has no password", s.email)
	}
	return s, nil
}

// Enabled reports whether an admin account is configured.
func (s *AuthService) Enabled() bool {
	return s.email != ""
}

// Login checks the admin credentials and issues an access token.
func (s *AuthService) Login(_ context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash := dummyHash
	if s.Enabled() && email == s.email {
		hash = s.hash
	}
	if !auth.VerifyPassword(hash, password) || hash == dummyHash {
		s.logger.Warn("failed admin login", "email", email)
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	token, session, err := s.tokens.Issue(s.email)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "issue access token")
	}

	s.logger.Info("admin logged in", "email", s.email, "token_id", session.TokenID)
	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokens.Duration().Seconds()),
		Session:     session,
	}, nil
}

// Authenticate verifies an access token and returns its session. Tokens for
// an email other than the configured admin are rejected.
func (s *AuthService) Authenticate(_ context.Context, token string) (*domain.AdminSession, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	session, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}
	if !s.Enabled() || session.Email != s.email {
		return nil, domainerrors.Unauthorized("token does not belong to the admin account")
	}
	return session, nil
}
