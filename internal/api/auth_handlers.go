package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Admin login",
		Description: "Authenticates the admin account and returns an access token",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.limitLogin},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/session",
		Summary:     "Current session",
		Description: "Returns the session of the presented access token",
		Tags:        []string{"Authentication"},
		Security:    adminSecurity,
		Middlewares: huma.Middlewares{s.requireAdmin},
	}, s.handleGetSession)
}

// === DTOs ===

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Email    string `json:"email" maxLength:"254" doc:"Admin email"`
	Password string `json:"password" maxLength:"1024" doc:"Admin password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// SessionResponse describes an authenticated admin session.
type SessionResponse struct {
	Email     string    `json:"email" doc:"Admin email"`
	TokenID   string    `json:"tokenId" doc:"Access token ID"`
	IssuedAt  time.Time `json:"issuedAt" doc:"Token issue time"`
	ExpiresAt time.Time `json:"expiresAt" doc:"Token expiry time"`
}

// LoginResponse contains the access token.
type LoginResponse struct {
	AccessToken string          `json:"accessToken" doc:"PASETO access token"`
	TokenType   string          `json:"tokenType" doc:"Always Bearer"`
	ExpiresIn   int             `json:"expiresIn" doc:"Token lifetime in seconds"`
	Session     SessionResponse `json:"session" doc:"Session details"`
}

// LoginOutput wraps the login response for Huma.
type LoginOutput struct {
	Body LoginResponse
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// === Handlers ===

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	res, err := s.services.Auth.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{Body: LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
		Session: SessionResponse{
			Email:     res.Session.Email,
			TokenID:   res.Session.TokenID,
			IssuedAt:  res.Session.IssuedAt,
			ExpiresAt: res.Session.ExpiresAt,
		},
	}}, nil
}

func (s *Server) handleGetSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: SessionResponse{
		Email:     session.Email,
		TokenID:   session.TokenID,
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
	}}, nil
}
