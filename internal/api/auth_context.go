package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const sessionKey ctxKey = "adminSession"

// adminSecurity marks an operation as bearer-protected in the OpenAPI doc.
var adminSecurity = []map[string][]string{{"bearer": {}}}

// SessionFromContext returns the admin session attached by the guard.
func SessionFromContext(ctx context.Context) (*domain.AdminSession, bool) {
	session, ok := ctx.Value(sessionKey).(*domain.AdminSession)
	return session, ok && session != nil
}

// WithSession attaches an admin session to ctx.
func WithSession(ctx context.Context, session *domain.AdminSession) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// requireSession returns the session attached by the guard or 401.
func requireSession(ctx context.Context) (*domain.AdminSession, error) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	return session, nil
}

// requireAdmin is the operation middleware of every admin route. Requests
// without a valid bearer token never reach the handler.
func (s *Server) requireAdmin(ctx huma.Context, next func(huma.Context)) {
	token, err := bearerToken(ctx.Header("Authorization"))
	if err != nil {
		s.writeErr(ctx, err)
		return
	}

	session, err := s.services.Auth.Authenticate(ctx.Context(), token)
	if err != nil {
		s.writeErr(ctx, err)
		return
	}

	next(huma.WithValue(ctx, sessionKey, session))
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domainerrors.Unauthorized("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", domainerrors.Unauthorized("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}

// writeErr writes err from inside an operation middleware.
func (s *Server) writeErr(ctx huma.Context, err error) {
	status := http.StatusInternalServerError
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		status = domainErr.HTTPStatus()
	}
	if werr := huma.WriteErr(s.api, ctx, status, err.Error(), err); werr != nil {
		s.logger.Error("failed to write error response", "error", werr)
	}
}
