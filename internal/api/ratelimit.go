package api

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/ratelimit"
)

// limitLogin rejects login attempts over the per-IP budget with 429.
func (s *Server) limitLogin(ctx huma.Context, next func(huma.Context)) {
	s.limitPerIP(ctx, next, s.loginLimiter, "login", "too many login attempts, try again later")
}

// limitSpeech bounds read-aloud requests, which may call the speech model.
func (s *Server) limitSpeech(ctx huma.Context, next func(huma.Context)) {
	s.limitPerIP(ctx, next, s.speechLimiter, "speech", "too many audio requests, try again later")
}

func (s *Server) limitPerIP(ctx huma.Context, next func(huma.Context), l *ratelimit.KeyedRateLimiter, name, msg string) {
	key := clientIP(ctx)
	if !l.Allow(key) {
		s.logger.Warn("rate limit exceeded", "limit", name, "ip", key)
		s.writeErr(ctx, &domainerrors.Error{
			Code:    domainerrors.CodeRateLimited,
			Message: msg,
		})
		return
	}
	next(ctx)
}

// clientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func clientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := ctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
