package domain

import "time"

// AdminSession identifies the authenticated administrator of a request.
// It is attached to the request context by the routing layer and passed
// explicitly to whatever needs to know who is acting.
type AdminSession struct {
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s AdminSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
