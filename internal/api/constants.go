package api

// Listing limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800, immutable"
	CacheNoStore = "no-store"
)
