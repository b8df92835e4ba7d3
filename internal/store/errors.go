package store

import domainerrors "github.com/ryhaapp/ryha-server/internal/errors"

// Sentinel errors returned by the store. They are domain errors so callers
// can pass them straight through to the API layer.
var (
	ErrNotFound = domainerrors.ErrNotFound
	ErrConflict = domainerrors.Conflict("content was modified by another writer, reload and retry")
)
