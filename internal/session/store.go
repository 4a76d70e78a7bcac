// Package session persists the credentials of the last successful library build
// so they can be reused on the next visit.
package session

import (
	"context"

	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
)

// Fixed keys under which credentials are persisted.
const (
	KeyAccountID       = "steam_id"
	KeyPrimaryAPIKey   = "steam_api_key"
	KeySecondaryAPIKey = "steam_grid_api_key"
)

// ErrNotFound is returned by Get when key has no value.
var ErrNotFound = errors.NotFoundError("session key not found").Build()

// Store is a local, durable string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// BatchSetter is implemented by stores that can write several keys atomically.
type BatchSetter interface {
	SetMany(ctx context.Context, values map[string]string) error
}
