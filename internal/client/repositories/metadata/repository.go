// Package metadata persists small client-side key/value settings in the
// local SQLite file, most importantly the login session.
package metadata

import "context"

// Repository is a string key/value store. Get returns ("", false, nil) for
// missing keys.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
