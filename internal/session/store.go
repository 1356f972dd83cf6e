// Package session provides process-lifetime key/value stores for setting
// values. A session store keeps values for as long as the host application
// runs; it is the backing for the session stream.
package session

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("session store closed")

// Store is a key/value store scoped to one application session.
type Store interface {
	// Get returns the value stored under key. ok is false if the key is
	// absent; err reports I/O failures only.
	Get(ctx context.Context, key string) (value any, ok bool, err error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value any) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every stored key.
	Keys(ctx context.Context) ([]string, error)
}
