package state

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("state document not found")

// Storage persists opaque JSON documents by key.
type Storage interface {
	// Read returns ErrNotFound when key has never been written or was deleted.
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, document []byte) error
	Delete(ctx context.Context, key string) error
	Backend() string
	Close() error
}
