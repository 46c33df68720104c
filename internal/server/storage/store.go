// Package storage abstracts the object store holding uploaded file bytes.
package storage

import (
	"context"
	"io"
)

// ObjectStore is write-once binary storage with public URL resolution.
type ObjectStore interface {
	// Put stores body under key. Keys are never overwritten; storing to an
	// existing key is an error.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// PublicURL resolves the publicly retrievable URL for a stored key.
	PublicURL(key string) string

	// Delete frees the object stored under key.
	Delete(ctx context.Context, key string) error
}
