package locationlog

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Store.Get when nothing is stored at the path.
	ErrNotFound = errors.New("locationlog: blob not found")
	// ErrVersionMismatch is returned by Store.PutIfMatch when the expected version is stale.
	ErrVersionMismatch = errors.New("locationlog: version mismatch")
	// ErrNotConfigured is returned by stores that are missing required credentials.
	ErrNotConfigured = errors.New("locationlog: store not configured")
)

// Blob is the stored content at a path together with its version token.
// Content is kept in its transport encoding (base64).
type Blob struct {
	Content string
	Version string
}

// Store is a versioned blob store supporting conditional writes.
type Store interface {
	// Get returns the blob at path, or ErrNotFound.
	Get(ctx context.Context, path string) (*Blob, error)
	// PutIfMatch writes content at path if the stored version still equals version.
	// An empty version means the blob must not exist yet.
	PutIfMatch(ctx context.Context, path, content, version, message string) error
}
