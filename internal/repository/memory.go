package repository

import (
	"context"
	"sync"

	"geo-tracker/internal/locationlog"

	"github.com/google/uuid"
)

type memoryBlob struct {
	content string
	version string
	message string
}

// MemoryStore is an in-process locationlog.Store. It is used for local
// development and as the fake store in tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string]memoryBlob
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

// Get returns the blob stored at path
func (s *MemoryStore) Get(ctx context.Context, path string) (*locationlog.Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[path]
	if !ok {
		return nil, locationlog.ErrNotFound
	}
	return &locationlog.Blob{Content: b.content, Version: b.version}, nil
}

// PutIfMatch stores content at path if version matches the stored version
func (s *MemoryStore) PutIfMatch(ctx context.Context, path, content, version, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[path]
	if (ok && b.version != version) || (!ok && version != "") {
		return locationlog.ErrVersionMismatch
	}

	s.blobs[path] = memoryBlob{
		content: content,
		version: uuid.NewString(),
		message: message,
	}
	return nil
}

// LastMessage returns the message of the last write at path
func (s *MemoryStore) LastMessage(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs[path].message
}
