package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MemoryBackend is an in-memory implementation of Backend for testing.
// It stores blobs in a map and is safe for concurrent use.
type MemoryBackend struct {
	blobs map[string]memoryBlob
	mu    sync.RWMutex
}

type memoryBlob struct {
	data        []byte
	contentType string
}

// NewMemoryBackend creates a new in-memory backend instance.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		blobs: make(map[string]memoryBlob),
	}
}

var _ Backend = (*MemoryBackend)(nil)

// Put stores data at the given key.
func (s *MemoryBackend) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = memoryBlob{
		data:        data,
		contentType: contentType,
	}

	return nil
}

// Delete removes the blob at the given key. Missing keys return ErrNotFound.
func (s *MemoryBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blobs[key]; !exists {
		return ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

func (s *MemoryBackend) PublicURL(key string) string {
	return "http://test-storage/" + key
}

func (s *MemoryBackend) KeyFromURL(publicURL string) (string, error) {
	key := strings.TrimPrefix(publicURL, "http://test-storage/")
	if key == publicURL {
		return "", ErrForeignURL
	}
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *MemoryBackend) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// GetData returns the raw data for a key (test helper).
func (s *MemoryBackend) GetData(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, exists := s.blobs[key]
	if !exists {
		return nil, false
	}
	return blob.data, true
}

// GetContentType returns the content type for a key (test helper).
func (s *MemoryBackend) GetContentType(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, exists := s.blobs[key]
	if !exists {
		return "", false
	}
	return blob.contentType, true
}

// Clear removes all blobs (test helper).
func (s *MemoryBackend) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs = make(map[string]memoryBlob)
}

// Count returns the number of stored blobs (test helper).
func (s *MemoryBackend) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
