package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	ErrNotFound     = errors.New("storage: blob not found")
	ErrInvalidKey   = errors.New("storage: invalid key")
	ErrAccessDenied = errors.New("storage: access denied")
	ErrForeignURL   = errors.New("storage: url does not belong to this backend")
)

// Backend is a storage medium for uploaded blobs. Implementations must be
// safe for concurrent use; every upload targets a freshly generated key, so
// no coordination between concurrent Puts is required.
type Backend interface {
	// Put writes the blob under key. The blob is publicly servable once
	// Put returns nil; a failure after a partial write may leave an
	// orphaned blob behind, which the caller is expected to Delete.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Delete removes the blob under key. Deleting a key that does not
	// exist returns ErrNotFound where the medium can tell, nil otherwise.
	Delete(ctx context.Context, key string) error

	// PublicURL builds the public URL for key from configuration alone.
	// It performs no network call and does not check existence.
	PublicURL(key string) string

	// KeyFromURL is the inverse of PublicURL.
	KeyFromURL(publicURL string) (string, error)

	HealthCheck(ctx context.Context) error
}

// Config holds object-store backend settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string

	// PublicBaseURL overrides the URL prefix blobs are served from,
	// e.g. a CDN in front of the bucket. Defaults to the endpoint.
	PublicBaseURL string
}

// ValidateKey rejects keys that are empty or escape the backend namespace.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	return nil
}
