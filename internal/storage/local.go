package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pixvault/pixvault/internal/logger"
)

var _ Backend = (*LocalBackend)(nil)

// LocalBackend stores blobs under a root directory on the local
// filesystem. Blobs are served by a separate static-file exposer under the
// configured public prefix.
type LocalBackend struct {
	root         string
	publicPrefix string
}

// NewLocalBackend creates the root directory if it does not exist.
func NewLocalBackend(root, publicPrefix string) (*LocalBackend, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	publicPrefix = strings.TrimSuffix(publicPrefix, "/")
	if publicPrefix == "" {
		publicPrefix = "/uploads"
	}

	return &LocalBackend{
		root:         root,
		publicPrefix: publicPrefix,
	}, nil
}

// Put writes to a temp file and renames it into place, so readers of the
// public path never observe a partially written blob.
func (s *LocalBackend) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	log := logger.FromContext(ctx)
	start := time.Now()

	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("ensure dir for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".put-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, reader)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if size >= 0 && written != size {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: short write: got %d bytes, want %d", key, written, size)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", key, err)
	}

	log.Debug("storage put completed", "key", key, "size", written, "content_type", contentType, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *LocalBackend) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		log.Error("storage delete failed", "key", key, "error", err)
		return fmt.Errorf("delete %s: %w", key, err)
	}

	log.Debug("storage blob deleted", "key", key)
	return nil
}

func (s *LocalBackend) PublicURL(key string) string {
	return s.publicPrefix + "/" + key
}

func (s *LocalBackend) KeyFromURL(publicURL string) (string, error) {
	prefix := s.publicPrefix + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(publicURL, prefix)
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *LocalBackend) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("storage root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage root %s is not a directory", s.root)
	}
	return nil
}

// Root returns the configured root directory, for wiring a static-file
// handler in front of the backend.
func (s *LocalBackend) Root() string {
	return s.root
}
