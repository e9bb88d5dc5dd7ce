package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// TestMemoryBackend_Put tests the Put method.
func TestMemoryBackend_Put(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		content     string
		contentType string
		wantErr     error
	}{
		{
			name:        "put jpeg blob",
			key:         "owner-1/abc.jpg",
			content:     "\xff\xd8\xff\xe0binary data",
			contentType: "image/jpeg",
			wantErr:     nil,
		},
		{
			name:        "put with empty key",
			key:         "",
			content:     "content",
			contentType: "image/png",
			wantErr:     ErrInvalidKey,
		},
		{
			name:        "put with traversal key",
			key:         "owner/../../etc/passwd",
			content:     "content",
			contentType: "image/png",
			wantErr:     ErrInvalidKey,
		},
		{
			name:        "put with absolute key",
			key:         "/owner/abc.png",
			content:     "content",
			contentType: "image/png",
			wantErr:     ErrInvalidKey,
		},
		{
			name:        "put empty content",
			key:         "owner-1/empty.png",
			content:     "",
			contentType: "image/png",
			wantErr:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			ctx := context.Background()
			reader := strings.NewReader(tt.content)

			err := backend.Put(ctx, tt.key, reader, int64(len(tt.content)), tt.contentType)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Put() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr == nil {
				data, exists := backend.GetData(tt.key)
				if !exists {
					t.Error("Put() blob not stored")
					return
				}
				if string(data) != tt.content {
					t.Errorf("Put() stored content = %q, want %q", string(data), tt.content)
				}

				ct, _ := backend.GetContentType(tt.key)
				if ct != tt.contentType {
					t.Errorf("Put() content type = %q, want %q", ct, tt.contentType)
				}
			}
		})
	}
}

func TestMemoryBackend_Delete(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	key := "owner-1/photo.webp"
	if err := backend.Put(ctx, key, strings.NewReader("data"), 4, "image/webp"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := backend.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if backend.Count() != 0 {
		t.Errorf("Delete() left %d blobs, want 0", backend.Count())
	}

	// Second delete reports not found rather than failing hard.
	if err := backend.Delete(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() second call error = %v, want ErrNotFound", err)
	}
}

func TestMemoryBackend_URLRoundTrip(t *testing.T) {
	backend := NewMemoryBackend()

	key := "owner-1/abc123.jpg"
	url := backend.PublicURL(key)

	got, err := backend.KeyFromURL(url)
	if err != nil {
		t.Fatalf("KeyFromURL() error = %v", err)
	}
	if got != key {
		t.Errorf("KeyFromURL() = %q, want %q", got, key)
	}

	if _, err := backend.KeyFromURL("https://elsewhere.example/abc.jpg"); !errors.Is(err, ErrForeignURL) {
		t.Errorf("KeyFromURL() foreign url error = %v, want ErrForeignURL", err)
	}
}

func TestMemoryBackend_ConcurrentPuts(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("owner-1/blob-%d.png", i)
			if err := backend.Put(ctx, key, strings.NewReader("x"), 1, "image/png"); err != nil {
				t.Errorf("Put(%q) error = %v", key, err)
			}
		}(i)
	}
	wg.Wait()

	if backend.Count() != n {
		t.Errorf("Count() = %d, want %d", backend.Count(), n)
	}
}

func TestLocalBackend_Put(t *testing.T) {
	root := t.TempDir()
	backend, err := NewLocalBackend(root, "/uploads")
	if err != nil {
		t.Fatalf("NewLocalBackend() error = %v", err)
	}
	ctx := context.Background()

	content := "png bytes here"
	key := "owner-1/abc123.png"
	if err := backend.Put(ctx, key, strings.NewReader(content), int64(len(content)), "image/png"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "owner-1", "abc123.png"))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != content {
		t.Errorf("stored content = %q, want %q", string(data), content)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(root, "owner-1"))
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestLocalBackend_PutSizeMismatch(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalBackend() error = %v", err)
	}

	err = backend.Put(context.Background(), "owner-1/short.png", strings.NewReader("abc"), 10, "image/png")
	if err == nil {
		t.Fatal("Put() expected error for declared size mismatch")
	}
}

func TestLocalBackend_DeleteIdempotent(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalBackend() error = %v", err)
	}
	ctx := context.Background()

	key := "owner-2/gone.jpg"
	if err := backend.Put(ctx, key, strings.NewReader("x"), 1, "image/jpeg"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := backend.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := backend.Delete(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() second call error = %v, want ErrNotFound", err)
	}
}

func TestLocalBackend_RejectsTraversalKeys(t *testing.T) {
	root := t.TempDir()
	backend, err := NewLocalBackend(root, "/uploads")
	if err != nil {
		t.Fatalf("NewLocalBackend() error = %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"../outside.png", "a/../../b.png", "/abs.png", ""} {
		if err := backend.Put(ctx, key, strings.NewReader("x"), 1, "image/png"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestLocalBackend_URLRoundTrip(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalBackend() error = %v", err)
	}

	key := "owner-1/pic.webp"
	url := backend.PublicURL(key)
	if url != "/uploads/owner-1/pic.webp" {
		t.Errorf("PublicURL() = %q", url)
	}

	got, err := backend.KeyFromURL(url)
	if err != nil {
		t.Fatalf("KeyFromURL() error = %v", err)
	}
	if got != key {
		t.Errorf("KeyFromURL() = %q, want %q", got, key)
	}
}

func TestLocalBackend_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	backend, err := NewLocalBackend(root, "/uploads")
	if err != nil {
		t.Fatalf("NewLocalBackend() error = %v", err)
	}

	if err := backend.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr error
	}{
		{"owner/file.png", nil},
		{"a/b/c.jpg", nil},
		{"", ErrInvalidKey},
		{"/abs.png", ErrInvalidKey},
		{"a/../b.png", ErrInvalidKey},
		{"a\\b.png", ErrInvalidKey},
	}

	for _, tt := range tests {
		if err := ValidateKey(tt.key); !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
		}
	}
}
