package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixvault/pixvault/internal/apperror"
	"github.com/pixvault/pixvault/internal/storage"
)

// fakeBackend records calls and injects failures. It lets tests assert
// that validation failures never touch the backend and that compensation
// runs exactly once after a failed put.
type fakeBackend struct {
	mu         sync.Mutex
	putKeys    []string
	deleteKeys []string
	putErr     error
	deleteErr  error
	blockPut   bool
}

var _ storage.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	f.mu.Lock()
	f.putKeys = append(f.putKeys, key)
	f.mu.Unlock()

	if f.blockPut {
		<-ctx.Done()
		return fmt.Errorf("put %s: %w", key, ctx.Err())
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return err
	}
	return f.putErr
}

func (f *fakeBackend) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.deleteKeys = append(f.deleteKeys, key)
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeBackend) PublicURL(key string) string {
	return "https://cdn.test/media/" + key
}

func (f *fakeBackend) KeyFromURL(publicURL string) (string, error) {
	key := strings.TrimPrefix(publicURL, "https://cdn.test/media/")
	if key == publicURL {
		return "", storage.ErrForeignURL
	}
	return key, nil
}

func (f *fakeBackend) HealthCheck(ctx context.Context) error { return nil }

func (f *fakeBackend) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.putKeys)
}

func (f *fakeBackend) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleteKeys)
}

func validRequest(size int64) *Request {
	return &Request{
		OwnerID:          "owner-1",
		OriginalFilename: "avatar.jpg",
		MimeType:         "image/jpeg",
		SizeBytes:        size,
		Content:          bytes.NewReader(bytes.Repeat([]byte{0xAB}, int(size))),
	}
}

func TestService_Upload_Success(t *testing.T) {
	backend := storage.NewMemoryBackend()
	svc := NewService(backend, ServiceConfig{MaxSizeBytes: 5 * 1024 * 1024})

	req := validRequest(100 * 1024)
	result, err := svc.Upload(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, strings.HasPrefix(result.Key, "owner-1/"))
	assert.Equal(t, "avatar.jpg", result.OriginalName)
	assert.Equal(t, int64(100*1024), result.SizeBytes)
	assert.Equal(t, "image/jpeg", result.MimeType)
	assert.NotEmpty(t, result.PublicURL)

	// The public URL resolves back to the same key.
	key, err := backend.KeyFromURL(result.PublicURL)
	require.NoError(t, err)
	assert.Equal(t, result.Key, key)

	data, ok := backend.GetData(result.Key)
	require.True(t, ok)
	assert.Len(t, data, 100*1024)

	ct, _ := backend.GetContentType(result.Key)
	assert.Equal(t, "image/jpeg", ct)
}

func TestService_Upload_WebP(t *testing.T) {
	backend := storage.NewMemoryBackend()
	svc := NewService(backend, ServiceConfig{MaxSizeBytes: 5 * 1024 * 1024})

	req := &Request{
		OwnerID:          "owner-42",
		OriginalFilename: "cover.webp",
		MimeType:         "image/webp",
		SizeBytes:        1024 * 1024,
		Content:          bytes.NewReader(bytes.Repeat([]byte{0x01}, 1024*1024)),
	}

	result, err := svc.Upload(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", result.MimeType)
	assert.True(t, strings.HasPrefix(result.Key, "owner-42/"))
}

func TestService_Upload_ValidationNeverTouchesBackend(t *testing.T) {
	tests := []struct {
		name     string
		req      *Request
		wantCode string
	}{
		{
			name: "disallowed mime",
			req: &Request{
				OwnerID:          "owner-1",
				OriginalFilename: "anim.gif",
				MimeType:         "image/gif",
				SizeBytes:        1024,
				Content:          strings.NewReader("x"),
			},
			wantCode: apperror.ErrInvalidFileType.Code,
		},
		{
			name: "over size limit",
			req: &Request{
				OwnerID:          "owner-1",
				OriginalFilename: "big.png",
				MimeType:         "image/png",
				SizeBytes:        6 * 1024 * 1024,
				Content:          strings.NewReader("x"),
			},
			wantCode: apperror.ErrFileTooLarge.Code,
		},
		{
			name: "missing owner",
			req: &Request{
				OriginalFilename: "a.png",
				MimeType:         "image/png",
				SizeBytes:        1024,
				Content:          strings.NewReader("x"),
			},
			wantCode: apperror.ErrBadRequest.Code,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			svc := NewService(backend, ServiceConfig{MaxSizeBytes: 5 * 1024 * 1024})

			result, err := svc.Upload(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.wantCode, apperror.Code(err))

			assert.Zero(t, backend.putCount(), "validation failure must not call Put")
			assert.Zero(t, backend.deleteCount(), "validation failure must not call Delete")
		})
	}
}

func TestService_Upload_CompensatesOnPutFailure(t *testing.T) {
	backend := &fakeBackend{putErr: errors.New("finalize failed: blob not servable")}
	svc := NewService(backend, ServiceConfig{MaxSizeBytes: 5 * 1024 * 1024})

	result, err := svc.Upload(context.Background(), validRequest(1024))
	require.Error(t, err)
	assert.Nil(t, result)

	assert.Equal(t, apperror.ErrStorage.Code, apperror.Code(err))
	assert.False(t, apperror.IsValidation(err))

	require.Equal(t, 1, backend.putCount())
	require.Equal(t, 1, backend.deleteCount(), "compensating delete must run exactly once")
	assert.Equal(t, backend.putKeys[0], backend.deleteKeys[0], "compensation must target the written key")
}

func TestService_Upload_CompensationFailureDoesNotMask(t *testing.T) {
	backend := &fakeBackend{
		putErr:    fmt.Errorf("put rejected: %w", storage.ErrAccessDenied),
		deleteErr: errors.New("cleanup also failed"),
	}
	svc := NewService(backend, ServiceConfig{MaxSizeBytes: 5 * 1024 * 1024})

	_, err := svc.Upload(context.Background(), validRequest(1024))
	require.Error(t, err)

	// The original permission failure is reported, not the cleanup failure.
	assert.Equal(t, apperror.ErrPermission.Code, apperror.Code(err))
	assert.Equal(t, 1, backend.deleteCount())
}

func TestService_Upload_Timeout(t *testing.T) {
	backend := &fakeBackend{blockPut: true}
	svc := NewService(backend, ServiceConfig{
		MaxSizeBytes: 5 * 1024 * 1024,
		PutTimeout:   50 * time.Millisecond,
	})

	start := time.Now()
	_, err := svc.Upload(context.Background(), validRequest(1024))
	require.Error(t, err)

	assert.Equal(t, apperror.ErrTimeout.Code, apperror.Code(err))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1, backend.deleteCount(), "timed-out put still triggers compensation")
}

func TestService_Upload_NetworkError(t *testing.T) {
	backend := &fakeBackend{putErr: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}
	svc := NewService(backend, ServiceConfig{MaxSizeBytes: 5 * 1024 * 1024})

	_, err := svc.Upload(context.Background(), validRequest(1024))
	require.Error(t, err)
	assert.Equal(t, apperror.ErrNetwork.Code, apperror.Code(err))
}

func TestService_DeleteAsset_Idempotent(t *testing.T) {
	backend := storage.NewMemoryBackend()
	svc := NewService(backend, ServiceConfig{MaxSizeBytes: 5 * 1024 * 1024})

	result, err := svc.Upload(context.Background(), validRequest(1024))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAsset(context.Background(), result.Key))
	require.NoError(t, svc.DeleteAsset(context.Background(), result.Key), "second delete must still succeed")
}

func TestService_Upload_ConcurrentSameOwner(t *testing.T) {
	backend := storage.NewMemoryBackend()
	svc := NewService(backend, ServiceConfig{MaxSizeBytes: 5 * 1024 * 1024})

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	errs := make([]error, 2)

	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Upload(context.Background(), validRequest(2048))
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, results[0].Key, results[1].Key)
	assert.NotEqual(t, results[0].PublicURL, results[1].PublicURL)
	assert.Equal(t, 2, backend.Count())
}
