package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pixvault/pixvault/internal/logger"
)

var _ Backend = (*MinIOBackend)(nil)

// MinIOBackend stores blobs in an S3-compatible object store.
type MinIOBackend struct {
	client  *minio.Client
	bucket  string
	baseURL string
	config  *Config
}

func NewMinIOBackend(cfg *Config) (*MinIOBackend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinIOBackend{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		config:  cfg,
	}, nil
}

// EnsureBucket creates the bucket if absent and applies a public-read
// policy so stored blobs are servable by URL without presigning.
func (s *MinIOBackend) EnsureBucket(ctx context.Context) error {
	log := logger.FromContext(ctx)

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", toBackendError(err))
	}

	if !exists {
		log.Info("creating bucket", "bucket", s.bucket, "region", s.config.Region)
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{
			Region: s.config.Region,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", toBackendError(err))
		}
		log.Info("bucket created", "bucket", s.bucket)
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::%s/*"]
		}]
	}`, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set public-read policy: %w", toBackendError(err))
	}

	return nil
}

// Put writes the blob and then verifies it is servable. The verify phase
// mirrors the store's write/publish split: a blob that was written but
// cannot be stat-ed is reported as a put failure so the caller compensates.
func (s *MinIOBackend) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	log := logger.FromContext(ctx)
	start := time.Now()

	if err := ValidateKey(key); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Error("storage put failed", "key", key, "size", size, "error", err)
		return fmt.Errorf("put %s: %w", key, toBackendError(err))
	}

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		log.Error("storage put finalize failed", "key", key, "error", err)
		return fmt.Errorf("finalize %s: %w", key, toBackendError(err))
	}

	log.Debug("storage put completed", "key", key, "size", size, "content_type", contentType, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *MinIOBackend) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	if err := ValidateKey(key); err != nil {
		return err
	}

	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		log.Error("storage delete failed", "key", key, "error", err)
		return fmt.Errorf("delete %s: %w", key, toBackendError(err))
	}

	log.Debug("storage blob deleted", "key", key)
	return nil
}

func (s *MinIOBackend) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

func (s *MinIOBackend) KeyFromURL(publicURL string) (string, error) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(publicURL, prefix)
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *MinIOBackend) HealthCheck(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket check: %w", toBackendError(err))
	}
	return nil
}

// toBackendError maps object-store error codes onto storage sentinels so
// callers never inspect minio types directly.
func toBackendError(err error) error {
	if err == nil {
		return nil
	}
	errResp := minio.ToErrorResponse(err)
	switch errResp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotFound
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return ErrAccessDenied
	}
	return err
}
