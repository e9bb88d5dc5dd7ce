package upload

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pixvault/pixvault/internal/apperror"
	"github.com/pixvault/pixvault/internal/logger"
	"github.com/pixvault/pixvault/internal/metrics"
	"github.com/pixvault/pixvault/internal/storage"
	"github.com/pixvault/pixvault/internal/tracing"
)

// Request describes one upload. The caller is trusted to have authenticated
// and authorized OwnerID; SizeBytes must equal the length of Content.
type Request struct {
	OwnerID          string
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	Content          io.Reader
}

// Result reports a published upload.
type Result struct {
	Key          string `json:"key"`
	PublicURL    string `json:"public_url"`
	OriginalName string `json:"original_name"`
	SizeBytes    int64  `json:"size_bytes"`
	MimeType     string `json:"mime_type"`
}

const DefaultPutTimeout = 30 * time.Second

// Service orchestrates uploads: validate, assign a key, write to the
// backend, and compensate with a best-effort delete when a write fails
// after the key was assigned. It performs no retries; a failed upload is
// retried by the caller with a fresh Upload call.
type Service struct {
	backend    storage.Backend
	validator  *Validator
	keygen     KeyGen
	putTimeout time.Duration
}

type ServiceConfig struct {
	MaxSizeBytes int64
	PutTimeout   time.Duration
}

func NewService(backend storage.Backend, cfg ServiceConfig) *Service {
	timeout := cfg.PutTimeout
	if timeout <= 0 {
		timeout = DefaultPutTimeout
	}
	return &Service{
		backend:    backend,
		validator:  NewValidator(cfg.MaxSizeBytes),
		putTimeout: timeout,
	}
}

func (s *Service) MaxSizeBytes() int64 {
	return s.validator.MaxSizeBytes()
}

// Upload runs the full pipeline. Validation failures return before any
// backend call; failures after key assignment trigger a compensating
// delete whose outcome is logged but never masks the original error.
func (s *Service) Upload(ctx context.Context, req *Request) (*Result, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "upload")
	defer span.End()

	if req == nil {
		return nil, apperror.ErrBadRequest
	}

	if err := s.validator.Validate(req); err != nil {
		metrics.FileUploadsTotal.WithLabelValues("rejected").Inc()
		log.Warn("upload rejected", "owner_id", req.OwnerID, "mime_type", req.MimeType, "size", req.SizeBytes, "reason", apperror.Code(err))
		return nil, err
	}

	key := s.keygen.Generate(req.OwnerID, req.OriginalFilename, req.MimeType)
	span.SetAttributes(
		attribute.String("upload.key", key),
		attribute.Int64("upload.size_bytes", req.SizeBytes),
		attribute.String("upload.mime_type", req.MimeType),
	)

	putCtx, cancel := context.WithTimeout(ctx, s.putTimeout)
	defer cancel()

	if err := s.backend.Put(putCtx, key, req.Content, req.SizeBytes, req.MimeType); err != nil {
		appErr := classifyStorageError(err)
		metrics.FileUploadsTotal.WithLabelValues("error").Inc()
		tracing.RecordError(ctx, err)
		log.Error("upload failed", "key", key, "size", req.SizeBytes, "kind", appErr.Code, "error", err)

		s.compensate(ctx, key)
		return nil, appErr
	}

	metrics.FileUploadsTotal.WithLabelValues("success").Inc()
	metrics.FileUploadBytes.Observe(float64(req.SizeBytes))
	metrics.FileUploadDuration.Observe(time.Since(start).Seconds())

	result := &Result{
		Key:          key,
		PublicURL:    s.backend.PublicURL(key),
		OriginalName: req.OriginalFilename,
		SizeBytes:    req.SizeBytes,
		MimeType:     req.MimeType,
	}
	log.Info("upload published", "key", key, "size", req.SizeBytes, "mime_type", req.MimeType, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// compensate deletes a blob that may have been partially written. It runs
// on a fresh deadline detached from the request context so a timed-out put
// does not also doom its own cleanup.
func (s *Service) compensate(ctx context.Context, key string) {
	log := logger.FromContext(ctx)

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.putTimeout)
	defer cancel()

	err := s.backend.Delete(cleanupCtx, key)
	switch {
	case err == nil:
		metrics.CompensationDeletesTotal.WithLabelValues("success").Inc()
		log.Info("orphaned blob cleaned up", "key", key)
	case errors.Is(err, storage.ErrNotFound):
		metrics.CompensationDeletesTotal.WithLabelValues("not_found").Inc()
		log.Info("no orphaned blob to clean up", "key", key)
	default:
		metrics.CompensationDeletesTotal.WithLabelValues("error").Inc()
		log.Error("orphaned blob cleanup failed", "key", key, "error", err)
	}
}

// DeleteAsset retires a superseded blob. A missing key is treated as
// success so the operation stays idempotent for callers retrying it.
func (s *Service) DeleteAsset(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	deleteCtx, cancel := context.WithTimeout(ctx, s.putTimeout)
	defer cancel()

	err := s.backend.Delete(deleteCtx, key)
	switch {
	case err == nil:
		metrics.FileDeletionsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, storage.ErrInvalidKey):
		metrics.FileDeletionsTotal.WithLabelValues("rejected").Inc()
		return apperror.Wrap(err, apperror.ErrBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		metrics.FileDeletionsTotal.WithLabelValues("not_found").Inc()
		log.Debug("asset already gone", "key", key)
		return nil
	default:
		metrics.FileDeletionsTotal.WithLabelValues("error").Inc()
		log.Error("asset delete failed", "key", key, "error", err)
		return classifyStorageError(err)
	}

	log.Info("asset deleted", "key", key)
	return nil
}

// classifyStorageError maps a backend failure onto the error taxonomy. The
// original error is preserved for server-side logs; callers only see the
// stable per-kind message.
func classifyStorageError(err error) *apperror.Error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperror.Wrap(err, apperror.ErrTimeout)
	case errors.As(err, &netErr) && netErr.Timeout():
		return apperror.Wrap(err, apperror.ErrTimeout)
	case errors.Is(err, storage.ErrAccessDenied):
		return apperror.Wrap(err, apperror.ErrPermission)
	case errors.As(err, &netErr):
		return apperror.Wrap(err, apperror.ErrNetwork)
	case errors.Is(err, storage.ErrInvalidKey):
		return apperror.Wrap(err, apperror.ErrInternal)
	case errors.Is(err, context.Canceled):
		return apperror.Wrap(err, apperror.ErrInternal)
	default:
		return apperror.Wrap(err, apperror.ErrStorage)
	}
}
