package metrics

import (
	"context"
	"io"
	"time"

	"github.com/pixvault/pixvault/internal/storage"
)

// InstrumentedBackend wraps a storage.Backend and records operation counts,
// latencies, and transferred bytes.
type InstrumentedBackend struct {
	storage.Backend
}

func NewInstrumentedBackend(b storage.Backend) *InstrumentedBackend {
	return &InstrumentedBackend{Backend: b}
}

func (s *InstrumentedBackend) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	start := time.Now()

	err := s.Backend.Put(ctx, key, reader, size, contentType)

	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}

	StorageOperationsTotal.WithLabelValues("put", status).Inc()
	StorageOperationDuration.WithLabelValues("put").Observe(duration)
	if err == nil {
		StorageBytesTotal.WithLabelValues("put").Add(float64(size))
	}

	return err
}

func (s *InstrumentedBackend) Delete(ctx context.Context, key string) error {
	start := time.Now()

	err := s.Backend.Delete(ctx, key)

	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}

	StorageOperationsTotal.WithLabelValues("delete", status).Inc()
	StorageOperationDuration.WithLabelValues("delete").Observe(duration)

	return err
}
