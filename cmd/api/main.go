package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pixvault/pixvault/internal/api"
	"github.com/pixvault/pixvault/internal/config"
	"github.com/pixvault/pixvault/internal/health"
	"github.com/pixvault/pixvault/internal/logger"
	"github.com/pixvault/pixvault/internal/metrics"
	"github.com/pixvault/pixvault/internal/storage"
	"github.com/pixvault/pixvault/internal/tracing"
	"github.com/pixvault/pixvault/internal/upload"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Init(cfg.LogLevel)
	log := logger.Default()

	log.Info("configuration loaded", "backend", cfg.StorageBackend)

	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdownTracing, err := tracing.Init(ctx, &tracing.Config{
			ServiceName:    "pixvault-api",
			ServiceVersion: version,
			Environment:    cfg.Environment,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			Enabled:        true,
			SampleRate:     cfg.TraceSampleRate,
		})
		if err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		defer func() { _ = shutdownTracing(ctx) }()
		log.Info("tracing enabled", "endpoint", cfg.OTLPEndpoint, "sample_rate", cfg.TraceSampleRate)
	}

	// The backend kind is resolved exactly once here; everything downstream
	// sees only the storage.Backend interface.
	var backend storage.Backend
	var localRoot string
	switch cfg.StorageBackend {
	case config.BackendMinIO:
		log.Info("connecting to object storage", "endpoint", cfg.MinIOEndpoint, "bucket", cfg.MinIOBucket)
		store, err := storage.NewMinIOBackend(&storage.Config{
			Endpoint:      cfg.MinIOEndpoint,
			AccessKey:     cfg.MinIOAccessKey,
			SecretKey:     cfg.MinIOSecretKey,
			Bucket:        cfg.MinIOBucket,
			UseSSL:        cfg.MinIOUseSSL,
			Region:        cfg.MinIORegion,
			PublicBaseURL: cfg.MinIOPublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to create storage backend: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure bucket: %w", err)
		}
		backend = store
		log.Info("object storage connected")
	case config.BackendLocal:
		store, err := storage.NewLocalBackend(cfg.LocalStorageRoot, cfg.LocalPublicPrefix)
		if err != nil {
			return fmt.Errorf("failed to create storage backend: %w", err)
		}
		backend = store
		localRoot = store.Root()
		log.Info("local storage ready", "root", cfg.LocalStorageRoot)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse redis url: %w", err)
		}
		redisClient = redis.NewClient(redisOpt)
		defer func() { _ = redisClient.Close() }()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("redis connected")
	}

	metrics.SetAppInfo(version, cfg.Environment, "api")

	instrumentedBackend := metrics.NewInstrumentedBackend(backend)
	service := upload.NewService(instrumentedBackend, upload.ServiceConfig{
		MaxSizeBytes: cfg.MaxUploadSize,
		PutTimeout:   cfg.PutTimeout,
	})

	checker := health.NewChecker(backend)
	if redisClient != nil {
		checker = checker.WithRedis(redisClient)
	}

	var rateLimiter *api.RedisRateLimiter
	if redisClient != nil {
		rateLimiter = api.NewRedisRateLimiter(redisClient, cfg.UploadRateLimit, cfg.UploadRateWindow)
	}

	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	apiRouter := api.NewRouter(&api.Config{
		Service:       service,
		HealthChecker: checker,
		RateLimiter:   rateLimiter,
	})
	mux.Handle("/v1/", apiRouter)
	mux.Handle("/healthz", apiRouter)
	mux.Handle("/readyz", apiRouter)

	// In local mode the process doubles as the static exposer for stored
	// blobs; in object-store mode blobs are served from the bucket.
	if localRoot != "" {
		prefix := cfg.LocalPublicPrefix + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(localRoot))))
	}

	handler := api.SecurityHeaders(metrics.HTTPMetricsMiddleware(api.Recovery(api.RequestID(api.RequestLogger(mux)))))
	if cfg.TracingEnabled {
		handler = tracing.HTTPMiddleware("pixvault-api")(handler)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("shutdown signal received", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return fmt.Errorf("forced shutdown: %w", err)
		}
	}

	log.Info("server stopped gracefully")
	return nil
}
