package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type BackendKind string

const (
	BackendMinIO BackendKind = "minio"
	BackendLocal BackendKind = "local"
)

type Config struct {
	Port        int
	Environment string
	LogLevel    string

	// Backend selection, resolved once at startup. Request-time code never
	// branches on this again; it only sees the constructed backend.
	StorageBackend BackendKind

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOBucket        string
	MinIOUseSSL        bool
	MinIORegion        string
	MinIOPublicBaseURL string

	LocalStorageRoot  string
	LocalPublicPrefix string

	MaxUploadSize int64
	PutTimeout    time.Duration

	RedisURL            string
	UploadRateLimit     int
	UploadRateWindow    time.Duration

	TracingEnabled  bool
	OTLPEndpoint    string
	TraceSampleRate float64
}

func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Environment = getEnvString("ENVIRONMENT", "development")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	cfg.StorageBackend = BackendKind(getEnvString("STORAGE_BACKEND", string(BackendLocal)))

	switch cfg.StorageBackend {
	case BackendMinIO:
		cfg.MinIOEndpoint = os.Getenv("MINIO_ENDPOINT")
		if cfg.MinIOEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_BACKEND=minio")
		}
		cfg.MinIOAccessKey = os.Getenv("MINIO_ACCESS_KEY")
		if cfg.MinIOAccessKey == "" {
			return nil, fmt.Errorf("MINIO_ACCESS_KEY is required when STORAGE_BACKEND=minio")
		}
		cfg.MinIOSecretKey = os.Getenv("MINIO_SECRET_KEY")
		if cfg.MinIOSecretKey == "" {
			return nil, fmt.Errorf("MINIO_SECRET_KEY is required when STORAGE_BACKEND=minio")
		}
		cfg.MinIOBucket = getEnvString("MINIO_BUCKET", "media")
		cfg.MinIOUseSSL = getEnvBool("MINIO_USE_SSL", false)
		cfg.MinIORegion = getEnvString("MINIO_REGION", "us-east-1")
		cfg.MinIOPublicBaseURL = os.Getenv("MINIO_PUBLIC_BASE_URL")
	case BackendLocal:
		cfg.LocalStorageRoot = getEnvString("LOCAL_STORAGE_ROOT", "./data/uploads")
		cfg.LocalPublicPrefix = getEnvString("LOCAL_PUBLIC_PREFIX", "/uploads")
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND: %q", cfg.StorageBackend)
	}

	cfg.MaxUploadSize = getEnvInt64("MAX_UPLOAD_SIZE", 5*1024*1024)
	cfg.PutTimeout, err = getEnvDuration("PUT_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid PUT_TIMEOUT: %w", err)
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.UploadRateLimit = getEnvInt("UPLOAD_RATE_LIMIT", 60)
	cfg.UploadRateWindow, err = getEnvDuration("UPLOAD_RATE_WINDOW", "1m")
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_RATE_WINDOW: %w", err)
	}

	cfg.TracingEnabled = getEnvBool("TRACING_ENABLED", false)
	cfg.OTLPEndpoint = getEnvString("OTLP_ENDPOINT", "localhost:4317")
	cfg.TraceSampleRate = getEnvFloat("TRACE_SAMPLE_RATE", 0.1)

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return time.ParseDuration(value)
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.MaxUploadSize < 1 {
		return fmt.Errorf("invalid max upload size: %d", c.MaxUploadSize)
	}

	if c.PutTimeout < time.Second {
		return fmt.Errorf("put timeout too short: %s", c.PutTimeout)
	}

	if c.UploadRateLimit < 1 {
		return fmt.Errorf("invalid upload rate limit: %d", c.UploadRateLimit)
	}

	return nil
}
