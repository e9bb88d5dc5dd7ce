package api

import (
	"net/http"

	"github.com/pixvault/pixvault/internal/health"
	"github.com/pixvault/pixvault/internal/upload"
)

type Config struct {
	Service       *upload.Service
	HealthChecker *health.Checker
	RateLimiter   *RedisRateLimiter
}

func NewRouter(cfg *Config) http.Handler {
	h := &Handlers{
		service:       cfg.Service,
		rateLimiter:   cfg.RateLimiter,
		maxUploadSize: cfg.Service.MaxSizeBytes(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/assets", h.UploadAsset)
	mux.HandleFunc("DELETE /v1/assets/{key...}", h.DeleteAsset)

	mux.HandleFunc("GET /healthz", health.LivenessHandler())
	mux.HandleFunc("GET /readyz", health.ReadinessHandler(cfg.HealthChecker))

	return mux
}
