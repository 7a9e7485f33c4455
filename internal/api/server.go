// Package api serves the propagation pipeline over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/itsmewall/orbital-space-objects/internal/auth"
	"github.com/itsmewall/orbital-space-objects/internal/health"
	"github.com/itsmewall/orbital-space-objects/internal/httputil"
	"github.com/itsmewall/orbital-space-objects/internal/metrics"
	"github.com/itsmewall/orbital-space-objects/internal/propagation"
	"github.com/itsmewall/orbital-space-objects/internal/stream"
)

// Config holds HTTP layer settings loaded from the environment.
type Config struct {
	Addr       string
	MaxSamples int // per-request sample bound
	MaxBatch   int // satellites per batch request

	RateLimitRPS   float64 // per-client requests per second; 0 disables limiting
	RateLimitBurst int
	TrustProxy     bool

	// MaxInflightBatches caps concurrent batch and pass requests per client.
	MaxInflightBatches int

	Auth   auth.Config
	Stream stream.Config
}

// DefaultConfig returns the settings used when no environment overrides
// are present.
func DefaultConfig() Config {
	return Config{
		Addr:               ":8080",
		MaxSamples:         propagation.MaxSamples,
		MaxBatch:           64,
		RateLimitRPS:       10,
		RateLimitBurst:     20,
		MaxInflightBatches: 2,
		Stream:             stream.DefaultConfig(),
	}
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	limiter    *IPRateLimiter
}

// NewServer creates a configured HTTP server.
func NewServer(cfg Config, logger *slog.Logger, pool *propagation.WorkerPool, checker *health.Checker) *Server {
	cfg.Stream.TrustProxy = cfg.TrustProxy
	h := &handlers{
		cfg:      cfg,
		pool:     pool,
		logger:   logger,
		now:      time.Now,
		inflight: httputil.NewConcurrencyLimiter(cfg.MaxInflightBatches, 256),
		streams:  stream.NewHandler(cfg.Stream, logger),
	}

	mux := http.NewServeMux()

	// Register routes.
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", checker.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /api/v1/orbit/propagate", h.propagate)
	mux.HandleFunc("POST /api/v1/orbit/batch", h.batch)
	mux.HandleFunc("POST /api/v1/orbit/parameters", h.parameters)
	mux.HandleFunc("POST /api/v1/orbit/elements", h.elements)
	mux.HandleFunc("POST /api/v1/orbit/passes", h.passes)
	mux.HandleFunc("POST /api/v1/orbit/stream", h.stream)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"service": "orbit",
			"routes": []string{
				"POST /api/v1/orbit/propagate",
				"POST /api/v1/orbit/batch",
				"POST /api/v1/orbit/parameters",
				"POST /api/v1/orbit/elements",
				"POST /api/v1/orbit/passes",
				"POST /api/v1/orbit/stream",
			},
		})
	})

	// Build middleware chain: metrics -> logging -> rate limit -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(cfg.Auth)(handler)

	var limiter *IPRateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), max(cfg.RateLimitBurst, 1))
		handler = rateLimitMiddleware(limiter, cfg.TrustProxy)(handler)
	}
	handler = loggingMiddleware(logger, cfg.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger:  logger,
		limiter: limiter,
	}
}

// Handler returns the full middleware chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// PruneLimiters drops idle rate-limiter entries every interval until ctx is
// done. It returns immediately when rate limiting is disabled.
func (s *Server) PruneLimiters(ctx context.Context, interval time.Duration) {
	if s.limiter == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.limiter.Prune(interval); n > 0 {
				s.logger.Debug("pruned idle rate limiters", "removed", n, "remaining", s.limiter.Len())
			}
		case <-ctx.Done():
			return
		}
	}
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
