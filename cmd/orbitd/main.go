package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/api"
	"github.com/itsmewall/orbital-space-objects/internal/auth"
	"github.com/itsmewall/orbital-space-objects/internal/health"
	"github.com/itsmewall/orbital-space-objects/internal/propagation"
	"github.com/itsmewall/orbital-space-objects/internal/stream"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: loadLogLevel(),
	}))

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	apiCfg := loadAPIConfig(logger)
	apiCfg.Auth = authCfg
	apiCfg.Stream = loadStreamConfig(logger)

	propCfg := loadPropConfig(logger)
	pool := propagation.NewWorkerPoolFromConfig(propCfg, logger)

	checker := &health.Checker{}
	srv := api.NewServer(apiCfg, logger, pool, checker)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go srv.PruneLimiters(ctx, 10*time.Minute)

	go func() {
		logger.Info("starting server",
			"addr", apiCfg.Addr,
			"auth_enabled", authCfg.Enabled,
			"workers", pool.Workers(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()
	checker.SetReady(true)

	<-ctx.Done()
	logger.Info("shutting down server...")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadLogLevel() slog.Level {
	switch strings.ToLower(os.Getenv("ORBIT_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("ORBIT_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("ORBIT_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("ORBIT_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("ORBIT_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

// envInt reads a positive integer, falling back to def with a warning.
func envInt(logger *slog.Logger, key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logger.Warn("invalid "+key+" value, using default", "value", v, "default", def)
		return def
	}
	return n
}

func loadAPIConfig(logger *slog.Logger) api.Config {
	cfg := api.DefaultConfig()

	if v := os.Getenv("ORBIT_HTTP_ADDR"); v != "" {
		cfg.Addr = v
	}
	cfg.MaxSamples = envInt(logger, "ORBIT_MAX_SAMPLES", cfg.MaxSamples)
	cfg.MaxBatch = envInt(logger, "ORBIT_MAX_BATCH", cfg.MaxBatch)
	cfg.MaxInflightBatches = envInt(logger, "ORBIT_MAX_INFLIGHT_BATCHES", cfg.MaxInflightBatches)
	cfg.RateLimitBurst = envInt(logger, "ORBIT_RATE_LIMIT_BURST", cfg.RateLimitBurst)

	if v := os.Getenv("ORBIT_RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			logger.Warn("invalid ORBIT_RATE_LIMIT_RPS value, using default", "value", v, "default", cfg.RateLimitRPS)
		} else {
			cfg.RateLimitRPS = rps
		}
	}

	if v := os.Getenv("ORBIT_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid ORBIT_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = trust
		}
	}

	logger.Info("api config",
		"addr", cfg.Addr,
		"max_samples", cfg.MaxSamples,
		"max_batch", cfg.MaxBatch,
		"max_inflight_batches", cfg.MaxInflightBatches,
		"rate_limit_rps", cfg.RateLimitRPS,
		"rate_limit_burst", cfg.RateLimitBurst,
		"trust_proxy", cfg.TrustProxy,
	)

	return cfg
}

func loadPropConfig(logger *slog.Logger) propagation.Config {
	cfg := propagation.DefaultConfig()
	cfg.Workers = envInt(logger, "ORBIT_PROP_WORKERS", cfg.Workers)
	logger.Info("propagation config", "workers", cfg.Workers)
	return cfg
}

func loadStreamConfig(logger *slog.Logger) stream.Config {
	cfg := stream.DefaultConfig()

	cfg.MaxConcurrentPerIP = envInt(logger, "ORBIT_STREAM_MAX_CONCURRENT", cfg.MaxConcurrentPerIP)
	cfg.MaxConcurrent = envInt(logger, "ORBIT_STREAM_MAX_TOTAL", cfg.MaxConcurrent)
	keepalive := envInt(logger, "ORBIT_STREAM_KEEPALIVE_INTERVAL", int(cfg.KeepaliveInterval/time.Second))
	cfg.KeepaliveInterval = time.Duration(keepalive) * time.Second

	logger.Info("stream config",
		"max_concurrent_per_ip", cfg.MaxConcurrentPerIP,
		"max_concurrent", cfg.MaxConcurrent,
		"keepalive_interval_seconds", cfg.KeepaliveInterval.Seconds(),
	)

	return cfg
}
