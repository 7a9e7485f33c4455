// Package stream serves the live position of one orbit as Server-Sent Events.
//
// SSE message format:
//
//	data: {"type":"position","t":"2026-02-06T04:00:00Z","p":[6778137,0,0]}\n\n
//
// The first message on every connection is metadata:
//
//	data: {"type":"metadata","id":"iss","frame":"earth_fixed","propagation":"sgp4","stepSeconds":5}\n\n
//
// A propagation failure ends the stream with a {"type":"error"} message.
// Keep-alive comments (:\n\n) are sent every KeepaliveInterval without data.
package stream

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/httputil"
	"github.com/itsmewall/orbital-space-objects/internal/metrics"
	"github.com/itsmewall/orbital-space-objects/internal/propagation"
)

// Config holds streaming configuration loaded from environment variables.
type Config struct {
	MaxConcurrentPerIP int           // default 10
	MaxConcurrent      int           // default 1000
	KeepaliveInterval  time.Duration // default 30s
	TrustProxy         bool
}

// DefaultConfig returns the settings used when no environment overrides
// are present.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentPerIP: 10,
		MaxConcurrent:      1000,
		KeepaliveInterval:  30 * time.Second,
	}
}

// Source yields a sample at an arbitrary time. *propagation.Tracker
// satisfies it.
type Source interface {
	At(t time.Time) (propagation.Sample, error)
}

// Stream describes what is being streamed.
type Stream struct {
	ID     string
	Frame  propagation.Frame
	Policy propagation.Policy
	Step   time.Duration
	Source Source
}

// Handler manages SSE streaming connections.
type Handler struct {
	config  Config
	limiter *httputil.ConcurrencyLimiter
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandler creates a new streaming handler.
func NewHandler(config Config, logger *slog.Logger) *Handler {
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = DefaultConfig().KeepaliveInterval
	}
	return &Handler{
		config:  config,
		limiter: httputil.NewConcurrencyLimiter(config.MaxConcurrentPerIP, config.MaxConcurrent),
		logger:  logger,
		now:     time.Now,
	}
}

// Serve streams the position of s.Source every s.Step, at wall-clock time,
// until the client disconnects or propagation fails.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, s Stream) {
	ip := httputil.ClientIP(r, h.config.TrustProxy)
	if !h.limiter.Acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream rate limit exceeded",
			"component", "stream",
			"remote_ip", ip,
			"current_count", h.limiter.Count(ip),
		)
		w.Header().Set("Retry-After", "30")
		httputil.WriteError(w, http.StatusTooManyRequests, "too many concurrent streams")
		return
	}

	metrics.IncStreamConnections("connect")
	metrics.IncStreamsActive()

	startTime := time.Now()
	h.logger.Info("stream connected",
		"component", "stream",
		"remote_ip", ip,
		"user_agent", r.Header.Get("User-Agent"),
		"id", s.ID,
		"step", s.Step.String(),
	)

	c := &client{
		w:      w,
		rc:     http.NewResponseController(w),
		ip:     ip,
		logger: h.logger,
	}

	defer func() {
		h.limiter.Release(ip)
		metrics.IncStreamConnections("disconnect")
		metrics.DecStreamsActive()
		h.logger.Info("stream disconnected",
			"component", "stream",
			"remote_ip", ip,
			"duration_seconds", int(time.Since(startTime).Seconds()),
			"messages", c.messagesSent,
			"bytes", c.bytesSent,
		)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// Clear the server's WriteTimeout for this connection.
	if err := c.rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "component", "stream", "error", err)
	}

	// Jittered retry interval (3-7s) spreads reconnections after a restart.
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", 3000+rand.Intn(4000)); err != nil {
		return
	}

	meta := metadataMessage{
		Type:        "metadata",
		ID:          s.ID,
		Frame:       s.Frame.String(),
		Propagation: s.Policy.String(),
		StepSeconds: s.Step.Seconds(),
	}
	if err := c.sendJSON(meta); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error (metadata)", "component", "stream", "remote_ip", ip, "error", err)
		return
	}

	ticker := time.NewTicker(s.Step)
	defer ticker.Stop()
	keepalive := time.NewTicker(h.config.KeepaliveInterval)
	defer keepalive.Stop()

	send := func(t time.Time) bool {
		sample, err := s.Source.At(t)
		if err != nil {
			metrics.IncStreamErrors("propagation")
			h.logger.Warn("stream propagation error", "component", "stream", "remote_ip", ip, "id", s.ID, "error", err)
			_ = c.sendJSON(errorMessage{Type: "error", Error: err.Error()})
			return false
		}
		msg := positionMessage{
			Type: "position",
			T:    sample.Time.UTC().Format(time.RFC3339Nano),
			P:    [3]float64{sample.Position.X, sample.Position.Y, sample.Position.Z},
		}
		if err := c.sendJSON(msg); err != nil {
			metrics.IncStreamErrors("send_error")
			h.logger.Warn("stream send error", "component", "stream", "remote_ip", ip, "error", err)
			return false
		}
		keepalive.Reset(h.config.KeepaliveInterval)
		return true
	}

	if !send(h.now()) {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if !send(h.now()) {
				return
			}

		case <-keepalive.C:
			if err := c.sendKeepalive(); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream keepalive error", "component", "stream", "remote_ip", ip, "error", err)
				return
			}
		}
	}
}

// SSE message payload types.

type metadataMessage struct {
	Type        string  `json:"type"`
	ID          string  `json:"id,omitempty"`
	Frame       string  `json:"frame"`
	Propagation string  `json:"propagation"`
	StepSeconds float64 `json:"stepSeconds"`
}

type positionMessage struct {
	Type string     `json:"type"`
	T    string     `json:"t"`
	P    [3]float64 `json:"p"` // meters
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
