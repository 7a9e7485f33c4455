// Package metrics exposes Prometheus collectors for the HTTP layer and the
// propagation worker pool.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orbit_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		},
	)

	propagationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_propagations_total",
			Help: "Propagation requests by policy, frame and result.",
		},
		[]string{"policy", "frame", "result"},
	)

	propagationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orbit_propagation_duration_seconds",
			Help:    "Wall time of a single propagation.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"policy"},
	)

	propagationSamples = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orbit_propagation_samples",
			Help:    "Samples produced per successful propagation.",
			Buckets: prometheus.ExponentialBuckets(10, 10, 5),
		},
	)

	keplerIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orbit_kepler_iterations_max",
			Help:    "Most Newton-Raphson iterations spent on one sample of a propagation.",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 20, 50, 100},
		},
	)

	divergencesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_kepler_divergences_total",
			Help: "Propagations that failed because Kepler's equation did not converge.",
		},
	)

	activeWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orbit_propagation_workers_active",
			Help: "Worker goroutines currently running a propagation.",
		},
	)

	streamConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_stream_connections_total",
			Help: "SSE stream connect and disconnect events.",
		},
		[]string{"event"},
	)

	streamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orbit_streams_active",
			Help: "Currently open SSE position streams.",
		},
	)

	streamMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_stream_messages_total",
			Help: "SSE data messages sent.",
		},
	)

	streamBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_stream_bytes_total",
			Help: "Bytes written to SSE streams, keep-alives included.",
		},
	)

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_stream_errors_total",
			Help: "SSE stream errors by reason.",
		},
		[]string{"reason"},
	)

	passPredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_pass_predictions_total",
			Help: "Pass predictions by result, one per target.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(rateLimitedTotal)
	prometheus.MustRegister(propagationsTotal)
	prometheus.MustRegister(propagationDurationSeconds)
	prometheus.MustRegister(propagationSamples)
	prometheus.MustRegister(keplerIterations)
	prometheus.MustRegister(divergencesTotal)
	prometheus.MustRegister(activeWorkers)
	prometheus.MustRegister(streamConnectionsTotal)
	prometheus.MustRegister(streamsActive)
	prometheus.MustRegister(streamMessagesTotal)
	prometheus.MustRegister(streamBytesTotal)
	prometheus.MustRegister(streamErrorsTotal)
	prometheus.MustRegister(passPredictionsTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Result labels for RecordPropagation.
const (
	ResultOK         = "ok"
	ResultInvalid    = "invalid"
	ResultDivergence = "divergence"
	ResultError      = "error"
	ResultCanceled   = "canceled"
)

// RecordPropagation records the outcome of one propagation. samples and
// maxIterations are only observed for ResultOK.
func RecordPropagation(policy, frame, result string, d time.Duration, samples, maxIterations int) {
	propagationsTotal.WithLabelValues(policy, frame, result).Inc()
	propagationDurationSeconds.WithLabelValues(policy).Observe(d.Seconds())
	switch result {
	case ResultOK:
		propagationSamples.Observe(float64(samples))
		if maxIterations > 0 {
			keplerIterations.Observe(float64(maxIterations))
		}
	case ResultDivergence:
		divergencesTotal.Inc()
	}
}

// WorkerStarted and WorkerDone bracket a propagation running in the pool.
func WorkerStarted() { activeWorkers.Inc() }

func WorkerDone() { activeWorkers.Dec() }

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited() {
	rateLimitedTotal.Inc()
}

// IncStreamConnections counts a stream "connect" or "disconnect" event.
func IncStreamConnections(event string) {
	streamConnectionsTotal.WithLabelValues(event).Inc()
}

func IncStreamsActive() { streamsActive.Inc() }

func DecStreamsActive() { streamsActive.Dec() }

func IncStreamMessages() { streamMessagesTotal.Inc() }

func AddStreamBytes(n int64) { streamBytesTotal.Add(float64(n)) }

// IncStreamErrors counts a stream error by reason: rate_limit, send_error,
// marshal_error or propagation.
func IncStreamErrors(reason string) {
	streamErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordPassPrediction counts one target's pass prediction outcome.
func RecordPassPrediction(result string) {
	passPredictionsTotal.WithLabelValues(result).Inc()
}

// knownRoutes are the paths served by the API. Anything else is labeled
// "other" so scanners cannot grow the label set.
var knownRoutes = map[string]bool{
	"/":                        true,
	"/healthz":                 true,
	"/readyz":                  true,
	"/metrics":                 true,
	"/api/v1/orbit/propagate":  true,
	"/api/v1/orbit/batch":      true,
	"/api/v1/orbit/parameters": true,
	"/api/v1/orbit/elements":   true,
	"/api/v1/orbit/passes":     true,
	"/api/v1/orbit/stream":     true,
}

func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
