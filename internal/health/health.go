// Package health serves liveness and readiness probes.
package health

import (
	"net/http"
	"sync/atomic"
)

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Checker tracks whether the service should receive traffic. It starts not
// ready; main flips it once the worker pool is up and back during shutdown.
type Checker struct {
	ready atomic.Bool
}

// SetReady marks the service ready or draining.
func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

// Ready reports the current state.
func (c *Checker) Ready() bool {
	return c.ready.Load()
}

// Readyz returns 200 "ready\n" when ready and 503 "not ready\n" otherwise.
func (c *Checker) Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if !c.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready\n"))
}
