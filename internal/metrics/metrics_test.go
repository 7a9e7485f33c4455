package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Known exact routes.
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/", "/"},
		{"/api/v1/orbit/propagate", "/api/v1/orbit/propagate"},
		{"/api/v1/orbit/batch", "/api/v1/orbit/batch"},
		{"/api/v1/orbit/parameters", "/api/v1/orbit/parameters"},
		{"/api/v1/orbit/elements", "/api/v1/orbit/elements"},
		{"/api/v1/orbit/passes", "/api/v1/orbit/passes"},
		{"/api/v1/orbit/stream", "/api/v1/orbit/stream"},

		// Unknown/bot paths collapse to "other".
		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/api/v1/orbit/propagate/extra", "other"},
		{"/api/v2/orbit/propagate", "other"},
		{"/favicon.ico", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := normalizeRoute(tt.path)
			if got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestMetricsCardinality verifies that 100 unique unknown paths produce
// exactly 1 distinct path label, not 100.
func TestMetricsCardinality(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[normalizeRoute(fmt.Sprintf("/probe/%d", i))] = true
	}
	if len(seen) != 1 {
		t.Errorf("expected 1 unique label for unknown paths, got %d: %v", len(seen), seen)
	}
}

func TestMiddlewareExposesCounters(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	Middleware(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orbit/propagate", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}

	RecordPropagation("kepler", "inertial", ResultOK, 3*time.Millisecond, 1001, 4)
	RecordPropagation("kepler", "inertial", ResultDivergence, time.Millisecond, 0, 0)

	out := httptest.NewRecorder()
	Handler().ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := out.Body.String()

	for _, want := range []string{
		`orbit_http_requests_total{code="418",method="POST",path="/api/v1/orbit/propagate"}`,
		`orbit_propagations_total{frame="inertial",policy="kepler",result="ok"}`,
		`orbit_kepler_divergences_total`,
		`orbit_kepler_iterations_max_bucket`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestMiddlewareSupportsFlush(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := http.NewResponseController(w).Flush(); err != nil {
			t.Errorf("Flush through middleware: %v", err)
		}
	})
	rec := httptest.NewRecorder()
	Middleware(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orbit/stream", nil))
	if !rec.Flushed {
		t.Error("underlying recorder was not flushed")
	}
}
