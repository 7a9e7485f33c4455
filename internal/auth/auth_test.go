package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	enabled := Middleware(Config{Enabled: true, Token: "s3cret"})(ok)
	disabled := Middleware(Config{})(ok)

	tests := []struct {
		name    string
		handler http.Handler
		path    string
		header  string
		want    int
	}{
		{"disabled passes", disabled, "/api/v1/orbit/batch", "", http.StatusNoContent},
		{"probe is public", enabled, "/healthz", "", http.StatusNoContent},
		{"metrics is public", enabled, "/metrics", "", http.StatusNoContent},
		{"missing header", enabled, "/api/v1/orbit/propagate", "", http.StatusUnauthorized},
		{"wrong token", enabled, "/api/v1/orbit/propagate", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", enabled, "/api/v1/orbit/propagate", "Basic s3cret", http.StatusUnauthorized},
		{"bare scheme", enabled, "/api/v1/orbit/propagate", "Bearer", http.StatusUnauthorized},
		{"valid token", enabled, "/api/v1/orbit/propagate", "Bearer s3cret", http.StatusNoContent},
		{"case-insensitive scheme", enabled, "/api/v1/orbit/batch", "bearer s3cret", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if w.Code == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 without WWW-Authenticate")
			}
		})
	}
}
