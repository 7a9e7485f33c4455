package httputil

import (
	"net/http"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		trust   bool
		want    string
	}{
		{name: "ipv4 host:port", remote: "192.168.1.1:12345", want: "192.168.1.1"},
		{name: "ipv6 host:port", remote: "[::1]:12345", want: "::1"},
		{name: "bare address", remote: "192.168.1.1", want: "192.168.1.1"},
		{
			name:    "forwarded ignored without trust",
			remote:  "10.0.0.1:1234",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "5.6.7.8"},
			want:    "10.0.0.1",
		},
		{
			name:    "leftmost forwarded entry",
			remote:  "10.0.0.3:1234",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1, 10.0.0.2"},
			trust:   true,
			want:    "1.2.3.4",
		},
		{
			name:    "forwarded wins over real ip",
			remote:  "10.0.0.1:1234",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "5.6.7.8"},
			trust:   true,
			want:    "1.2.3.4",
		},
		{
			name:    "real ip fallback",
			remote:  "10.0.0.1:1234",
			headers: map[string]string{"X-Real-IP": "5.6.7.8"},
			trust:   true,
			want:    "5.6.7.8",
		},
		{
			name:    "malformed forwarded skipped, mapped real ip unmapped",
			remote:  "10.0.0.1:1234",
			headers: map[string]string{"X-Forwarded-For": "not-an-ip, 1.2.3.4", "X-Real-IP": "::ffff:5.6.7.8"},
			trust:   true,
			want:    "5.6.7.8",
		},
		{
			name:    "all headers garbage",
			remote:  "10.0.0.1:1234",
			headers: map[string]string{"X-Forwarded-For": "nope", "X-Real-IP": "garbage"},
			trust:   true,
			want:    "10.0.0.1",
		},
		{name: "trusted without headers", remote: "10.0.0.1:1234", trust: true, want: "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{RemoteAddr: tt.remote, Header: http.Header{}}
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trust); got != tt.want {
				t.Errorf("ClientIP(trust=%v) = %q, want %q", tt.trust, got, tt.want)
			}
		})
	}
}
