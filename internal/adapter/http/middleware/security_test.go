package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("body"))
	}))
}

func TestSecurityHeaders_StaticHeaders(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{header: "X-Content-Type-Options", expected: "nosniff"},
		{header: "X-Frame-Options", expected: "DENY"},
		{header: "Referrer-Policy", expected: "no-referrer"},
		{header: "Permissions-Policy", expected: "camera=(), microphone=(), geolocation=()"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			rec := httptest.NewRecorder()
			okHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.expected, rec.Header().Get(tt.header))
		})
	}
}

func TestSecurityHeaders_CSP(t *testing.T) {
	rec := httptest.NewRecorder()
	okHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	csp := rec.Header().Get("Content-Security-Policy")
	for _, directive := range []string{
		"default-src 'self'",
		"script-src 'self' 'unsafe-inline'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
	} {
		assert.Contains(t, csp, directive)
	}
	assert.NotContains(t, csp, "https://", "no third-party origins")
	assert.Len(t, strings.Split(csp, "; "), 6)
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  bool
	}{
		{name: "plain http", setup: func(*http.Request) {}, want: false},
		{name: "tls", setup: func(r *http.Request) { r.TLS = &tls.ConnectionState{} }, want: true},
		{name: "proxy https", setup: func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "https") }, want: true},
		{name: "proxy http", setup: func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "http") }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			okHandler().ServeHTTP(rec, req)

			hsts := rec.Header().Get("Strict-Transport-Security")
			if tt.want {
				assert.Equal(t, "max-age=31536000; includeSubDomains", hsts)
			} else {
				assert.Empty(t, hsts)
			}
		})
	}
}

func TestSecurityHeaders_PreservesResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	okHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "body", rec.Body.String())
}
