// internal/middleware/security_test.go
//
// Unit-tests for the security-header stage: header presence, handler
// override, and the static-vs-API cache split.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurity_SetsStandardHeaders(t *testing.T) {
	h := Security(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/tasks", nil))

	for header, wantNonEmpty := range map[string]bool{
		"Strict-Transport-Security": true,
		"Content-Security-Policy":   true,
		"X-Frame-Options":           true,
		"X-Content-Type-Options":    true,
		"Referrer-Policy":           true,
		"Permissions-Policy":        true,
	} {
		if got := rr.Header().Get(header); wantNonEmpty && got == "" {
			t.Errorf("%s not set", header)
		}
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestSecurity_CacheDirectives(t *testing.T) {
	h := Security(okHandler())

	api := httptest.NewRecorder()
	h.ServeHTTP(api, httptest.NewRequest("GET", "/tasks", nil))
	if got := api.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("API Cache-Control = %q, want no-store", got)
	}

	static := httptest.NewRecorder()
	h.ServeHTTP(static, httptest.NewRequest("GET", "/static/app.css", nil))
	if got := static.Header().Get("Cache-Control"); got != "public, max-age=31536000, immutable" {
		t.Fatalf("static Cache-Control = %q", got)
	}
}

func TestSecurity_HandlerMayOverride(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=60")
		w.WriteHeader(http.StatusOK)
	})
	rr := httptest.NewRecorder()
	Security(next).ServeHTTP(rr, httptest.NewRequest("GET", "/tasks", nil))

	if got := rr.Header().Get("Cache-Control"); got != "max-age=60" {
		t.Fatalf("handler override lost: %q", got)
	}
}

func TestStaticAsset(t *testing.T) {
	cases := map[string]bool{
		"/static/app.js":  true,
		"/assets/logo":    true,
		"/favicon.ico":    true,
		"/app.CSS":        true,
		"/tasks":          false,
		"/tasks/12":       false,
		"/health":         false,
	}
	for p, want := range cases {
		if got := StaticAsset(p); got != want {
			t.Errorf("StaticAsset(%q) = %v, want %v", p, got, want)
		}
	}
}
