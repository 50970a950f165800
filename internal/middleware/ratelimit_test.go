// internal/middleware/ratelimit_test.go
//
// Unit-tests for the rate-limit stage: rejection shape, exemptions, and
// the strict limiter on sensitive prefixes.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yanizio/taskgate/internal/metrics"
	"github.com/yanizio/taskgate/internal/ratelimit"
)

func limitedHandler(generalMax, strictMax int) http.Handler {
	opts := RateLimitOptions{
		General:        ratelimit.New(time.Minute, generalMax),
		Strict:         ratelimit.New(15*time.Minute, strictMax),
		KeyFn:          func(r *http.Request) string { return "test-client" },
		Exempt:         []string{"/health", "/metrics"},
		StrictPrefixes: []string{"/auth"},
	}
	return RateLimit(opts)(okHandler())
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
	return rr
}

func TestRateLimit_RejectsPastMax(t *testing.T) {
	h := limitedHandler(2, 5)

	if rr := get(t, h, "/tasks"); rr.Code != http.StatusOK {
		t.Fatalf("first request: %d", rr.Code)
	}
	if rr := get(t, h, "/tasks"); rr.Code != http.StatusOK {
		t.Fatalf("second request: %d", rr.Code)
	}

	rr := get(t, h, "/tasks")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("429 without Retry-After header")
	}
}

func TestRateLimit_RemainingHeader(t *testing.T) {
	h := limitedHandler(5, 5)
	rr := get(t, h, "/tasks")
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Fatalf("X-RateLimit-Remaining = %q, want 4", got)
	}
}

func TestRateLimit_HealthAndMetricsExempt(t *testing.T) {
	h := limitedHandler(1, 5)
	get(t, h, "/tasks") // consume the only general slot

	for _, p := range []string{"/health", "/metrics"} {
		if rr := get(t, h, p); rr.Code != http.StatusOK {
			t.Fatalf("%s = %d, want 200 (exempt)", p, rr.Code)
		}
	}
	if rr := get(t, h, "/tasks"); rr.Code != http.StatusTooManyRequests {
		t.Fatal("general traffic should be limited while exempt paths pass")
	}
}

func TestRateLimit_CountsRejections(t *testing.T) {
	// Rejections never reach the request-log stage, so the stage itself
	// must feed the counter.
	rec := metrics.NewRecorder()
	h := RateLimit(RateLimitOptions{
		General:  ratelimit.New(time.Minute, 1),
		Strict:   ratelimit.New(15*time.Minute, 5),
		KeyFn:    func(r *http.Request) string { return "test-client" },
		Recorder: rec,
	})(okHandler())

	get(t, h, "/tasks")
	if got := rec.Snapshot().RateLimited; got != 0 {
		t.Fatalf("rate_limited = %d before any rejection", got)
	}

	if rr := get(t, h, "/tasks"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", rr.Code)
	}
	if got := rec.Snapshot().RateLimited; got != 1 {
		t.Fatalf("rate_limited = %d, want 1", got)
	}
}

func TestRateLimit_StrictPrefix(t *testing.T) {
	// Generous general limiter, strict max of 1: the second /auth request
	// must be rejected even though the general counter has room, and the
	// strict rejection must not consume general slots.
	h := limitedHandler(100, 1)

	if rr := get(t, h, "/auth/login"); rr.Code != http.StatusOK {
		t.Fatalf("first auth request: %d", rr.Code)
	}
	if rr := get(t, h, "/auth/login"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second auth request = %d, want 429", rr.Code)
	}
	if rr := get(t, h, "/tasks"); rr.Code != http.StatusOK {
		t.Fatalf("general traffic blocked by strict limiter: %d", rr.Code)
	}
}
