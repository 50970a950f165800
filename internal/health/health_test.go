// internal/health/health_test.go
//
// Tests for the health and metrics JSON surface.

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yanizio/taskgate/internal/metrics"
)

func TestHealth_Body(t *testing.T) {
	h := &Handler{Environment: "test", Recorder: metrics.NewRecorder()}

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Status      string  `json:"status"`
		Environment string  `json:"environment"`
		UptimeSecs  float64 `json:"uptime_seconds"`
		Goroutines  int     `json:"goroutines"`
		HeapBytes   uint64  `json:"heap_bytes"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Environment != "test" {
		t.Fatalf("body = %+v", body)
	}
	if body.Goroutines < 1 || body.HeapBytes == 0 {
		t.Fatalf("resource fields empty: %+v", body)
	}
}

func TestMetrics_IncludesCounters(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.Begin()(http.StatusOK, 5*time.Millisecond, false)
	rec.Begin()(http.StatusNoContent, time.Millisecond, false)
	rec.RateLimited()

	h := &Handler{Environment: "test", Recorder: rec}
	rr := httptest.NewRecorder()
	h.Metrics(rr, httptest.NewRequest("GET", "/metrics", nil))

	var body struct {
		Status   string `json:"status"`
		Counters struct {
			Requests    int64 `json:"requests"`
			RateLimited int64 `json:"rate_limited"`
			InFlight    int64 `json:"in_flight"`
		} `json:"counters"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Counters.Requests != 2 {
		t.Fatalf("requests = %d, want 2", body.Counters.Requests)
	}
	if body.Counters.RateLimited != 1 {
		t.Fatalf("rate_limited = %d, want 1", body.Counters.RateLimited)
	}
	if body.Counters.InFlight != 0 {
		t.Fatalf("in_flight = %d, want 0", body.Counters.InFlight)
	}
}
