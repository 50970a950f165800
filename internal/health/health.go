// internal/health/health.go
//
// Health and metrics JSON surface.
//
// Context
// -------
// Two read-only endpoints for humans and probes, both exempt from the
// general rate limiter by pipeline policy:
//
//   • health  – uptime, environment, and resource usage
//   • metrics – the same, plus the request/error counters the request-log
//     stage accumulates in the injected Recorder
//
// Prometheus scraping is a separate endpoint (promhttp) mounted in
// cmd/web; this surface is the cheap JSON one the deployment contract
// names.

package health

import (
	"encoding/json"
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/yanizio/taskgate/internal/metrics"
)

// Handler serves the health and metrics queries.
type Handler struct {
	Environment string
	Recorder    *metrics.Recorder
}

type healthBody struct {
	Status      string  `json:"status"`
	Environment string  `json:"environment"`
	UptimeSecs  float64 `json:"uptime_seconds"`
	Goroutines  int     `json:"goroutines"`
	HeapBytes   uint64  `json:"heap_bytes"`
}

type metricsBody struct {
	healthBody
	Counters metrics.Snapshot `json:"counters"`
}

// Health responds with process liveness and resource usage.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.body())
}

// Metrics responds with the health body plus request counters.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, metricsBody{
		healthBody: h.body(),
		Counters:   h.Recorder.Snapshot(),
	})
}

func (h *Handler) body() healthBody {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return healthBody{
		Status:      "ok",
		Environment: h.Environment,
		UptimeSecs:  h.Recorder.Uptime().Seconds(),
		Goroutines:  runtime.NumGoroutine(),
		HeapBytes:   ms.HeapAlloc,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("health encode failed", "err", err)
	}
}
