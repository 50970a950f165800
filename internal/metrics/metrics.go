// Package metrics holds the Prometheus instruments and the in-process
// counter set behind the health/metrics surface.  The Prometheus
// collectors register with the global registry, so importing this package
// in main.go is enough to expose them on the scrape endpoint; the Recorder
// is an explicit, injected value so tests and the health handler never
// touch global mutable state.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromPath is where cmd/web mounts the promhttp scrape handler.  Shared so
// the rate-limit stage can exempt it alongside the JSON surface.
const PromPath = "/metrics/prom"

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskgate_http_requests_total",
			Help: "Completed HTTP requests by status class.",
		}, []string{"class"})

	RequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskgate_http_request_duration_seconds",
			Help:    "End-to-end request latency.",
			Buckets: prometheus.DefBuckets,
		})

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskgate_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		})

	SlowRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskgate_slow_requests_total",
			Help: "Requests slower than the configured threshold.",
		})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RateLimitedTotal,
		SlowRequestsTotal,
	)
}

//
// Recorder
//

// Snapshot is one consistent read of the counters for the JSON surface.
type Snapshot struct {
	Requests    int64 `json:"requests"`
	Errors      int64 `json:"errors"`
	Slow        int64 `json:"slow"`
	RateLimited int64 `json:"rate_limited"`
	InFlight    int64 `json:"in_flight"`
}

// Recorder owns the request counters.  One instance per process, created
// in main and handed to the request-log stage and the health handler.
type Recorder struct {
	start time.Time

	requests    atomic.Int64
	errors      atomic.Int64
	slow        atomic.Int64
	rateLimited atomic.Int64
	inFlight    atomic.Int64
}

// NewRecorder starts the uptime clock.
func NewRecorder() *Recorder {
	return &Recorder{start: time.Now()}
}

// Begin marks a request in flight; the returned func completes it.
func (r *Recorder) Begin() func(status int, dur time.Duration, slow bool) {
	r.inFlight.Add(1)
	return func(status int, dur time.Duration, slow bool) {
		r.inFlight.Add(-1)
		r.requests.Add(1)
		RequestsTotal.WithLabelValues(statusClass(status)).Inc()
		RequestDuration.Observe(dur.Seconds())
		if status >= 500 {
			r.errors.Add(1)
		}
		if slow {
			r.slow.Add(1)
			SlowRequestsTotal.Inc()
		}
	}
}

// RateLimited counts one limiter rejection.  Called at the rejection site
// in the rate-limit stage; rejected requests never reach the request-log
// stage, so the done callback cannot account for them.
func (r *Recorder) RateLimited() {
	r.rateLimited.Add(1)
	RateLimitedTotal.Inc()
}

// Uptime reports time since the Recorder was created.
func (r *Recorder) Uptime() time.Duration { return time.Since(r.start) }

// Snapshot reads every counter.
func (r *Recorder) Snapshot() Snapshot {
	return Snapshot{
		Requests:    r.requests.Load(),
		Errors:      r.errors.Load(),
		Slow:        r.slow.Load(),
		RateLimited: r.rateLimited.Load(),
		InFlight:    r.inFlight.Load(),
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
