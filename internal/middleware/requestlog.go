// internal/middleware/requestlog.go
//
// Structured request-log middleware (stage 5).
//
// Context
// -------
// One JSON log entry per completed request: method, path, client address,
// status, bytes written, duration, a User-Agent summary (browser, OS, bot
// flag), and — when a GeoIP database is configured — the country code.
// Requests slower than the configured threshold are flagged `slow` and
// logged at WARN so they stand out without a query.
//
// The stage also drives the metrics Recorder, which is where the health
// and metrics endpoints get their request/error counters.

package middleware

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/yanizio/taskgate/internal/clientid"
	"github.com/yanizio/taskgate/internal/metrics"
)

// RequestLogOptions wires the log sink, counter set, and thresholds.
type RequestLogOptions struct {
	Log        *zap.SugaredLogger
	Recorder   *metrics.Recorder
	Slow       time.Duration
	TrustProxy bool
	Geo        *geoip2.Reader // optional; nil skips country lookup
}

// RequestLog returns the request-log stage.
func RequestLog(opts RequestLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			done := opts.Recorder.Begin()

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			dur := time.Since(start)
			slow := opts.Slow > 0 && dur > opts.Slow
			done(sw.status, dur, slow)

			ip := clientid.IP(r, opts.TrustProxy)
			ua := clientid.Parse(r.UserAgent())

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"ip", ip,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration_ms", dur.Milliseconds(),
				"browser", ua.Browser,
				"os", ua.OS,
				"bot", ua.Bot,
			}
			if opts.Geo != nil {
				if cc := country(opts.Geo, ip); cc != "" {
					fields = append(fields, "country", cc)
				}
			}

			switch {
			case slow:
				opts.Log.Warnw("request slow", append(fields, "slow", true)...)
			case sw.status >= 500:
				opts.Log.Errorw("request", fields...)
			default:
				opts.Log.Infow("request", fields...)
			}
		})
	}
}

// country is a best-effort MaxMind lookup; failures just omit the field.
func country(geo *geoip2.Reader, ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	rec, err := geo.Country(parsed)
	if err != nil || rec == nil {
		return ""
	}
	return rec.Country.IsoCode
}

//
// statusWriter
//

// statusWriter captures the status code and byte count the handler wrote.
// Flusher and Hijacker pass through to the underlying writer so streaming
// and upgrade handlers keep working behind the pipeline.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}
