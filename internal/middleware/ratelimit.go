// internal/middleware/ratelimit.go
//
// Rate-limit middleware (stage 2).
//
// Context
// -------
// Two fixed-window limiters guard the service: the general one sized from
// configuration, and a strict one (15 minutes, 5 requests) for sensitive
// path prefixes such as /auth.  Health and metrics paths are exempt from
// the general limiter by policy — monitoring must keep working while the
// service is saturated — but never from the strict one.
//
// Rejections short-circuit with the rate_limited envelope, a Retry-After
// header equal to the remaining window, and the usual X-RateLimit hints.

package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/yanizio/taskgate/internal/httperr"
	"github.com/yanizio/taskgate/internal/metrics"
	"github.com/yanizio/taskgate/internal/ratelimit"
)

// RateLimitOptions wires limiters to paths.
type RateLimitOptions struct {
	General *ratelimit.Limiter
	Strict  *ratelimit.Limiter

	// KeyFn derives the per-client key; see internal/clientid.
	KeyFn func(*http.Request) string

	// Recorder, when set, counts rejections.  Rejections happen before
	// the request-log stage runs, so they must be counted here.
	Recorder *metrics.Recorder

	// Exempt paths skip the general limiter (exact match).
	Exempt []string

	// StrictPrefixes route to the strict limiter instead.
	StrictPrefixes []string
}

// RateLimit returns the rate-limit stage.
func RateLimit(opts RateLimitOptions) func(http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(opts.Exempt))
	for _, p := range opts.Exempt {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			var d ratelimit.Decision
			switch {
			case matchesPrefix(r.URL.Path, opts.StrictPrefixes):
				// Separate key space so a strict rejection cannot be
				// dodged by warming the general counter, or vice versa.
				d = opts.Strict.Check("strict|" + key)
			default:
				if _, ok := exempt[r.URL.Path]; ok {
					next.ServeHTTP(w, r)
					return
				}
				d = opts.General.Check(key)
			}

			if !d.Allowed {
				if opts.Recorder != nil {
					opts.Recorder.RateLimited()
				}
				httperr.Write(w, r, false, httperr.RateLimited(d.RetryAfter))
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
