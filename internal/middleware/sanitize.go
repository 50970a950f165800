// internal/middleware/sanitize.go
//
// Input-sanitation middleware (stage 3).
//
// Context
// -------
// Runs after the cheap checks and before anything stateful sees the
// request.  Three jobs, in order:
//
//   1. Reject oversized bodies (Content-Length over the configured
//      ceiling → 413) and cap reads defensively with MaxBytesReader.
//   2. Reject absurd query strings (value count over the ceiling → 400).
//   3. Scrub query values and JSON bodies through internal/sanitize so
//      business handlers only ever see cleaned input.  Path parameters
//      are scrubbed at read time by the handlers (chi resolves them after
//      this stage runs).
//
// A body that is not valid JSON passes through untouched; rejecting it is
// the handler's call, not this stage's.

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/yanizio/taskgate/internal/httperr"
	"github.com/yanizio/taskgate/internal/sanitize"
)

// SanitizeOptions carries the performance-domain ceilings.
type SanitizeOptions struct {
	MaxBodyBytes  int64
	MaxParamCount int
}

// Sanitize returns the input-sanitation stage.
func Sanitize(opts SanitizeOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.MaxBodyBytes > 0 && r.ContentLength > opts.MaxBodyBytes {
				httperr.Write(w, r, false, httperr.PayloadTooLarge(opts.MaxBodyBytes))
				return
			}

			q := r.URL.Query()
			if opts.MaxParamCount > 0 {
				var count int
				for _, vs := range q {
					count += len(vs)
				}
				if count > opts.MaxParamCount {
					httperr.Write(w, r, false, httperr.TooManyParameters(count, opts.MaxParamCount))
					return
				}
			}

			// Scrub query values in place.
			if len(q) > 0 {
				for k, vs := range q {
					for i, v := range vs {
						vs[i] = sanitize.String(v)
					}
					q[k] = vs
				}
				r.URL.RawQuery = q.Encode()
			}

			if r.Body != nil && opts.MaxBodyBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes)
			}

			// Scrub JSON bodies.
			if r.Body != nil && isJSON(r.Header.Get("Content-Type")) && r.ContentLength != 0 {
				raw, err := io.ReadAll(r.Body)
				if err != nil {
					httperr.Write(w, r, false, httperr.PayloadTooLarge(opts.MaxBodyBytes))
					return
				}
				_ = r.Body.Close()

				var parsed any
				if json.Unmarshal(raw, &parsed) == nil {
					cleaned, err := json.Marshal(sanitize.Value(parsed))
					if err == nil {
						raw = cleaned
					}
				}
				r.Body = io.NopCloser(bytes.NewReader(raw))
				r.ContentLength = int64(len(raw))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}
