// internal/middleware/origin.go
//
// Origin-check middleware (stage 1).
//
// Context
// -------
// Browser requests carry an Origin header; anything not on the configured
// allow-list is rejected with a 403 origin_rejected envelope before any
// state is touched.  Requests with NO Origin header (curl, server-to-
// server, same-origin navigations) always pass — the check exists to stop
// hostile browser contexts, not non-browser clients.
//
// Preflight OPTIONS requests from an allowed origin are answered here with
// 204 and never forwarded further down the pipeline.
//
// An empty allow-list rejects every cross-origin request.  That is the
// production default until CORS_ORIGINS is set; strict by default.

package middleware

import (
	"net/http"
	"strings"

	"github.com/yanizio/taskgate/internal/httperr"
)

const preflightMaxAge = "600"

// Origin returns the origin-check stage for the given allow-list.
func Origin(allowed []string) func(http.Handler) http.Handler {
	// Normalized set; origins compare case-insensitively per RFC 6454
	// scheme/host rules, and a trailing slash is a config typo.
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimSuffix(o, "/"))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := set[strings.ToLower(strings.TrimSuffix(origin, "/"))]; !ok {
				httperr.Write(w, r, false, httperr.OriginRejected(origin))
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")

			// Preflight: answer immediately, nothing further runs.
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				h.Set("Access-Control-Max-Age", preflightMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
