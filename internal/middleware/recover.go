// internal/middleware/recover.go
//
// Error-normalization middleware (stage 6).
//
// Context
// -------
// The innermost stage, wrapped directly around the business handler.  Any
// panic from the handler (or from a deeper library) is caught here, logged
// with the full stack server-side, and converted into the internal_error
// envelope.  In production the client sees only the generic message; in
// development and test the panic text and stack ride along in the envelope
// to aid debugging.
//
// Handler-returned errors take the other door — httperr.Wrap — so by the
// time a response leaves the pipeline, nothing internal has escaped
// untransformed.

package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/yanizio/taskgate/internal/httperr"
)

// Recover returns the error-normalization stage.  verbose should be false
// in production.
func Recover(verbose bool, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// The client went away; let net/http handle it.
					panic(rec)
				}

				stack := string(debug.Stack())
				log.Errorw("panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", fmt.Sprint(rec),
					"stack", stack,
				)

				err := httperr.Internal(fmt.Errorf("panic: %v", rec))
				httperr.WriteStack(w, r, verbose, err, stack)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
