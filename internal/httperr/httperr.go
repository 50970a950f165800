// internal/httperr/httperr.go
//
// Request-scoped error taxonomy and JSON envelope.
//
// Context
// -------
// Every error a client can see flows through this package: the pipeline
// stages short-circuit with one of the coded constructors below, and the
// business handlers return plain errors that `Wrap` normalizes.  The
// envelope is machine-readable:
//
//	{"error":{"code":"rate_limited","message":"…","retry_after":42}}
//
// Internal detail (wrapped error text, stack traces) is attached only when
// the caller says verbose — i.e., never in production.
//
// Notes
// -----
//   • Codes are stable strings; clients may switch on them.
//   • Oxford commas, two spaces after periods.

package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Code identifies one taxonomy entry.
type Code string

const (
	CodeOriginRejected    Code = "origin_rejected"
	CodeRateLimited       Code = "rate_limited"
	CodePayloadTooLarge   Code = "payload_too_large"
	CodeTooManyParameters Code = "too_many_parameters"
	CodeNotFound          Code = "not_found"
	CodeBadRequest        Code = "bad_request"
	CodeInternal          Code = "internal_error"
)

// Error is a coded, client-visible error.  Err (optional) carries the
// internal cause for logging; it is never serialized in production.
type Error struct {
	Code       Code
	Status     int
	Message    string
	RetryAfter time.Duration // only meaningful for rate_limited
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

//
// Constructors
//

func OriginRejected(origin string) *Error {
	return &Error{Code: CodeOriginRejected, Status: http.StatusForbidden,
		Message: fmt.Sprintf("origin %q is not permitted", origin)}
}

func RateLimited(retryAfter time.Duration) *Error {
	return &Error{Code: CodeRateLimited, Status: http.StatusTooManyRequests,
		Message: "too many requests", RetryAfter: retryAfter}
}

func PayloadTooLarge(limit int64) *Error {
	return &Error{Code: CodePayloadTooLarge, Status: http.StatusRequestEntityTooLarge,
		Message: fmt.Sprintf("request body exceeds %d bytes", limit)}
}

func TooManyParameters(got, max int) *Error {
	return &Error{Code: CodeTooManyParameters, Status: http.StatusBadRequest,
		Message: fmt.Sprintf("%d query parameters exceeds the limit of %d", got, max)}
}

func NotFound(what string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound,
		Message: what + " not found"}
}

func BadRequest(msg string) *Error {
	return &Error{Code: CodeBadRequest, Status: http.StatusBadRequest, Message: msg}
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError,
		Message: "internal server error", Err: err}
}

//
// Envelope
//

type envelope struct {
	Error body `json:"error"`
}

type body struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after,omitempty"` // seconds
	Detail     string `json:"detail,omitempty"`      // verbose only
	Stack      string `json:"stack,omitempty"`       // verbose only, panics
}

// Write serializes err as the JSON envelope.  Unrecognized errors become
// internal_error.  When verbose is true (non-production) the wrapped cause
// is included to aid debugging.
func Write(w http.ResponseWriter, r *http.Request, verbose bool, err error) {
	WriteStack(w, r, verbose, err, "")
}

// WriteStack is Write plus an optional captured stack (used by the recover
// stage).  The stack is emitted only in verbose mode.
func WriteStack(w http.ResponseWriter, r *http.Request, verbose bool, err error, stack string) {
	var he *Error
	if !errors.As(err, &he) {
		he = Internal(err)
	}

	b := body{Code: he.Code, Message: he.Message}
	if he.RetryAfter > 0 {
		secs := int(he.RetryAfter.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		b.RetryAfter = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	if verbose {
		if he.Err != nil {
			b.Detail = he.Err.Error()
		}
		b.Stack = stack
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(he.Status)
	if err := json.NewEncoder(w).Encode(envelope{Error: b}); err != nil {
		zap.S().Errorw("error envelope encode failed", "path", r.URL.Path, "err", err)
	}
}

//
// Handler adapter
//

// HandlerFunc is the business-collaborator contract: handle the request or
// return an error from the taxonomy (plain errors become internal_error).
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// Wrap adapts a HandlerFunc to http.Handler, normalizing returned errors.
// Internal errors are logged with full detail server-side regardless of
// the verbose flag.
func Wrap(verbose bool, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		var he *Error
		if !errors.As(err, &he) || he.Status >= http.StatusInternalServerError {
			zap.S().Errorw("handler error",
				"method", r.Method, "path", r.URL.Path, "err", err)
		}
		Write(w, r, verbose, err)
	})
}
