// internal/middleware/recover_test.go
//
// Unit-tests for the error-normalization stage: panics become the
// internal_error envelope, and stacks leak only in verbose mode.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func panicky() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

type recoverEnvelope struct {
	Error struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
		Stack  string `json:"stack"`
	} `json:"error"`
}

func TestRecover_PanicBecomesInternalError(t *testing.T) {
	h := Recover(false, zap.NewNop().Sugar())(panicky())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/tasks", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var env recoverEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("body is not the JSON envelope: %v", err)
	}
	if env.Error.Code != "internal_error" {
		t.Fatalf("code = %q, want internal_error", env.Error.Code)
	}
	if env.Error.Detail != "" || env.Error.Stack != "" {
		t.Fatal("non-verbose envelope must not carry detail or stack")
	}
}

func TestRecover_VerboseIncludesStack(t *testing.T) {
	h := Recover(true, zap.NewNop().Sugar())(panicky())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/tasks", nil))

	var env recoverEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("body is not the JSON envelope: %v", err)
	}
	if env.Error.Stack == "" {
		t.Fatal("verbose envelope should include the stack")
	}
	if env.Error.Detail == "" {
		t.Fatal("verbose envelope should include the panic detail")
	}
}

func TestRecover_CleanRequestUntouched(t *testing.T) {
	h := Recover(false, zap.NewNop().Sugar())(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/tasks", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
