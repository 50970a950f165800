// internal/task/handlers.go
//
// Task CRUD handlers.
//
// Context
// -------
// Mounted behind the security pipeline, so bodies and query strings arrive
// sanitized and size-checked.  Path parameters resolve here (chi runs
// after the pipeline), so they are scrubbed at read time.  Every failure
// path returns an httperr-coded error; the Wrap adapter turns it into the
// JSON envelope.

package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/taskgate/internal/httperr"
	"github.com/yanizio/taskgate/internal/sanitize"
)

const maxTitleLen = 500

// Handlers exposes the CRUD surface over a Store.
type Handlers struct {
	store   Store
	verbose bool
}

// NewHandlers builds the handler set.  verbose controls error detail and
// should be false in production.
func NewHandlers(store Store, verbose bool) *Handlers {
	return &Handlers{store: store, verbose: verbose}
}

// Routes mounts the CRUD endpoints on a fresh chi router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/", httperr.Wrap(h.verbose, h.list))
	r.Method(http.MethodPost, "/", httperr.Wrap(h.verbose, h.create))
	r.Method(http.MethodGet, "/{id}", httperr.Wrap(h.verbose, h.get))
	r.Method(http.MethodPut, "/{id}", httperr.Wrap(h.verbose, h.update))
	r.Method(http.MethodDelete, "/{id}", httperr.Wrap(h.verbose, h.delete))
	return r
}

//
// Handlers
//

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) error {
	tasks, err := h.store.List(r.Context())
	if err != nil {
		return httperr.Internal(err)
	}
	return writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	t, err := h.store.Get(r.Context(), id)
	if err != nil {
		return storeErr(err)
	}
	return writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) error {
	in, err := decodeTask(r)
	if err != nil {
		return err
	}
	if err := h.store.Create(r.Context(), in); err != nil {
		return httperr.Internal(err)
	}
	return writeJSON(w, http.StatusCreated, in)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	in, err := decodeTask(r)
	if err != nil {
		return err
	}
	in.ID = id
	if err := h.store.Update(r.Context(), in); err != nil {
		return storeErr(err)
	}
	return writeJSON(w, http.StatusOK, in)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		return storeErr(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

//
// Helpers
//

// pathID reads and scrubs the {id} parameter.  The sanitizer pass keeps
// the path-parameter surface consistent with body and query handling.
func pathID(r *http.Request) (int64, error) {
	raw := sanitize.String(chi.URLParam(r, "id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, httperr.BadRequest("task id must be a positive integer")
	}
	return id, nil
}

func decodeTask(r *http.Request) (*Task, error) {
	var in Task
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, httperr.BadRequest("body must be a task JSON object")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, httperr.BadRequest("title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, httperr.BadRequest("title is too long")
	}
	return &in, nil
}

func storeErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("task")
	}
	return httperr.Internal(err)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
