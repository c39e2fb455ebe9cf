package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/me/gosched/internal/policy"
	"github.com/me/gosched/internal/store"
	"github.com/me/gosched/pkg/model"
)

// requireStore answers 503 when run history is disabled.
func (s *Server) requireStore(w http.ResponseWriter, reqID string) bool {
	if s.store != nil {
		return true
	}
	respondError(w, reqID, http.StatusServiceUnavailable, &model.APIError{
		Code:    model.ErrUnavailable,
		Message: "run history is not enabled on this server",
	})
	return false
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if !s.requireStore(w, reqID) {
		return
	}

	opts, fieldErrs := listOptions(r)
	if len(fieldErrs) > 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid query", fieldErrs...))
		return
	}

	runs, total, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	respondList(w, reqID, runs, total, opts)
}

// listOptions parses ?limit, ?offset and ?policy.
func listOptions(r *http.Request) (model.ListOptions, []model.FieldError) {
	opts := model.DefaultListOptions()
	q := r.URL.Query()
	var errs []model.FieldError

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "limit", Message: "must be an integer"})
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "offset", Message: "must be an integer"})
		}
		opts.Offset = n
	}
	if v := q.Get("policy"); v != "" {
		kinds, err := policy.ParseKinds([]string{v})
		if err != nil || len(kinds) != 1 {
			errs = append(errs, model.FieldError{Field: "policy", Message: "unknown policy " + strconv.Quote(v)})
		} else {
			opts.Policy = kinds[0]
		}
	}
	opts.Clamp()
	return opts, errs
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if !s.requireStore(w, reqID) {
		return
	}
	id := chi.URLParam(r, "id")

	rec, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	if rec == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}
	respondOK(w, reqID, rec)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if !s.requireStore(w, reqID) {
		return
	}
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = model.NewNotFoundError("run", id)
		}
		s.respondFailure(w, reqID, err)
		return
	}
	respondOK(w, reqID, map[string]any{"deleted": true})
}
