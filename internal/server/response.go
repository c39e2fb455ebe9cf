package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/me/gosched/internal/policy"
	"github.com/me/gosched/internal/store"
	"github.com/me/gosched/pkg/model"
)

func respondOK(w http.ResponseWriter, reqID string, data any) {
	writeEnvelope(w, http.StatusOK, model.Response{Status: "ok", RequestID: reqID, Data: data})
}

func respondCreated(w http.ResponseWriter, reqID string, data any) {
	writeEnvelope(w, http.StatusCreated, model.Response{Status: "ok", RequestID: reqID, Data: data})
}

// respondList writes one page of run history.
func respondList(w http.ResponseWriter, reqID string, runs []*model.RunRecord, total int, opts model.ListOptions) {
	if runs == nil {
		runs = []*model.RunRecord{}
	}
	writeEnvelope(w, http.StatusOK, model.Response{
		Status:     "ok",
		RequestID:  reqID,
		Data:       runs,
		Pagination: model.NewPagination(total, opts),
	})
}

func respondError(w http.ResponseWriter, reqID string, status int, apiErr *model.APIError) {
	writeEnvelope(w, status, model.Response{Status: "error", RequestID: reqID, Error: apiErr})
}

// respondFailure maps an error from the engine or the store onto a status
// code. Anything unrecognised is a 500 and is logged.
func (s *Server) respondFailure(w http.ResponseWriter, reqID string, err error) {
	var apiErr *model.APIError
	var invariant *model.InvariantError
	switch {
	case errors.As(err, &apiErr):
		respondError(w, reqID, statusFor(apiErr.Code), apiErr)
	case errors.Is(err, model.ErrEmptyWorkload), errors.Is(err, policy.ErrInvalidQuantum):
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
	case errors.Is(err, store.ErrNotFound):
		respondError(w, reqID, http.StatusNotFound, &model.APIError{Code: model.ErrNotFound, Message: err.Error()})
	case errors.As(err, &invariant):
		s.logger.Error("simulation aborted", "request_id", reqID, "policy", invariant.Policy, "clock", invariant.Clock, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{Code: model.ErrInternal, Message: err.Error()})
	default:
		s.logger.Error("request failed", "request_id", reqID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{Code: model.ErrInternal, Message: err.Error()})
	}
}

func statusFor(code model.ErrorCode) int {
	switch code {
	case model.ErrValidation:
		return http.StatusBadRequest
	case model.ErrNotFound:
		return http.StatusNotFound
	case model.ErrUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeEnvelope(w http.ResponseWriter, status int, resp model.Response) {
	resp.Timestamp = time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
