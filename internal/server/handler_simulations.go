package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/me/gosched/internal/engine"
	"github.com/me/gosched/internal/policy"
	"github.com/me/gosched/internal/report"
	"github.com/me/gosched/internal/runner"
	"github.com/me/gosched/internal/workload"
	"github.com/me/gosched/pkg/model"
)

type simulationRequest struct {
	Jobs     []model.Job `json:"jobs"`
	CSV      string      `json:"csv"`
	Quantum  int         `json:"quantum"`
	Policies []string    `json:"policies"`
	Report   bool        `json:"report"` // Include the plain-text report
	Stats    bool        `json:"stats"`  // Add the per-job table to the report
}

type simulationResponse struct {
	ID       string             `json:"id"`
	Recorded bool               `json:"recorded"`
	Jobs     int                `json:"jobs"`
	Rejected []string           `json:"rejected,omitempty"`
	Results  []*model.RunResult `json:"results"`
	Report   string             `json:"report,omitempty"`
}

func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req simulationRequest
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}

	jobs, rejected, fieldErrs := s.simulationJobs(req)
	if total := totalBurst(jobs); total > s.config.MaxTotalBurst {
		field := "jobs"
		if len(req.Jobs) == 0 {
			field = "csv"
		}
		fieldErrs = append(fieldErrs, model.FieldError{
			Field:   field,
			Message: fmt.Sprintf("total burst %d exceeds limit %d", total, s.config.MaxTotalBurst),
		})
	}
	kinds, err := policy.ParseKinds(req.Policies)
	if err != nil {
		fieldErrs = append(fieldErrs, model.FieldError{Field: "policies", Message: err.Error()})
	}
	for _, k := range kinds {
		if k.Preemptive() && req.Quantum <= 0 {
			fieldErrs = append(fieldErrs, model.FieldError{Field: "quantum", Message: "must be a positive integer for round-robin"})
			break
		}
	}
	if len(fieldErrs) > 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid simulation request", fieldErrs...))
		return
	}

	var out bytes.Buffer
	opts := []engine.Option{engine.WithReporter(report.New(&out))}
	if s.store != nil {
		opts = append(opts, engine.WithRecorder(s.store))
	}
	ctrl := engine.New(s.registry, runner.New(runner.Config{}, s.base), engine.Config{
		Quantum:  req.Quantum,
		Policies: kinds,
		Stats:    req.Stats,
		Workload: "api:" + reqID,
	}, s.base, opts...)

	sim, err := ctrl.Run(r.Context(), jobs)
	if err != nil {
		s.respondFailure(w, reqID, err)
		return
	}

	resp := simulationResponse{
		ID:       sim.ID,
		Recorded: s.store != nil,
		Jobs:     len(jobs),
		Rejected: rejected,
		Results:  sim.Results,
	}
	if req.Report {
		resp.Report = out.String()
	}
	respondCreated(w, reqID, resp)
}

// simulationJobs builds the workload from either inline jobs or CSV text.
func (s *Server) simulationJobs(req simulationRequest) ([]model.Job, []string, []model.FieldError) {
	switch {
	case len(req.Jobs) > 0 && strings.TrimSpace(req.CSV) != "":
		return nil, nil, []model.FieldError{{Field: "jobs", Message: "send either jobs or csv, not both"}}
	case len(req.Jobs) > 0:
		jobs, rejected := workload.FromTemplates(req.Jobs, s.config.MaxJobs)
		if len(jobs) == 0 {
			return nil, rejected, []model.FieldError{{Field: "jobs", Message: model.ErrEmptyWorkload.Error()}}
		}
		return jobs, rejected, nil
	case strings.TrimSpace(req.CSV) != "":
		jobs, err := workload.Parse(strings.NewReader(req.CSV), workload.Options{MaxJobs: s.config.MaxJobs, Logger: s.base})
		if err != nil {
			return nil, nil, []model.FieldError{{Field: "csv", Message: err.Error()}}
		}
		if len(jobs) == 0 {
			return nil, nil, []model.FieldError{{Field: "csv", Message: model.ErrEmptyWorkload.Error()}}
		}
		return jobs, nil, nil
	}
	return nil, nil, []model.FieldError{{Field: "jobs", Message: fmt.Sprintf("required: %v", model.ErrEmptyWorkload)}}
}

func totalBurst(jobs []model.Job) int {
	total := 0
	for _, j := range jobs {
		total += j.Burst
	}
	return total
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if !s.requireStore(w, reqID) {
		return
	}
	id := chi.URLParam(r, "id")

	runs, err := s.store.ListRunsBySimulation(r.Context(), id)
	if err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	if len(runs) == 0 {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("simulation", id))
		return
	}
	respondOK(w, reqID, map[string]any{"id": id, "runs": runs})
}
