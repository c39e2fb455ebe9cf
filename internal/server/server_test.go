package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/me/gosched/internal/config"
	"github.com/me/gosched/internal/logging"
	"github.com/me/gosched/internal/policy"
	"github.com/me/gosched/internal/store"
	"github.com/me/gosched/pkg/model"
)

func testServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(config.DefaultServerConfig(), st, logging.Discard()), st
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Timestamp  string            `json:"timestamp"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

func do(t *testing.T, srv http.Handler, method, path, body string, wantStatus int) envelope {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != wantStatus {
		t.Fatalf("%s %s: status=%d, want %d, body=%s", method, path, w.Code, wantStatus, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid JSON: %v", method, path, err)
	}
	return env
}

func TestDiscovery(t *testing.T) {
	srv, _ := testServer(t)
	env := do(t, srv, "GET", "/api/v1/", "", http.StatusOK)
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}
	if !strings.HasPrefix(env.RequestID, "req_") {
		t.Errorf("request_id = %q, want req_ prefix", env.RequestID)
	}

	var data struct {
		Name      string   `json:"name"`
		Policies  []string `json:"policies"`
		Endpoints []struct {
			Path string `json:"path"`
		} `json:"endpoints"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Name != "gosched API" {
		t.Errorf("name = %q, want gosched API", data.Name)
	}
	if strings.Join(data.Policies, ",") != "fcfs,sjf,priority,rr" {
		t.Errorf("policies = %v", data.Policies)
	}
	if len(data.Endpoints) < 4 {
		t.Errorf("endpoints count = %d, want >= 4", len(data.Endpoints))
	}
}

func TestHealth(t *testing.T) {
	srv, st := testServer(t)
	if err := st.CreateRun(context.Background(), &model.RunRecord{ID: "run_h", SimulationID: "sim_h", Policy: model.PolicyFCFS}); err != nil {
		t.Fatalf("create run: %v", err)
	}
	env := do(t, srv, "GET", "/api/v1/health", "", http.StatusOK)

	var data struct {
		Status   string   `json:"status"`
		Version  string   `json:"version"`
		Store    string   `json:"store"`
		Runs     int      `json:"recorded_runs"`
		Policies []string `json:"policies"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", data.Status)
	}
	if data.Version != Version {
		t.Errorf("version = %q, want %s", data.Version, Version)
	}
	if data.Store != "sqlite" {
		t.Errorf("store = %q, want sqlite", data.Store)
	}
	if data.Runs != 1 {
		t.Errorf("recorded_runs = %d, want 1", data.Runs)
	}
	if got := strings.Join(data.Policies, ","); got != "fcfs,sjf,priority,rr" {
		t.Errorf("policies = %s", got)
	}
	if env.Error != nil {
		t.Errorf("error = %+v, want omitted", env.Error)
	}
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"client id reused", "client-42", true},
		{"none sent", "", false},
		{"unsafe characters", "id with spaces", false},
		{"too long", strings.Repeat("x", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			req := httptest.NewRequest("GET", "/api/v1/health", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			if tt.keep && got != tt.header {
				t.Errorf("X-Request-ID = %q, want %q", got, tt.header)
			}
			if !tt.keep && !strings.HasPrefix(got, "req_") {
				t.Errorf("X-Request-ID = %q, want generated req_ id", got)
			}
			var env envelope
			json.Unmarshal(w.Body.Bytes(), &env)
			if env.RequestID != got {
				t.Errorf("envelope request_id = %q, header %q", env.RequestID, got)
			}
		})
	}
}

func TestRespondFailure(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   model.ErrorCode
	}{
		{"api error", model.NewNotFoundError("run", "run_x"), http.StatusNotFound, model.ErrNotFound},
		{"unavailable", &model.APIError{Code: model.ErrUnavailable, Message: "off"}, http.StatusServiceUnavailable, model.ErrUnavailable},
		{"empty workload", fmt.Errorf("run fcfs: %w", model.ErrEmptyWorkload), http.StatusBadRequest, model.ErrValidation},
		{"bad quantum", fmt.Errorf("configure policy rr: %w", policy.ErrInvalidQuantum), http.StatusBadRequest, model.ErrValidation},
		{"missing run", fmt.Errorf("%w: run_x", store.ErrNotFound), http.StatusNotFound, model.ErrNotFound},
		{"invariant", &model.InvariantError{Policy: model.PolicyRR, Reason: "boom"}, http.StatusInternalServerError, model.ErrInternal},
		{"other", errors.New("disk full"), http.StatusInternalServerError, model.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			w := httptest.NewRecorder()
			srv.respondFailure(w, "req_test", tt.err)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			var env envelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if env.Status != "error" || env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("envelope = %+v, want code %s", env, tt.code)
			}
			if env.Data != nil {
				t.Errorf("data = %s, want omitted", env.Data)
			}
		})
	}
}

type simData struct {
	ID       string             `json:"id"`
	Recorded bool               `json:"recorded"`
	Jobs     int                `json:"jobs"`
	Rejected []string           `json:"rejected"`
	Results  []*model.RunResult `json:"results"`
	Report   string             `json:"report"`
}

func TestCreateSimulation_Jobs(t *testing.T) {
	srv, _ := testServer(t)
	body := `{
		"jobs": [
			{"name":"A","description":"d","arrival":0,"burst":5,"priority":1},
			{"name":"B","description":"d","arrival":1,"burst":3,"priority":2}
		],
		"quantum": 2,
		"report": true
	}`
	env := do(t, srv, "POST", "/api/v1/simulations/", body, http.StatusCreated)

	var data simData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !strings.HasPrefix(data.ID, "sim_") {
		t.Errorf("id = %q, want sim_ prefix", data.ID)
	}
	if !data.Recorded || data.Jobs != 2 {
		t.Errorf("recorded = %v, jobs = %d", data.Recorded, data.Jobs)
	}
	if len(data.Results) != 4 {
		t.Fatalf("results = %d, want 4", len(data.Results))
	}
	fcfs, rr := data.Results[0], data.Results[3]
	if fcfs.Policy != model.PolicyFCFS || fcfs.Summary.Value != 2 {
		t.Errorf("fcfs = %s %+v", fcfs.Policy, fcfs.Summary)
	}
	if rr.Policy != model.PolicyRR || rr.Summary.Value != 8 || !rr.Summary.Integer {
		t.Errorf("rr = %s %+v", rr.Policy, rr.Summary)
	}
	if len(rr.Dispatches()) != 5 {
		t.Errorf("rr dispatches = %d, want 5", len(rr.Dispatches()))
	}
	if !strings.Contains(data.Report, "0 → 5: A running d.") {
		t.Errorf("report missing FCFS line:\n%s", data.Report)
	}
}

func TestCreateSimulation_CSV(t *testing.T) {
	srv, _ := testServer(t)
	body := `{"csv":"A,d,3,2,1\nbad line\n","policies":["fcfs"]}`
	env := do(t, srv, "POST", "/api/v1/simulations/", body, http.StatusCreated)

	var data simData
	json.Unmarshal(env.Data, &data)
	if data.Jobs != 1 || len(data.Results) != 1 {
		t.Fatalf("jobs = %d, results = %d", data.Jobs, len(data.Results))
	}
	first := data.Results[0].Events[0]
	if first.Kind != model.EventIdle || first.Start != 0 || first.End != 3 {
		t.Errorf("first event = %+v, want idle 0-3", first)
	}
	if data.Report != "" {
		t.Error("report included without being requested")
	}
}

func TestCreateSimulation_Rejected(t *testing.T) {
	srv, _ := testServer(t)
	body := `{"jobs":[{"name":"A","arrival":0,"burst":1},{"name":"","arrival":0,"burst":1}],"policies":["sjf"]}`
	env := do(t, srv, "POST", "/api/v1/simulations/", body, http.StatusCreated)

	var data simData
	json.Unmarshal(env.Data, &data)
	if data.Jobs != 1 || len(data.Rejected) != 1 {
		t.Errorf("jobs = %d, rejected = %v", data.Jobs, data.Rejected)
	}
}

func TestCreateSimulation_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"invalid json", `not json`, ""},
		{"no jobs", `{"quantum":2}`, "jobs"},
		{"jobs and csv", `{"jobs":[{"name":"A","burst":1}],"csv":"A,d,0,1,1","quantum":2}`, "jobs"},
		{"csv without jobs", `{"csv":"garbage","quantum":2}`, "csv"},
		{"missing quantum", `{"jobs":[{"name":"A","burst":1}]}`, "quantum"},
		{"unknown policy", `{"jobs":[{"name":"A","burst":1}],"quantum":1,"policies":["lottery"]}`, "policies"},
		{"total burst over limit", `{"jobs":[{"name":"A","burst":600000},{"name":"B","burst":600000}],"quantum":1}`, "jobs"},
		{"csv burst over limit", `{"csv":"A,d,0,2000000,1","quantum":1}`, "csv"},
		{"burst out of range", `{"jobs":[{"name":"A","burst":2000000000}],"quantum":1}`, "jobs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			env := do(t, srv, "POST", "/api/v1/simulations/", tt.body, http.StatusBadRequest)
			if env.Status != "error" || env.Error == nil || env.Error.Code != model.ErrValidation {
				t.Fatalf("error = %+v", env.Error)
			}
			if tt.field == "" {
				return
			}
			found := false
			for _, d := range env.Error.Details {
				if d.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("details = %+v, want field %q", env.Error.Details, tt.field)
			}
		})
	}
}

func TestRunsLifecycle(t *testing.T) {
	srv, _ := testServer(t)
	body := `{"jobs":[{"name":"A","description":"d","arrival":0,"burst":5,"priority":1},{"name":"B","description":"d","arrival":1,"burst":3,"priority":2}],"quantum":2}`
	env := do(t, srv, "POST", "/api/v1/simulations/", body, http.StatusCreated)
	var sim simData
	json.Unmarshal(env.Data, &sim)

	// List, filtered by policy alias.
	env = do(t, srv, "GET", "/api/v1/runs/?policy=round-robin", "", http.StatusOK)
	var runs []*model.RunRecord
	json.Unmarshal(env.Data, &runs)
	if len(runs) != 1 || runs[0].Policy != model.PolicyRR {
		t.Fatalf("runs = %+v", runs)
	}
	if env.Pagination == nil || env.Pagination.Total != 1 || env.Pagination.HasMore {
		t.Errorf("pagination = %+v", env.Pagination)
	}

	env = do(t, srv, "GET", "/api/v1/runs/?limit=3", "", http.StatusOK)
	if env.Pagination.Total != 4 || !env.Pagination.HasMore {
		t.Errorf("pagination = %+v, want total 4 with more", env.Pagination)
	}

	// Single run with its timeline.
	id := runs[0].ID
	env = do(t, srv, "GET", "/api/v1/runs/"+id, "", http.StatusOK)
	var rec model.RunRecord
	json.Unmarshal(env.Data, &rec)
	if rec.SimulationID != sim.ID || rec.Clock != 8 || len(rec.Events) != 5 {
		t.Errorf("run = %+v", rec)
	}

	// Simulation view.
	env = do(t, srv, "GET", "/api/v1/simulations/"+sim.ID, "", http.StatusOK)
	var simView struct {
		Runs []*model.RunRecord `json:"runs"`
	}
	json.Unmarshal(env.Data, &simView)
	if len(simView.Runs) != 4 {
		t.Errorf("simulation runs = %d, want 4", len(simView.Runs))
	}

	// Delete, then the run is gone.
	do(t, srv, "DELETE", "/api/v1/runs/"+id, "", http.StatusOK)
	env = do(t, srv, "GET", "/api/v1/runs/"+id, "", http.StatusNotFound)
	if env.Error.Code != model.ErrNotFound {
		t.Errorf("code = %s, want NOT_FOUND", env.Error.Code)
	}
	do(t, srv, "DELETE", "/api/v1/runs/"+id, "", http.StatusNotFound)
}

func TestListRuns_BadQuery(t *testing.T) {
	srv, _ := testServer(t)
	env := do(t, srv, "GET", "/api/v1/runs/?limit=abc&policy=lottery", "", http.StatusBadRequest)
	if len(env.Error.Details) != 2 {
		t.Errorf("details = %+v, want 2", env.Error.Details)
	}
}

func TestGetSimulation_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	do(t, srv, "GET", "/api/v1/simulations/sim_missing", "", http.StatusNotFound)
}

func TestWithoutStore(t *testing.T) {
	srv := New(config.DefaultServerConfig(), nil, logging.Discard())

	body := `{"jobs":[{"name":"A","burst":2}],"policies":["fcfs"]}`
	env := do(t, srv, "POST", "/api/v1/simulations/", body, http.StatusCreated)
	var data simData
	json.Unmarshal(env.Data, &data)
	if data.Recorded {
		t.Error("recorded = true without a store")
	}

	env = do(t, srv, "GET", "/api/v1/runs/", "", http.StatusServiceUnavailable)
	if env.Error.Code != model.ErrUnavailable {
		t.Errorf("code = %s, want UNAVAILABLE", env.Error.Code)
	}
}
