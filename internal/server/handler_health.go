package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/me/gosched/internal/policy"
	"github.com/me/gosched/pkg/model"
)

type healthResponse struct {
	Status    string   `json:"status"` // "healthy", or "degraded" when the store cannot be read
	Version   string   `json:"version"`
	GoVersion string   `json:"go_version"`
	Uptime    string   `json:"uptime"`
	Store     string   `json:"store"`
	Runs      int      `json:"recorded_runs"`
	Policies  []string `json:"policies"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	resp := healthResponse{
		Status:    "healthy",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Store:     "disabled",
		Policies:  s.policies(),
	}
	if s.store != nil {
		resp.Store = "sqlite"
		_, total, err := s.store.ListRuns(r.Context(), model.ListOptions{Limit: 1})
		if err != nil {
			s.logger.Warn("health: count runs", "error", err)
			resp.Status = "degraded"
		}
		resp.Runs = total
	}
	respondOK(w, reqID, resp)
}

// policies lists the registered policies in report order.
func (s *Server) policies() []string {
	var out []string
	for _, kind := range policy.DefaultOrder {
		if s.registry.Has(kind) {
			out = append(out, string(kind))
		}
	}
	return out
}
