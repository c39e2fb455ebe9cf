package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Policies    []string       `json:"policies"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	respondOK(w, reqID, discoveryResponse{
		Name:        "gosched API",
		Version:     "v1",
		Description: "CPU scheduling simulator: replay a workload under FCFS, SJF, Priority and Round-Robin",
		Policies:    s.policies(),
		Endpoints: []endpointInfo{
			{"/api/v1/simulations", []string{"POST"}, "Run a posted workload (jobs or csv) under the selected policies"},
			{"/api/v1/simulations/{id}", []string{"GET"}, "Recorded runs of one simulation"},
			{"/api/v1/runs", []string{"GET"}, "Recorded run history. Accepts ?limit, ?offset and ?policy"},
			{"/api/v1/runs/{id}", []string{"GET", "DELETE"}, "Single recorded run with its timeline"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
