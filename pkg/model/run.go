package model

import "time"

// EventKind distinguishes timeline entries.
type EventKind string

const (
	EventDispatch EventKind = "dispatch"
	EventIdle     EventKind = "idle"
)

// Event is one line of a run's timeline: a job occupying the CPU for
// [Start, End) or the CPU sitting idle until the next arrival.
type Event struct {
	Kind        EventKind `json:"kind"`
	Start       int       `json:"start"`
	End         int       `json:"end"`
	JobIndex    int       `json:"job_index,omitempty"`
	JobName     string    `json:"job_name,omitempty"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed,omitempty"`
}

// Summary is the single statistic printed in a run's footer.
type Summary struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Integer bool    `json:"integer"`
}

const (
	LabelAverageWaiting  = "Average Waiting Time"
	LabelTotalTurnaround = "Total Turnaround Time"
)

// JobStats holds per-job timing derived from a timeline.
type JobStats struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Arrival    int    `json:"arrival"`
	Burst      int    `json:"burst"`
	Priority   int    `json:"priority"`
	FirstStart int    `json:"first_start"`
	Completion int    `json:"completion"`
	Waiting    int    `json:"waiting"`
	Turnaround int    `json:"turnaround"`
	Response   int    `json:"response"`
	Slices     int    `json:"slices"`
}

// RunResult is the outcome of driving one policy over a workload.
type RunResult struct {
	Policy   PolicyKind    `json:"policy"`
	Quantum  int           `json:"quantum,omitempty"`
	Events   []Event       `json:"events"`
	Jobs     []JobStats    `json:"jobs"`
	Summary  Summary       `json:"summary"`
	Clock    int           `json:"clock"`
	Duration time.Duration `json:"duration_ns"`
}

// Dispatches returns only the dispatch events of the timeline.
func (r *RunResult) Dispatches() []Event {
	var out []Event
	for _, ev := range r.Events {
		if ev.Kind == EventDispatch {
			out = append(out, ev)
		}
	}
	return out
}

// RunRecord is a persisted RunResult.
type RunRecord struct {
	ID           string        `json:"id"`
	SimulationID string        `json:"simulation_id"`
	Policy       PolicyKind    `json:"policy"`
	Workload     string        `json:"workload"`
	Quantum      int           `json:"quantum"`
	JobCount     int           `json:"job_count"`
	Clock        int           `json:"clock"`
	Summary      Summary       `json:"summary"`
	Events       []Event       `json:"events,omitempty"`
	Jobs         []JobStats    `json:"jobs,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Result converts the record back into the RunResult it was made from.
func (r *RunRecord) Result() *RunResult {
	return &RunResult{
		Policy:   r.Policy,
		Quantum:  r.Quantum,
		Events:   r.Events,
		Jobs:     r.Jobs,
		Summary:  r.Summary,
		Clock:    r.Clock,
		Duration: r.Duration,
	}
}
