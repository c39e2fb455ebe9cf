package model

// Job is a unit of schedulable work.
//
// Name, Description, Index, Arrival, Burst and Priority are set by the
// workload loader and never change. Remaining, Finished, Handle and State are
// the run state owned by the run controller; Reset restores them before every
// policy run.
type Job struct {
	Index       int    `json:"index" yaml:"-"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Arrival     int    `json:"arrival" yaml:"arrival"`
	Burst       int    `json:"burst" yaml:"burst"`
	Priority    int    `json:"priority" yaml:"priority"` // Lower value = higher priority

	Remaining int      `json:"remaining" yaml:"-"`
	Finished  bool     `json:"finished" yaml:"-"`
	Handle    string   `json:"handle,omitempty" yaml:"-"` // ID of the running task; empty unless dispatched
	State     JobState `json:"state" yaml:"-"`
}

// Reset restores the mutable run state.
func (j *Job) Reset() {
	j.Remaining = j.Burst
	j.Finished = false
	j.Handle = ""
	j.State = JobStateNotArrived
}

// Transition moves the job to next, rejecting moves the lifecycle forbids.
func (j *Job) Transition(next JobState) error {
	if !j.State.CanTransitionTo(next) {
		return &InvalidTransitionError{
			Entity: "job",
			ID:     j.Name,
			From:   j.State.String(),
			To:     next.String(),
		}
	}
	j.State = next
	return nil
}

// ArrivedBy reports whether the job is eligible at simulated time now.
func (j *Job) ArrivedBy(now int) bool {
	return j.Arrival <= now
}

// CloneJobs returns fresh copies of templates with their run state reset and
// Index set to each copy's position. The templates themselves are not modified.
func CloneJobs(templates []Job) []*Job {
	jobs := make([]*Job, len(templates))
	for i := range templates {
		j := templates[i]
		j.Index = i
		j.Reset()
		jobs[i] = &j
	}
	return jobs
}
