package model

// JobState represents where a Job is in its lifecycle within one policy run.
type JobState string

const (
	JobStateNotArrived JobState = "NOT_ARRIVED"
	JobStateReady      JobState = "READY"
	JobStateRunning    JobState = "RUNNING"
	JobStateFinished   JobState = "FINISHED"
)

// String returns the string representation of the job state.
func (s JobState) String() string {
	return string(s)
}

// IsTerminal returns true if the job can no longer be dispatched.
func (s JobState) IsTerminal() bool {
	return s == JobStateFinished
}

// ValidJobTransitions defines the allowed state transitions for Jobs.
// RUNNING -> READY only happens on a Round-Robin preemption.
var ValidJobTransitions = map[JobState][]JobState{
	JobStateNotArrived: {JobStateReady},
	JobStateReady:      {JobStateRunning},
	JobStateRunning:    {JobStateFinished, JobStateReady},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s JobState) CanTransitionTo(next JobState) bool {
	for _, allowed := range ValidJobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PolicyKind identifies a dispatch policy.
type PolicyKind string

const (
	PolicyFCFS     PolicyKind = "fcfs"
	PolicySJF      PolicyKind = "sjf"
	PolicyPriority PolicyKind = "priority"
	PolicyRR       PolicyKind = "rr"
)

// String returns the string representation of the policy kind.
func (k PolicyKind) String() string {
	return string(k)
}

// DisplayName is the label printed in the report header.
func (k PolicyKind) DisplayName() string {
	switch k {
	case PolicyFCFS:
		return "FCFS"
	case PolicySJF:
		return "SJF"
	case PolicyPriority:
		return "Priority"
	case PolicyRR:
		return "Round Robin"
	}
	return string(k)
}

// Preemptive reports whether jobs can be dispatched more than once.
func (k PolicyKind) Preemptive() bool {
	return k == PolicyRR
}
