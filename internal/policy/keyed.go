package policy

import "github.com/me/gosched/pkg/model"

// Keyed is a non-preemptive policy that always runs the ready job with the
// smallest key to completion. SJF and Priority differ only in the key.
type Keyed struct {
	kind model.PolicyKind
	key  func(*model.Job) int
	jobs []*model.Job
}

// NewSJF creates a non-preemptive Shortest-Job-First policy keyed on burst time.
func NewSJF() *Keyed {
	return &Keyed{kind: model.PolicySJF, key: func(j *model.Job) int { return j.Burst }}
}

// NewPriority creates a non-preemptive priority policy; lower values win.
func NewPriority() *Keyed {
	return &Keyed{kind: model.PolicyPriority, key: func(j *model.Job) int { return j.Priority }}
}

// Kind returns the policy identifier.
func (p *Keyed) Kind() model.PolicyKind { return p.kind }

// Reset takes the run's jobs.
func (p *Keyed) Reset(jobs []*model.Job) {
	p.jobs = jobs
}

// Next re-derives the ready set and picks its minimum.
func (p *Keyed) Next(now int) Decision {
	if Unfinished(p.jobs) == 0 {
		return Decision{Done: true}
	}
	pick := SelectMin(ReadySet(p.jobs, now), p.key)
	if pick == nil {
		return idle(p.jobs, now)
	}
	return Decision{Job: pick, Slice: pick.Remaining}
}

// Settle is a no-op: the job ran to completion.
func (p *Keyed) Settle(job *model.Job, now int) {}
