package policy

import (
	"fmt"
	"slices"

	"github.com/me/gosched/pkg/model"
)

// RoundRobin is a preemptive policy with an explicit FIFO ready queue.
// Each dispatch runs the queue head for at most Quantum units.
//
// After a preempted slice, jobs that arrived up to the end of the slice are
// queued before the preempted job is put back at the tail.
type RoundRobin struct {
	quantum int
	jobs    []*model.Job // sorted by (Arrival, Index)
	queue   []*model.Job
	queued  map[*model.Job]bool
}

// NewRoundRobin creates a Round-Robin policy with the given time quantum.
func NewRoundRobin(quantum int) (*RoundRobin, error) {
	if quantum <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantum, quantum)
	}
	return &RoundRobin{quantum: quantum}, nil
}

// Kind returns model.PolicyRR.
func (p *RoundRobin) Kind() model.PolicyKind { return model.PolicyRR }

// Quantum returns the maximum slice length.
func (p *RoundRobin) Quantum() int { return p.quantum }

// Reset takes the run's jobs and empties the queue.
func (p *RoundRobin) Reset(jobs []*model.Job) {
	p.jobs = slices.Clone(jobs)
	slices.SortStableFunc(p.jobs, byArrival)
	p.queue = nil
	p.queued = make(map[*model.Job]bool, len(jobs))
}

// Next admits new arrivals, then dequeues the head.
func (p *RoundRobin) Next(now int) Decision {
	if Unfinished(p.jobs) == 0 {
		return Decision{Done: true}
	}
	p.admit(now, nil)
	if len(p.queue) == 0 {
		return idle(p.jobs, now)
	}

	head := p.queue[0]
	p.queue = p.queue[1:]
	delete(p.queued, head)
	return Decision{Job: head, Slice: min(head.Remaining, p.quantum)}
}

// Settle queues arrivals that happened during the slice, then re-queues job
// if it still has work left.
func (p *RoundRobin) Settle(job *model.Job, now int) {
	p.admit(now, job)
	if !job.Finished {
		p.enqueue(job)
	}
}

// Queue returns the names in the ready queue, head first.
func (p *RoundRobin) Queue() []string {
	names := make([]string, len(p.queue))
	for i, j := range p.queue {
		names[i] = j.Name
	}
	return names
}

// admit enqueues every unfinished, unqueued job that has arrived by now, in
// arrival order. skip is left out (the job that just ran).
func (p *RoundRobin) admit(now int, skip *model.Job) {
	for _, j := range p.jobs {
		if j == skip || j.Finished || p.queued[j] || j.State == model.JobStateRunning || !j.ArrivedBy(now) {
			continue
		}
		p.enqueue(j)
	}
}

func (p *RoundRobin) enqueue(j *model.Job) {
	p.queue = append(p.queue, j)
	p.queued[j] = true
}
