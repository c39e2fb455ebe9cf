package policy

import (
	"slices"

	"github.com/me/gosched/pkg/model"
)

// FCFS dispatches jobs strictly in (Arrival, Index) order, each to completion.
type FCFS struct {
	order []*model.Job
	pos   int
}

// NewFCFS creates a First-Come-First-Served policy.
func NewFCFS() *FCFS {
	return &FCFS{}
}

// Kind returns model.PolicyFCFS.
func (p *FCFS) Kind() model.PolicyKind { return model.PolicyFCFS }

// Reset orders the jobs once by arrival.
func (p *FCFS) Reset(jobs []*model.Job) {
	p.order = slices.Clone(jobs)
	slices.SortStableFunc(p.order, byArrival)
	p.pos = 0
}

// Next returns the head of the arrival order, or idles until it arrives.
func (p *FCFS) Next(now int) Decision {
	for p.pos < len(p.order) && p.order[p.pos].Finished {
		p.pos++
	}
	if p.pos == len(p.order) {
		return Decision{Done: true}
	}
	head := p.order[p.pos]
	if !head.ArrivedBy(now) {
		return Decision{Idle: true, NextArrival: head.Arrival}
	}
	return Decision{Job: head, Slice: head.Remaining}
}

// Settle is a no-op: the job ran to completion.
func (p *FCFS) Settle(job *model.Job, now int) {}
