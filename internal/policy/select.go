package policy

import (
	"cmp"

	"github.com/me/gosched/pkg/model"
)

// ReadySet returns the jobs eligible for dispatch at now: arrived, not
// finished and not currently running. Input order is preserved.
func ReadySet(jobs []*model.Job, now int) []*model.Job {
	var ready []*model.Job
	for _, j := range jobs {
		if j.Finished || j.State == model.JobStateRunning || !j.ArrivedBy(now) {
			continue
		}
		ready = append(ready, j)
	}
	return ready
}

// NextArrival returns the earliest arrival strictly after now among
// unfinished jobs. ok is false when no such job exists.
func NextArrival(jobs []*model.Job, now int) (next int, ok bool) {
	for _, j := range jobs {
		if j.Finished || j.Arrival <= now {
			continue
		}
		if !ok || j.Arrival < next {
			next, ok = j.Arrival, true
		}
	}
	return next, ok
}

// Unfinished counts jobs that still have work left.
func Unfinished(jobs []*model.Job) int {
	n := 0
	for _, j := range jobs {
		if !j.Finished {
			n++
		}
	}
	return n
}

// SelectMin returns the job with the smallest key. Ties go to the earlier
// arrival, then to the lower input index, so the result is always unique.
// Returns nil for an empty set.
func SelectMin(ready []*model.Job, key func(*model.Job) int) *model.Job {
	var best *model.Job
	for _, j := range ready {
		if best == nil || compareBy(j, best, key) < 0 {
			best = j
		}
	}
	return best
}

func compareBy(a, b *model.Job, key func(*model.Job) int) int {
	if c := cmp.Compare(key(a), key(b)); c != 0 {
		return c
	}
	return byArrival(a, b)
}

// byArrival orders jobs by (Arrival, Index).
func byArrival(a, b *model.Job) int {
	if c := cmp.Compare(a.Arrival, b.Arrival); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// idle builds the decision for an empty ready set. When no job arrives later
// NextArrival equals now, which the controller rejects as a stalled run.
func idle(jobs []*model.Job, now int) Decision {
	next, ok := NextArrival(jobs, now)
	if !ok {
		next = now
	}
	return Decision{Idle: true, NextArrival: next}
}
