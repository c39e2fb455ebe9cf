// Package policy implements the dispatch policies that decide which job
// occupies the CPU next and for how long.
package policy

import (
	"errors"

	"github.com/me/gosched/pkg/model"
)

// ErrInvalidQuantum is returned when Round-Robin is configured with a
// non-positive time quantum.
var ErrInvalidQuantum = errors.New("round-robin quantum must be positive")

// Decision is the outcome of one selection step.
type Decision struct {
	Job   *model.Job // Job to run; nil when Idle or Done
	Slice int        // Units to run Job for

	Idle        bool // Nothing has arrived yet
	NextArrival int  // When Idle: the clock value to fast-forward to

	Done bool // Every job is finished
}

// Policy selects work for a single logical CPU. An instance serves one run:
// Reset hands it the run's jobs, then the controller alternates Next and
// Settle until Next reports Done.
type Policy interface {
	// Kind returns the policy identifier.
	Kind() model.PolicyKind

	// Reset takes the jobs of a new run. Jobs must already be reset.
	Reset(jobs []*model.Job)

	// Next picks the job to run at simulated time now. It must not change
	// the clock or any job's run state.
	Next(now int) Decision

	// Settle is called after job has run a slice; now is the clock at the
	// end of that slice.
	Settle(job *model.Job, now int)
}
