package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Task is one job occupying the CPU for a fixed number of simulated units.
// It runs on its own goroutine and reports exactly once on Done.
type Task struct {
	Handle string
	Slice  int

	done chan report
}

type report struct {
	units   int
	elapsed time.Duration
	err     error
}

func newHandle() string {
	return "task_" + uuid.New().String()[:8]
}

// startTask launches the task goroutine. The task runs for slice units as
// measured by pacer, then reports back.
func startTask(ctx context.Context, pacer Pacer, slice int) *Task {
	t := &Task{
		Handle: newHandle(),
		Slice:  slice,
		done:   make(chan report, 1),
	}
	go t.run(ctx, pacer)
	return t
}

func (t *Task) run(ctx context.Context, pacer Pacer) {
	start := time.Now()
	err := pacer.Pace(ctx, t.Slice)
	t.done <- report{units: t.Slice, elapsed: time.Since(start), err: err}
}
