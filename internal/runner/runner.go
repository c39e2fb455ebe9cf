// Package runner executes a job on the simulated CPU for one time slice.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/gosched/internal/logging"
	"github.com/me/gosched/pkg/model"
)

// ErrTaskLost is returned when a task fails to report within its deadline.
var ErrTaskLost = errors.New("task did not report completion")

// DefaultReportGrace is added to a slice's expected duration before the task
// is declared lost.
const DefaultReportGrace = 5 * time.Second

// Config holds runner configuration.
type Config struct {
	TimeUnit    time.Duration // Real delay per simulated unit
	ReportGrace time.Duration // Extra time allowed for a task to report
	Pacer       Pacer         // Overrides SleepPacer{TimeUnit} when set
}

// Result describes one executed slice.
type Result struct {
	Completed bool // Remaining time reached zero
	Handle    string
	Elapsed   time.Duration
}

// Runner is the execution primitive shared by every dispatch policy.
type Runner struct {
	pacer  Pacer
	unit   time.Duration
	grace  time.Duration
	cpu    *cpu
	logger *slog.Logger
}

// New creates a Runner for a single logical CPU.
func New(cfg Config, logger *slog.Logger) *Runner {
	pacer := cfg.Pacer
	if pacer == nil {
		pacer = SleepPacer{Unit: cfg.TimeUnit}
	}
	grace := cfg.ReportGrace
	if grace <= 0 {
		grace = DefaultReportGrace
	}
	return &Runner{
		pacer:  pacer,
		unit:   cfg.TimeUnit,
		grace:  grace,
		cpu:    newCPU(1),
		logger: logging.OrDiscard(logger).With("component", "runner"),
	}
}

// Execute runs job for slice simulated units and blocks until the task reports.
// On return the job's Remaining has been reduced by slice and, when it reached
// zero, the job is FINISHED; otherwise it is READY again.
func (r *Runner) Execute(ctx context.Context, job *model.Job, slice int) (Result, error) {
	if err := checkDispatch(job, slice); err != nil {
		return Result{}, err
	}

	if !r.cpu.Acquire(ctx) {
		return Result{}, ctx.Err()
	}
	defer r.cpu.Release()

	if err := job.Transition(model.JobStateRunning); err != nil {
		return Result{}, &model.InvariantError{Job: job.Name, Reason: err.Error()}
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	task := startTask(taskCtx, r.pacer, slice)
	job.Handle = task.Handle
	r.logger.Debug("task started", "job", job.Name, "handle", task.Handle, "slice", slice, "remaining", job.Remaining)

	deadline := time.NewTimer(time.Duration(slice)*r.unit + r.grace)
	defer deadline.Stop()

	var rep report
	select {
	case rep = <-task.done:
	case <-deadline.C:
		return Result{}, fmt.Errorf("job %s (%s): %w", job.Name, task.Handle, ErrTaskLost)
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	if rep.err != nil {
		return Result{}, fmt.Errorf("job %s (%s): %w", job.Name, task.Handle, rep.err)
	}
	if rep.units != slice {
		return Result{}, &model.InvariantError{
			Job:    job.Name,
			Reason: fmt.Sprintf("task ran %d units, requested %d", rep.units, slice),
		}
	}

	job.Remaining -= slice
	job.Handle = ""
	next := model.JobStateReady
	if job.Remaining == 0 {
		job.Finished = true
		next = model.JobStateFinished
	}
	if err := job.Transition(next); err != nil {
		return Result{}, &model.InvariantError{Job: job.Name, Reason: err.Error()}
	}

	r.logger.Debug("task reported", "job", job.Name, "handle", task.Handle, "remaining", job.Remaining, "elapsed", rep.elapsed)
	return Result{Completed: job.Finished, Handle: task.Handle, Elapsed: rep.elapsed}, nil
}

// Busy reports whether a task currently occupies the CPU.
func (r *Runner) Busy() bool {
	return r.cpu.Busy()
}

func checkDispatch(job *model.Job, slice int) error {
	switch {
	case job.Finished:
		return &model.InvariantError{Job: job.Name, Reason: "dispatched after finishing"}
	case slice < 0:
		return &model.InvariantError{Job: job.Name, Reason: fmt.Sprintf("negative slice %d", slice)}
	case slice > job.Remaining:
		return &model.InvariantError{Job: job.Name, Reason: fmt.Sprintf("slice %d exceeds remaining %d", slice, job.Remaining)}
	case slice == 0 && job.Remaining > 0:
		return &model.InvariantError{Job: job.Name, Reason: "empty slice for unfinished job"}
	}
	return nil
}
