// Package engine drives dispatch policies over a workload on the simulated CPU.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/me/gosched/internal/logging"
	"github.com/me/gosched/internal/policy"
	"github.com/me/gosched/internal/report"
	"github.com/me/gosched/internal/runner"
	"github.com/me/gosched/pkg/model"
)

// Recorder persists finished runs.
type Recorder interface {
	CreateRun(ctx context.Context, rec *model.RunRecord) error
}

// Config holds run controller configuration.
type Config struct {
	Quantum  int                // Round-Robin time quantum
	Policies []model.PolicyKind // Run order; empty means policy.DefaultOrder
	Stats    bool               // Print the per-job table after each summary
	Workload string             // Source label stored with recorded runs
}

// Controller is the run controller. It owns the jobs of a run and is the
// only caller of Policy and Runner.
type Controller struct {
	registry  *policy.Registry
	runner    *runner.Runner
	config    Config
	reporter  *report.Reporter
	recorder  Recorder
	idlePacer runner.Pacer
	logger    *slog.Logger
}

// Option configures optional Controller dependencies.
type Option func(*Controller)

// WithReporter prints every run to the given reporter.
func WithReporter(r *report.Reporter) Option {
	return func(c *Controller) {
		c.reporter = r
	}
}

// WithRecorder stores every finished run.
func WithRecorder(rec Recorder) Option {
	return func(c *Controller) {
		c.recorder = rec
	}
}

// WithIdlePacer makes idle gaps take real time as well.
func WithIdlePacer(p runner.Pacer) Option {
	return func(c *Controller) {
		c.idlePacer = p
	}
}

// New creates a Controller.
func New(reg *policy.Registry, run *runner.Runner, cfg Config, logger *slog.Logger, opts ...Option) *Controller {
	if len(cfg.Policies) == 0 {
		cfg.Policies = policy.DefaultOrder
	}
	c := &Controller{
		registry: reg,
		runner:   run,
		config:   cfg,
		reporter: report.New(io.Discard),
		logger:   logging.OrDiscard(logger).With("component", "engine"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Simulation is the outcome of Run: one result per policy, in run order.
type Simulation struct {
	ID      string             `json:"id"`
	Results []*model.RunResult `json:"results"`
}

// Run replays every configured policy over templates. An empty workload or
// an unusable policy configuration fails before any output is produced.
func (c *Controller) Run(ctx context.Context, templates []model.Job) (*Simulation, error) {
	if len(templates) == 0 {
		return nil, model.ErrEmptyWorkload
	}

	policies := make([]policy.Policy, 0, len(c.config.Policies))
	for _, kind := range c.config.Policies {
		p, err := c.registry.New(kind, c.config.Quantum)
		if err != nil {
			return nil, fmt.Errorf("configure policy %s: %w", kind, err)
		}
		policies = append(policies, p)
	}

	sim := &Simulation{ID: "sim_" + uuid.New().String()}
	c.logger.Info("simulation started", "simulation_id", sim.ID, "jobs", len(templates), "policies", len(policies), "quantum", c.config.Quantum)

	for _, p := range policies {
		res, err := c.RunPolicy(ctx, p, templates)
		if err != nil {
			return sim, fmt.Errorf("run %s: %w", p.Kind(), err)
		}
		sim.Results = append(sim.Results, res)
		c.record(ctx, sim.ID, len(templates), res)
	}

	c.logger.Info("simulation completed", "simulation_id", sim.ID)
	return sim, nil
}

// RunPolicy drives a single policy over fresh copies of templates until every
// job has finished.
func (c *Controller) RunPolicy(ctx context.Context, p policy.Policy, templates []model.Job) (*model.RunResult, error) {
	if len(templates) == 0 {
		return nil, model.ErrEmptyWorkload
	}

	jobs := model.CloneJobs(templates)
	p.Reset(jobs)

	res := &model.RunResult{Policy: p.Kind()}
	quantum := c.config.Quantum
	rr, isRR := p.(*policy.RoundRobin)
	if isRR {
		res.Quantum = rr.Quantum()
		quantum = rr.Quantum()
	}
	logger := c.logger.With("policy", p.Kind())
	started := time.Now()

	c.reporter.Header(p.Kind())
	logger.Info("run started", "jobs", len(jobs))

	now := 0
	for {
		if err := promote(jobs, now); err != nil {
			return nil, annotate(err, p.Kind(), now)
		}

		d := p.Next(now)
		if d.Done {
			break
		}

		if d.Idle {
			if d.NextArrival <= now {
				return nil, &model.InvariantError{Policy: p.Kind(), Clock: now,
					Reason: fmt.Sprintf("idle until %d with %d unfinished jobs", d.NextArrival, policy.Unfinished(jobs))}
			}
			ev := model.Event{Kind: model.EventIdle, Start: now, End: d.NextArrival}
			c.reporter.Event(ev)
			res.Events = append(res.Events, ev)
			if c.idlePacer != nil {
				if err := c.idlePacer.Pace(ctx, d.NextArrival-now); err != nil {
					return nil, err
				}
			}
			logger.Debug("idle", "from", now, "to", d.NextArrival)
			now = d.NextArrival
			continue
		}

		if err := checkDecision(p.Kind(), quantum, jobs, d, now); err != nil {
			return nil, err
		}
		if c.runner.Busy() {
			return nil, &model.InvariantError{Policy: p.Kind(), Clock: now, Job: d.Job.Name, Reason: "CPU already occupied"}
		}

		ev := model.Event{
			Kind:        model.EventDispatch,
			Start:       now,
			End:         now + d.Slice,
			JobIndex:    d.Job.Index,
			JobName:     d.Job.Name,
			Description: d.Job.Description,
		}
		c.reporter.Event(ev)
		logger.Debug("dispatch", "job", d.Job.Name, "start", ev.Start, "slice", d.Slice)

		out, err := c.runner.Execute(ctx, d.Job, d.Slice)
		if err != nil {
			return nil, annotate(err, p.Kind(), now)
		}
		now += d.Slice
		ev.Completed = out.Completed
		res.Events = append(res.Events, ev)

		p.Settle(d.Job, now)
		if isRR {
			logger.Debug("ready queue", "clock", now, "queue", rr.Queue())
		}
	}

	for _, j := range jobs {
		if !j.Finished || j.Remaining != 0 {
			return nil, &model.InvariantError{Policy: p.Kind(), Clock: now, Job: j.Name,
				Reason: fmt.Sprintf("run ended with %d units remaining", j.Remaining)}
		}
	}

	res.Clock = now
	res.Jobs = ComputeJobStats(jobs, res.Events)
	res.Summary = Summarize(p.Kind(), res.Jobs, now)
	res.Duration = time.Since(started)

	c.reporter.Footer(res.Summary)
	if c.config.Stats {
		c.reporter.JobTable(res.Jobs)
	}
	logger.Info("run completed", "clock", now, "dispatches", len(res.Dispatches()),
		"summary", res.Summary.Label, "value", res.Summary.Value, "elapsed", res.Duration.Round(time.Millisecond).String())
	return res, nil
}

// checkDecision rejects a dispatch decision that breaks a scheduling invariant.
func checkDecision(kind model.PolicyKind, quantum int, jobs []*model.Job, d policy.Decision, now int) error {
	fail := func(job, reason string) error {
		return &model.InvariantError{Policy: kind, Clock: now, Job: job, Reason: reason}
	}
	if d.Job == nil {
		return fail("", "decision without a job")
	}
	if d.Job.State.IsTerminal() {
		return fail(d.Job.Name, "job already finished")
	}
	if d.Job.Arrival > now {
		return fail(d.Job.Name, fmt.Sprintf("dispatched before arrival at %d", d.Job.Arrival))
	}
	inReady := false
	for _, j := range policy.ReadySet(jobs, now) {
		if j == d.Job {
			inReady = true
			break
		}
	}
	if !inReady {
		return fail(d.Job.Name, "job is not in the ready set")
	}
	if d.Slice > math.MaxInt-now {
		return fail(d.Job.Name, fmt.Sprintf("slice %d overflows clock %d", d.Slice, now))
	}
	if kind.Preemptive() {
		if d.Slice > quantum {
			return fail(d.Job.Name, fmt.Sprintf("slice %d exceeds quantum %d", d.Slice, quantum))
		}
	} else if d.Slice != d.Job.Remaining {
		return fail(d.Job.Name, fmt.Sprintf("non-preemptive slice %d differs from remaining %d", d.Slice, d.Job.Remaining))
	}
	return nil
}

func (c *Controller) record(ctx context.Context, simID string, jobCount int, res *model.RunResult) {
	if c.recorder == nil {
		return
	}
	rec := &model.RunRecord{
		ID:           "run_" + uuid.New().String(),
		SimulationID: simID,
		Policy:       res.Policy,
		Workload:     c.config.Workload,
		Quantum:      res.Quantum,
		JobCount:     jobCount,
		Clock:        res.Clock,
		Summary:      res.Summary,
		Events:       res.Events,
		Jobs:         res.Jobs,
		Duration:     res.Duration,
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.recorder.CreateRun(ctx, rec); err != nil {
		c.logger.Error("record run", "policy", res.Policy, "error", err)
		return
	}
	c.logger.Debug("run recorded", "run_id", rec.ID, "policy", res.Policy)
}

// promote moves jobs that have arrived by now from NOT_ARRIVED to READY.
func promote(jobs []*model.Job, now int) error {
	for _, j := range jobs {
		if j.State == model.JobStateNotArrived && j.ArrivedBy(now) {
			if err := j.Transition(model.JobStateReady); err != nil {
				return err
			}
		}
	}
	return nil
}

// annotate fills in the policy and clock of an InvariantError raised below
// the controller.
func annotate(err error, kind model.PolicyKind, now int) error {
	var ie *model.InvariantError
	if errors.As(err, &ie) && ie.Policy == "" {
		ie.Policy = kind
		ie.Clock = now
	}
	return err
}
