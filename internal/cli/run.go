package cli

import (
	"fmt"
	"time"

	"github.com/me/gosched/internal/engine"
	"github.com/me/gosched/internal/policy"
	"github.com/me/gosched/internal/report"
	"github.com/me/gosched/internal/runner"
	"github.com/me/gosched/internal/workload"
	"github.com/me/gosched/pkg/model"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		workloadPath string
		quantum      int
		timeUnit     time.Duration
		paceIdle     bool
		policies     []string
		maxJobs      int
		stats        bool
		record       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a workload under each dispatch policy",
		Example: "  gosched run --workload jobs.csv --quantum 2\n" +
			"  gosched run --workload jobs.csv --quantum 4 --time-unit 0 --policies rr --stats",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setIfChanged(cmd, "workload", &cfg.WorkloadPath, workloadPath)
			setIfChanged(cmd, "quantum", &cfg.Quantum, quantum)
			setIfChanged(cmd, "time-unit", &cfg.TimeUnit, timeUnit)
			setIfChanged(cmd, "pace-idle", &cfg.PaceIdle, paceIdle)
			setIfChanged(cmd, "policies", &cfg.Policies, policies)
			setIfChanged(cmd, "max-jobs", &cfg.MaxJobs, maxJobs)
			setIfChanged(cmd, "stats", &cfg.Stats, stats)
			setIfChanged(cmd, "record", &cfg.Record, record)

			if err := cfg.ValidateRun(); err != nil {
				return err
			}
			kinds, err := policy.ParseKinds(cfg.Policies)
			if err != nil {
				return err
			}

			jobs, err := workload.LoadFile(cfg.WorkloadPath, workload.Options{MaxJobs: cfg.MaxJobs, Logger: logger})
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				return fmt.Errorf("%s: %w", cfg.WorkloadPath, model.ErrEmptyWorkload)
			}
			logger.Info("workload loaded", "path", cfg.WorkloadPath, "jobs", len(jobs))

			opts := []engine.Option{engine.WithReporter(report.New(cmd.OutOrStdout()))}
			if cfg.PaceIdle {
				opts = append(opts, engine.WithIdlePacer(runner.SleepPacer{Unit: cfg.TimeUnit}))
			}
			if cfg.Record {
				st, err := openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer st.Close()
				opts = append(opts, engine.WithRecorder(st))
			}

			ctrl := engine.New(
				policy.DefaultRegistry(logger),
				runner.New(runner.Config{TimeUnit: cfg.TimeUnit}, logger),
				engine.Config{
					Quantum:  cfg.Quantum,
					Policies: kinds,
					Stats:    cfg.Stats,
					Workload: cfg.WorkloadPath,
				},
				logger, opts...)

			sim, err := ctrl.Run(cmd.Context(), jobs)
			if err != nil {
				return err
			}
			if cfg.Record {
				logger.Info("simulation recorded", "simulation_id", sim.ID, "runs", len(sim.Results))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&workloadPath, "workload", "w", "", "Workload file (CSV lines name,description,arrival,burst,priority or YAML)")
	f.IntVarP(&quantum, "quantum", "q", 0, "Round-Robin time quantum")
	f.DurationVar(&timeUnit, "time-unit", time.Second, "Real time per simulated unit (0 to run instantly)")
	f.BoolVar(&paceIdle, "pace-idle", false, "Also wait through idle gaps")
	f.StringSliceVar(&policies, "policies", nil, "Policies to run, in order (fcfs,sjf,priority,rr)")
	f.IntVar(&maxJobs, "max-jobs", workload.DefaultMaxJobs, "Maximum number of jobs read from the workload")
	f.BoolVar(&stats, "stats", false, "Print per-job statistics after each summary")
	f.BoolVar(&record, "record", false, "Store every run in the history database")

	return cmd
}
