package cli

import (
	"fmt"

	"github.com/me/gosched/internal/report"
	"github.com/me/gosched/internal/workload"
	"github.com/me/gosched/pkg/model"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var (
		workloadPath string
		maxJobs      int
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse a workload and print the accepted jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setIfChanged(cmd, "workload", &cfg.WorkloadPath, workloadPath)
			setIfChanged(cmd, "max-jobs", &cfg.MaxJobs, maxJobs)
			if cfg.WorkloadPath == "" {
				return fmt.Errorf("workload path is required (--workload or 'workload' in config)")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			jobs, err := workload.LoadFile(cfg.WorkloadPath, workload.Options{MaxJobs: cfg.MaxJobs, Logger: logger})
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				return fmt.Errorf("%s: %w", cfg.WorkloadPath, model.ErrEmptyWorkload)
			}

			report.New(cmd.OutOrStdout()).Workload(jobs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workloadPath, "workload", "w", "", "Workload file")
	cmd.Flags().IntVar(&maxJobs, "max-jobs", workload.DefaultMaxJobs, "Maximum number of jobs read from the workload")
	return cmd
}
