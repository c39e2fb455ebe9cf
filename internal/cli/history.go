package cli

import (
	"fmt"

	"github.com/me/gosched/internal/policy"
	"github.com/me/gosched/internal/report"
	"github.com/me/gosched/pkg/model"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		offset     int
		policyName string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := model.ListOptions{Limit: limit, Offset: offset}
			if policyName != "" {
				kinds, err := policy.ParseKinds([]string{policyName})
				if err != nil {
					return err
				}
				opts.Policy = kinds[0]
			}

			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			runs, total, err := st.ListRuns(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}

			fmt.Fprintf(out, "%-40s  %-40s  %-8s  %5s  %6s  %-12s  %s\n", "ID", "SIMULATION", "POLICY", "JOBS", "CLOCK", "SUMMARY", "CREATED")
			fmt.Fprintf(out, "%-40s  %-40s  %-8s  %5s  %6s  %-12s  %s\n", "--", "----------", "------", "----", "-----", "-------", "-------")
			for _, r := range runs {
				fmt.Fprintf(out, "%-40s  %-40s  %-8s  %5d  %6d  %-12s  %s\n",
					r.ID, r.SimulationID, r.Policy, r.JobCount, r.Clock,
					report.FormatValue(r.Summary), r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			}

			if opts.Offset+len(runs) < total {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(runs), total)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (max 100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of runs to skip")
	cmd.Flags().StringVar(&policyName, "policy", "", "Only list runs of this policy")
	return cmd
}
