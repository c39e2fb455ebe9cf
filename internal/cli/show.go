package cli

import (
	"fmt"
	"strings"

	"github.com/me/gosched/internal/report"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "show <run-id|simulation-id>",
		Short: "Reprint a recorded run, or every run of a simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			rep := report.New(cmd.OutOrStdout())

			if strings.HasPrefix(id, "sim_") {
				runs, err := st.ListRunsBySimulation(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("get simulation %s: %w", id, err)
				}
				if len(runs) == 0 {
					return fmt.Errorf("simulation %s not found", id)
				}
				for _, rec := range runs {
					rep.Run(rec.Result(), stats)
				}
				return nil
			}

			rec, err := st.GetRun(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get run %s: %w", id, err)
			}
			if rec == nil {
				return fmt.Errorf("run %s not found", id)
			}
			rep.Run(rec.Result(), stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "Also print per-job statistics")
	return cmd
}
