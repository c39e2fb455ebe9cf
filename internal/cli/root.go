// Package cli implements the gosched command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/me/gosched/internal/config"
	"github.com/me/gosched/internal/logging"
	"github.com/me/gosched/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagDB        string

	cfg    config.SimConfig
	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the gosched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gosched",
		Short: "gosched: CPU scheduling simulator",
		Long: "gosched replays a workload of jobs under FCFS, SJF, Priority and Round-Robin\n" +
			"dispatch policies and prints a timeline and summary for each.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Default()
			if flagConfig != "" {
				if err := config.LoadFile(flagConfig, &cfg); err != nil {
					return err
				}
			}
			setIfChanged(cmd, "log-level", &cfg.LogLevel, flagLogLevel)
			setIfChanged(cmd, "log-format", &cfg.LogFormat, flagLogFormat)
			setIfChanged(cmd, "db", &cfg.DBPath, flagDB)
			if flagDebug {
				cfg.LogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "Run history database (default ~/.gosched/runs.db)")

	root.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newHistoryCmd(),
		newShowCmd(),
		newServeCmd(),
	)

	return root
}

// setIfChanged copies a flag value over the config only when the flag was set
// explicitly, so config file values survive flag defaults.
func setIfChanged[T any](cmd *cobra.Command, name string, dst *T, val T) {
	if cmd.Flags().Changed(name) {
		*dst = val
	}
}

// openStore opens the run history database named by the config.
func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	path, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, path, logger)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	logger.Debug("database ready", "path", path)
	return st, nil
}
