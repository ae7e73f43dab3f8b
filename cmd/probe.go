package main

import (
	"runtime"
	"time"

	"github.com/okian/screening/internal/probe"
	"github.com/okian/screening/pkg/logger"
	"github.com/spf13/cobra"
)

func newProbeCmd() *cobra.Command {
	cfg := probe.Config{}

	cmd := &cobra.Command{
		Use:     "probe",
		Short:   "Exercise a running server and verify its results against the local calculator",
		Example: "  screening probe --url http://localhost:9080 --count 5000 --invalid-ratio 0.5",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWith(logger.Options{Writer: cmd.ErrOrStderr()}); err != nil {
				return err
			}
			_, err := probe.Run(cmd.Context(), cfg, logger.Get().Named("probe"))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	flags.IntVar(&cfg.Count, "count", 1000, "Number of cases to generate and submit")
	flags.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "Number of concurrent workers")
	flags.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	flags.Float64Var(&cfg.InvalidRatio, "invalid-ratio", 0.2, "Share of cases built to be rejected (0-1)")
	flags.Uint64Var(&cfg.Seed, "seed", 0, "Generator seed (0 picks one from the clock)")
	flags.StringVar(&cfg.OutputFile, "out", "", "Write the generated cases to this JSON file")

	return cmd
}
