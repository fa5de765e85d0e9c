package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seniorcare/smartmatch/internal/benchmark"
	"github.com/seniorcare/smartmatch/pkg/logger"
)

// Default configuration constants.
const (
	defaultFamilies   = 200
	defaultCaregivers = 5_000
	defaultLimit      = 50
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &benchmark.Config{}
	var (
		runTimeout time.Duration
		jsonLogs   bool
	)

	cmd := &cobra.Command{
		Use:   "match-bench",
		Short: "Seed a Smart Match service with synthetic profiles and verify its rankings",
		Long: `match-bench generates families and caregivers from a seed, upserts them
through the HTTP API, requests a ranking for every family and checks each
answer: scores and factors in range, hard constraint flags consistent with the
profiles and a correct tie-break order. With --verify-local every ranking is
also recomputed in-process and compared with the service's answer.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := "text"
			if jsonLogs {
				format = "json"
			}
			if err := logger.Init(logger.WithFormat(format)); err != nil {
				return err
			}
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
			defer cancel()
			_, err := benchmark.Run(ctx, cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.BaseURL, "url", "u", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.Families, "families", defaultFamilies, "number of families to generate")
	f.IntVar(&cfg.Caregivers, "caregivers", defaultCaregivers, "number of caregivers to generate")
	f.IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU()*2, "number of concurrent HTTP workers")
	f.IntVar(&cfg.Limit, "limit", defaultLimit, "results requested per match")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.DurationVar(&runTimeout, "run-timeout", defaultRunTimeout, "overall run timeout")
	f.Uint64Var(&cfg.Seed, "seed", 1, "generator seed")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "write generated profiles to this JSON file")
	f.BoolVar(&cfg.VerifyLocal, "verify-local", true, "compare rankings with the in-process engine (requires default weights)")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "verbose logging")
	f.BoolVarP(&jsonLogs, "json", "j", false, "json format for logging")

	return cmd
}
