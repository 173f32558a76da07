package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusplan/scheduler/internal/bench"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/metrics"
)

func newBenchCmd() *cobra.Command {
	flags := &requestFlags{}
	var algorithms []string
	var trials int
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run every (or selected) registered algorithm against one problem and report timing/quality",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.buildRequest(cmd)
			if err != nil {
				return err
			}

			names := algorithms
			if len(names) == 0 {
				names = engine.Names()
			}
			logger.Info("benchmarking", zap.Strings("algorithms", names))

			var collectors *metrics.Collectors
			if metricsAddr != "" {
				registry := prometheus.NewRegistry()
				collectors = metrics.NewCollectors()
				collectors.MustRegister(registry)
				server := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{})}
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Warn("metrics server stopped", zap.Error(err))
					}
				}()
				defer server.Close()
			}

			if trials > 1 {
				for _, name := range names {
					summary := bench.RunTrials(context.Background(), req, name, trials)
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s trials=%-3d mean=%8.4f stddev=%8.4f mean_elapsed=%v failures=%d\n",
						summary.Algorithm, summary.Trials, summary.MeanScore, summary.StdDevScore, summary.MeanElapsed, summary.Failures)
				}
				return nil
			}

			stats, err := bench.Compare(context.Background(), req, names)
			if err != nil {
				return err
			}
			for _, s := range stats {
				if collectors != nil {
					collectors.ObserveRunStats(s)
				}
				status := "ok"
				if s.Err != nil {
					status = s.Err.Error()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s score=%8.4f results=%-3d elapsed=%-12v %s\n",
					s.Algorithm, s.BestScore, s.ResultCount, s.Duration, status)
			}
			return nil
		},
	}

	addRequestFlags(cmd, flags)
	cmd.Flags().StringSliceVar(&algorithms, "algorithm", nil, "algorithms to benchmark; default is every registered one")
	cmd.Flags().IntVar(&trials, "trials", 1, "repeat each algorithm this many times and report mean/stddev (use >1 for stochastic algorithms)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics for this run on this address (e.g. :9090) until bench completes")
	return cmd
}
