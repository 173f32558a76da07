package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusplan/scheduler/internal/engine"
)

func newCompareCmd() *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Race every registered algorithm and report every one's result, not just the winner's",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.buildRequest(cmd)
			if err != nil {
				return err
			}
			req.Choice = engine.AlgorithmChoice{Mode: engine.CompareAll}

			result, engErr := engine.Generate(context.Background(), req)
			if engErr != nil {
				for _, ar := range engErr.PerAlgorithm {
					logPerAlgorithm(ar)
				}
				return engErr
			}
			for _, ar := range result.PerAlgorithm {
				logPerAlgorithm(ar)
			}
			logger.Info("compare winner", zap.String("algorithm", result.Algorithm), zap.Int("candidates", len(result.Candidates)))
			return printResult(cmd, result)
		},
	}

	addRequestFlags(cmd, flags)
	return cmd
}

func logPerAlgorithm(ar engine.AlgorithmResult) {
	if ar.Reason != nil {
		logger.Info("compare result", zap.String("algorithm", ar.Algorithm), zap.Int("candidates", 0), zap.String("reason", ar.Reason.Kind.String()))
		return
	}
	logger.Info("compare result", zap.String("algorithm", ar.Algorithm), zap.Int("candidates", len(ar.Candidates)))
}
