package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusplan/scheduler/internal/engine"
)

func newGenerateCmd() *cobra.Command {
	flags := &requestFlags{}
	var algorithm string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate ranked schedules with one named algorithm",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.buildRequest(cmd)
			if err != nil {
				return err
			}
			if algorithm == "auto" {
				req.Choice = engine.AlgorithmChoice{Mode: engine.Auto}
			} else {
				req.Choice = engine.AlgorithmChoice{Mode: engine.Named, Name: algorithm}
			}

			logger.Info("generating schedules", zap.String("algorithm", algorithm), zap.String("catalog", flags.catalogPath))

			result, engErr := engine.Generate(context.Background(), req)
			if engErr != nil {
				return engErr
			}
			return printResult(cmd, result)
		},
	}

	addRequestFlags(cmd, flags)
	cmd.Flags().StringVar(&algorithm, "algorithm", "dfs", `registered scheduler name (see engine.Names), or "auto" to let the selector rubric pick one`)
	return cmd
}

func printResult(cmd *cobra.Command, result *engine.Result) error {
	type candidateView struct {
		Score    float64  `json:"score"`
		Courses  []string `json:"courses"`
		TotalECTS int      `json:"total_ects"`
	}
	view := struct {
		Algorithm  string           `json:"algorithm"`
		Candidates []candidateView  `json:"candidates"`
	}{Algorithm: result.Algorithm}

	for _, c := range result.Candidates {
		var codes []string
		for _, course := range c.Schedule.Sorted() {
			codes = append(codes, course.Code)
		}
		view.Candidates = append(view.Candidates, candidateView{
			Score:     c.Score,
			Courses:   codes,
			TotalECTS: c.Schedule.TotalECTS(),
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
