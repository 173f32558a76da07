// Package local implements the single-solution local-search family:
// Hill Climbing, Simulated Annealing, and Tabu Search. All three start
// from a full assignment (every group has a chosen option, including
// the synthetic skip) and move through the neighborhood common.Neighbors
// defines, rather than building schedules group-by-group the way the
// complete-search family does (spec §5.1's "Local Search" category).
package local

import (
	"context"
	"math/rand"

	"github.com/campusplan/scheduler/internal/algorithm/common"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/schedule"
)

func init() {
	engine.Register(hillClimbScheduler{})
}

const (
	hillClimbMaxRestarts        = 40
	hillClimbMaxStepsPerRestart = 500
)

// hillClimbScheduler is steepest-ascent hill climbing with random
// restarts: from the current assignment it moves to the best
// improving single-group neighbor, repeating until no neighbor
// improves, then restarts from a fresh random assignment. Every local
// optimum reached that is feasible is kept as a result.
type hillClimbScheduler struct{}

func (hillClimbScheduler) Name() string { return "hillclimb" }

func (s hillClimbScheduler) Run(ctx context.Context, in engine.RunInput) ([]schedule.Schedule, error) {
	rng := rand.New(rand.NewSource(in.Seed + int64(len(in.Prepared.Groups))))
	var results []schedule.Schedule
	explored := 0
	bestScore := 0.0

	for restart := 0; restart < hillClimbMaxRestarts; restart++ {
		if ctx.Err() != nil {
			break
		}
		if in.Limits.MaxResults > 0 && len(results) >= in.Limits.MaxResults {
			break
		}

		current := common.Random(rng, in.Prepared)
		currentScore, currentFeasible := common.Fitness(in.Prepared, current, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)

		for step := 0; step < hillClimbMaxStepsPerRestart; step++ {
			if ctx.Err() != nil {
				break
			}
			explored++
			emitProgress(in.Progress, "hillclimb", explored, 0, bestScore)

			neighbors := common.Neighbors(in.Prepared, current)
			improved := false
			for _, n := range neighbors {
				score, feasible := common.Fitness(in.Prepared, n, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)
				if score > currentScore {
					current, currentScore, currentFeasible = n, score, feasible
					improved = true
				}
			}
			if !improved {
				break
			}
		}

		if currentFeasible {
			s := common.Assemble(in.Prepared, current)
			results = append(results, s)
			if currentScore > bestScore {
				bestScore = currentScore
			}
		}
	}

	return results, nil
}
