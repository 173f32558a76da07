package local

import (
	"context"
	"math"
	"math/rand"

	"github.com/campusplan/scheduler/internal/algorithm/common"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/schedule"
)

func init() {
	engine.Register(annealingScheduler{})
}

const (
	annealingInitialTemp  = 100.0
	annealingCoolingRate  = 0.95
	annealingItersPerTemp = 50
	annealingMinTemp      = 0.01
)

// annealingScheduler is simulated annealing with geometric cooling and
// Metropolis acceptance, grounded on the teacher's
// internal/solver/simulated_annealing.go: a single working solution,
// one random single-group "mirror" move per iteration, accept if
// better, otherwise accept with probability exp(delta/T), and cool T
// by a fixed rate after a batch of iterations at each temperature.
type annealingScheduler struct{}

func (annealingScheduler) Name() string { return "annealing" }

func (s annealingScheduler) Run(ctx context.Context, in engine.RunInput) ([]schedule.Schedule, error) {
	rng := rand.New(rand.NewSource(in.Seed + int64(len(in.Prepared.Groups)*7)))

	current := common.Random(rng, in.Prepared)
	currentScore, _ := common.Fitness(in.Prepared, current, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)

	type found struct {
		assignment common.Assignment
		score      float64
	}
	var best []found

	temp := annealingInitialTemp
	explored := 0

	for temp > annealingMinTemp {
		if ctx.Err() != nil {
			break
		}
		for i := 0; i < annealingItersPerTemp; i++ {
			if ctx.Err() != nil {
				break
			}
			explored++

			candidate := common.RandomNeighbor(rng, in.Prepared, current)
			candidateScore, candidateFeasible := common.Fitness(in.Prepared, candidate, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)

			delta := candidateScore - currentScore
			accept := delta > 0
			if !accept && temp > 0 {
				accept = rng.Float64() < math.Exp(delta/temp)
			}
			if accept {
				current, currentScore = candidate, candidateScore
				if candidateFeasible {
					best = append(best, found{assignment: candidate.Clone(), score: candidateScore})
				}
			}

			emitProgress(in.Progress, "annealing", explored, 0, currentScore)
			if in.Limits.MaxResults > 0 && len(best) >= in.Limits.MaxResults*4 {
				break
			}
		}
		temp *= annealingCoolingRate
	}

	seen := map[string]bool{}
	var results []schedule.Schedule
	for _, f := range best {
		sc := common.Assemble(in.Prepared, f.assignment)
		fp, err := sc.Fingerprint()
		if err != nil {
			continue
		}
		key := fingerprintString(fp)
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, sc)
		if in.Limits.MaxResults > 0 && len(results) >= in.Limits.MaxResults {
			break
		}
	}

	return results, nil
}
