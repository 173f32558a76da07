package local

import (
	"context"
	"math/rand"

	"github.com/campusplan/scheduler/internal/algorithm/common"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/schedule"
)

func init() {
	engine.Register(tabuScheduler{})
}

const (
	tabuTenure   = 12
	tabuMaxSteps = 800
	tabuMaxKeep  = 200
)

// tabuScheduler explores the full single-group-change neighborhood
// each step, always taking the best non-tabu move (or a tabu move that
// beats the best score seen so far — the aspiration criterion), and
// forbids repeating that same move (the same group set to the same
// option) for tabuTenure steps afterward.
type tabuScheduler struct{}

func (tabuScheduler) Name() string { return "tabu" }

func (s tabuScheduler) Run(ctx context.Context, in engine.RunInput) ([]schedule.Schedule, error) {
	rng := rand.New(rand.NewSource(in.Seed + int64(len(in.Prepared.Groups)*13)))

	current := common.Random(rng, in.Prepared)
	currentScore, currentFeasible := common.Fitness(in.Prepared, current, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)

	globalBest := currentScore
	tabu := map[common.MoveKey]int{} // move -> step it becomes legal again

	seen := map[string]bool{}
	var results []schedule.Schedule
	recordIfFeasible := func(a common.Assignment, feasible bool) {
		if !feasible {
			return
		}
		sc := common.Assemble(in.Prepared, a)
		fp, err := sc.Fingerprint()
		if err != nil {
			return
		}
		key := fingerprintString(fp)
		if seen[key] {
			return
		}
		seen[key] = true
		results = append(results, sc)
	}
	recordIfFeasible(current, currentFeasible)

	for step := 0; step < tabuMaxSteps; step++ {
		if ctx.Err() != nil {
			break
		}
		if in.Limits.MaxResults > 0 && len(results) >= tabuMaxKeep {
			break
		}
		emitProgress(in.Progress, "tabu", step, 0, globalBest)

		neighbors := common.Neighbors(in.Prepared, current)
		type candidate struct {
			assignment common.Assignment
			score      float64
			feasible   bool
			move       common.MoveKey
		}
		var bestMove *candidate

		for _, n := range neighbors {
			move, ok := common.Diff(current, n)
			if !ok {
				continue
			}
			score, feasible := common.Fitness(in.Prepared, n, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)

			isTabu := tabu[move] > step
			aspires := score > globalBest
			if isTabu && !aspires {
				continue
			}
			if bestMove == nil || score > bestMove.score {
				bestMove = &candidate{assignment: n, score: score, feasible: feasible, move: move}
			}
		}

		if bestMove == nil {
			break
		}

		current, currentScore, currentFeasible = bestMove.assignment, bestMove.score, bestMove.feasible
		tabu[bestMove.move] = step + tabuTenure
		if currentScore > globalBest {
			globalBest = currentScore
		}
		recordIfFeasible(current, currentFeasible)
	}

	return results, nil
}
