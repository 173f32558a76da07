// Package hybrid combines the population and local-search families:
// a genetic phase explores broadly until its best score plateaus, then
// simulated annealing refines each of the top individuals it found (spec
// §5.1's "Hybrid" category).
package hybrid

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/campusplan/scheduler/internal/algorithm/common"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/schedule"
)

func init() {
	engine.Register(hybridScheduler{})
}

const (
	hybridPopulationSize  = 50
	hybridMaxGenerations  = 150
	hybridPlateauPatience = 8
	hybridTournamentSize  = 3
	hybridElitism         = 3
	hybridMutationRate    = 0.06
	hybridRefineInitTemp  = 40.0
	hybridRefineCoolRate  = 0.9
	hybridRefineItersPerT = 40
	hybridRefineMinTemp   = 0.05
)

// hybridScheduler runs a genetic algorithm until hybridPlateauPatience
// consecutive generations fail to improve the best score, then seeds a
// separate simulated-annealing refinement pass from each of the final
// population's top hybridElitism individuals, the two-stage pattern the
// teacher's
// integrated_scheduler.go uses (coloring for a fast feasible solution,
// then simulated annealing to polish it), generalized from
// graph-coloring + SA to population-search + SA.
type hybridScheduler struct{}

func (hybridScheduler) Name() string { return "hybrid" }

type individual struct {
	genes    common.Assignment
	score    float64
	feasible bool
}

func (s hybridScheduler) Run(ctx context.Context, in engine.RunInput) ([]schedule.Schedule, error) {
	rng := rand.New(rand.NewSource(in.Seed + int64(len(in.Prepared.Groups)*29)))

	seen := map[string]bool{}
	var results []schedule.Schedule
	offer := func(a common.Assignment, feasible bool) {
		if !feasible || (in.Limits.MaxResults > 0 && len(results) >= in.Limits.MaxResults) {
			return
		}
		sc := common.Assemble(in.Prepared, a)
		fp, err := sc.Fingerprint()
		if err != nil {
			return
		}
		key := strconv.FormatUint(fp, 16)
		if seen[key] {
			return
		}
		seen[key] = true
		results = append(results, sc)
	}
	full := func() bool {
		return in.Limits.MaxResults > 0 && len(results) >= in.Limits.MaxResults
	}

	pop := make([]individual, hybridPopulationSize)
	initGenes := make([]common.Assignment, hybridPopulationSize)
	for i := range initGenes {
		initGenes[i] = common.Random(rng, in.Prepared)
	}
	initScores, initFeasibles := common.FitnessAll(ctx, in.Prepared, initGenes, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)
	for i := range pop {
		pop[i] = individual{genes: initGenes[i], score: initScores[i], feasible: initFeasibles[i]}
	}

	bestEver := math.Inf(-1)
	plateauCount := 0

	for gen := 0; gen < hybridMaxGenerations; gen++ {
		if ctx.Err() != nil || full() {
			break
		}

		sort.Slice(pop, func(i, j int) bool { return pop[i].score > pop[j].score })
		for _, ind := range pop {
			offer(ind.genes, ind.feasible)
		}
		emitProgress(in.Progress, gen, pop[0].score)

		if pop[0].score > bestEver+1e-9 {
			bestEver = pop[0].score
			plateauCount = 0
		} else {
			plateauCount++
		}
		if plateauCount >= hybridPlateauPatience {
			break
		}

		next := make([]individual, 0, hybridPopulationSize)
		next = append(next, pop[:hybridElitism]...)
		offspring := make([]common.Assignment, 0, hybridPopulationSize-len(next))
		for len(next)+len(offspring) < hybridPopulationSize {
			parentA := tournamentSelect(rng, pop)
			parentB := tournamentSelect(rng, pop)
			genes := crossover(rng, parentA.genes, parentB.genes)
			mutate(rng, in, genes)
			offspring = append(offspring, genes)
		}
		childScores, childFeasibles := common.FitnessAll(ctx, in.Prepared, offspring, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)
		for i, genes := range offspring {
			next = append(next, individual{genes: genes, score: childScores[i], feasible: childFeasibles[i]})
		}
		pop = next
	}

	// Refine each of the population phase's top hybridElitism
	// individuals independently with its own annealing run, then union
	// the deduped results (spec §4.5.4: "refines the top e ... returns
	// the union deduped").
	sort.Slice(pop, func(i, j int) bool { return pop[i].score > pop[j].score })
	seeds := hybridElitism
	if seeds > len(pop) {
		seeds = len(pop)
	}

	for seedIdx := 0; seedIdx < seeds; seedIdx++ {
		if ctx.Err() != nil || full() {
			break
		}
		current := pop[seedIdx].genes
		currentScore := pop[seedIdx].score

		temp := hybridRefineInitTemp
		for temp > hybridRefineMinTemp {
			if ctx.Err() != nil || full() {
				break
			}
			for i := 0; i < hybridRefineItersPerT; i++ {
				if ctx.Err() != nil {
					break
				}
				candidate := common.RandomNeighbor(rng, in.Prepared, current)
				candidateScore, candidateFeasible := common.Fitness(in.Prepared, candidate, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)

				delta := candidateScore - currentScore
				accept := delta > 0
				if !accept {
					accept = rng.Float64() < math.Exp(delta/temp)
				}
				if accept {
					current, currentScore = candidate, candidateScore
					offer(current, candidateFeasible)
				}
			}
			temp *= hybridRefineCoolRate
		}
	}

	return results, nil
}

func tournamentSelect(rng *rand.Rand, pop []individual) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < hybridTournamentSize; i++ {
		challenger := pop[rng.Intn(len(pop))]
		if challenger.score > best.score {
			best = challenger
		}
	}
	return best
}

func crossover(rng *rand.Rand, a, b common.Assignment) common.Assignment {
	child := make(common.Assignment, len(a))
	for i := range child {
		if rng.Intn(2) == 0 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
	}
	return child
}

func mutate(rng *rand.Rand, in engine.RunInput, genes common.Assignment) {
	for i, g := range in.Prepared.Groups {
		if rng.Float64() < hybridMutationRate && len(g.Options) > 1 {
			genes[i] = rng.Intn(len(g.Options))
		}
	}
}

func emitProgress(ch chan<- engine.ProgressEvent, step int, best float64) {
	if ch == nil {
		return
	}
	select {
	case ch <- engine.ProgressEvent{Algorithm: "hybrid", Explored: step, BestScore: best}:
	default:
	}
}
