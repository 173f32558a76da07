package population

import (
	"context"
	"math/rand"
	"sort"

	"github.com/campusplan/scheduler/internal/algorithm/common"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/schedule"
)

func init() {
	engine.Register(geneticScheduler{})
}

const (
	geneticPopulationSize = 60
	geneticGenerations    = 120
	geneticTournamentSize = 3
	geneticElitism        = 4
	geneticMutationRate   = 0.06
)

// geneticScheduler evolves a population of full assignments:
// tournament selection, uniform crossover on the group-index gene
// sequence, per-gene mutation, and elitism carrying the top performers
// forward unchanged. Genes index distinct groups, so crossover and
// mutation can never introduce a duplicate main code the way spec
// §4.5.3's "repair offspring" step anticipates for a looser encoding.
type geneticScheduler struct{}

func (geneticScheduler) Name() string { return "genetic" }

type individual struct {
	genes    common.Assignment
	score    float64
	feasible bool
}

func (s geneticScheduler) Run(ctx context.Context, in engine.RunInput) ([]schedule.Schedule, error) {
	return runGenetic(ctx, in, "genetic")
}

func runGenetic(ctx context.Context, in engine.RunInput, label string) ([]schedule.Schedule, error) {
	rng := rand.New(rand.NewSource(in.Seed + int64(len(in.Prepared.Groups)*17)))
	pool := newResultPool(in.Prepared, in.Limits.MaxResults)

	pop := make([]individual, geneticPopulationSize)
	initGenes := make([]common.Assignment, geneticPopulationSize)
	for i := range initGenes {
		initGenes[i] = common.Random(rng, in.Prepared)
	}
	scores, feasibles := common.FitnessAll(ctx, in.Prepared, initGenes, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)
	for i := range pop {
		pop[i] = individual{genes: initGenes[i], score: scores[i], feasible: feasibles[i]}
	}

	for gen := 0; gen < geneticGenerations; gen++ {
		if ctx.Err() != nil || pool.full() {
			break
		}

		sort.Slice(pop, func(i, j int) bool { return pop[i].score > pop[j].score })
		for _, ind := range pop {
			pool.offer(ind.genes, ind.feasible)
		}
		emitProgress(in.Progress, label, gen, 0, pop[0].score)

		next := make([]individual, 0, geneticPopulationSize)
		next = append(next, pop[:geneticElitism]...)

		offspring := make([]common.Assignment, 0, geneticPopulationSize-len(next))
		for len(next)+len(offspring) < geneticPopulationSize {
			parentA := tournamentSelect(rng, pop)
			parentB := tournamentSelect(rng, pop)
			childGenes := crossover(rng, parentA.genes, parentB.genes)
			mutate(rng, in, childGenes)
			offspring = append(offspring, childGenes)
		}
		childScores, childFeasibles := common.FitnessAll(ctx, in.Prepared, offspring, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)
		for i, childGenes := range offspring {
			next = append(next, individual{genes: childGenes, score: childScores[i], feasible: childFeasibles[i]})
		}
		pop = next
	}

	sort.Slice(pop, func(i, j int) bool { return pop[i].score > pop[j].score })
	for _, ind := range pop {
		pool.offer(ind.genes, ind.feasible)
	}

	return pool.results, nil
}

func tournamentSelect(rng *rand.Rand, pop []individual) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < geneticTournamentSize; i++ {
		challenger := pop[rng.Intn(len(pop))]
		if challenger.score > best.score {
			best = challenger
		}
	}
	return best
}

// crossover takes each gene from parentA or parentB with equal
// probability (uniform crossover), simpler to keep correct across
// variable group counts than a single cut-point scheme.
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
		if rng.Float64() < geneticMutationRate && len(g.Options) > 1 {
			genes[i] = rng.Intn(len(g.Options))
		}
	}
}
