package population

import (
	"context"
	"math/rand"

	"github.com/campusplan/scheduler/internal/algorithm/common"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/schedule"
)

func init() {
	engine.Register(psoScheduler{})
}

const (
	psoSwarmSize  = 40
	psoIterations = 100
	psoInertia    = 0.35
	psoCognitive  = 0.30
	psoSocial     = 0.35
)

// psoScheduler is a discrete particle swarm optimizer. Each particle's
// position is a full assignment; there is no continuous velocity to
// integrate, so each gene is instead resampled from one of three
// sources every iteration, chosen with probability psoInertia (keep
// the particle's current value), psoCognitive (copy the particle's own
// best-ever value), or psoSocial (copy the swarm's best-ever value) —
// the estimation-of-distribution style substitute for velocity used
// when positions are categorical rather than numeric.
type psoScheduler struct{}

func (psoScheduler) Name() string { return "pso" }

type particle struct {
	position  common.Assignment
	best      common.Assignment
	bestScore float64
}

func (s psoScheduler) Run(ctx context.Context, in engine.RunInput) ([]schedule.Schedule, error) {
	rng := rand.New(rand.NewSource(in.Seed + int64(len(in.Prepared.Groups)*23)))
	pool := newResultPool(in.Prepared, in.Limits.MaxResults)

	swarm := make([]particle, psoSwarmSize)
	var globalBest common.Assignment
	globalBestScore := 0.0
	globalBestSet := false

	initPos := make([]common.Assignment, psoSwarmSize)
	for i := range initPos {
		initPos[i] = common.Random(rng, in.Prepared)
	}
	initScores, initFeasibles := common.FitnessAll(ctx, in.Prepared, initPos, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)
	for i, pos := range initPos {
		score, feasible := initScores[i], initFeasibles[i]
		swarm[i] = particle{position: pos, best: pos.Clone(), bestScore: score}
		pool.offer(pos, feasible)
		if !globalBestSet || score > globalBestScore {
			globalBest, globalBestScore, globalBestSet = pos.Clone(), score, true
		}
	}

	for iter := 0; iter < psoIterations; iter++ {
		if ctx.Err() != nil || pool.full() {
			break
		}
		emitProgress(in.Progress, "pso", iter, 0, globalBestScore)

		for i := range swarm {
			p := &swarm[i]
			next := make(common.Assignment, len(p.position))
			for gi, g := range in.Prepared.Groups {
				if len(g.Options) < 2 {
					next[gi] = p.position[gi]
					continue
				}
				r := rng.Float64()
				switch {
				case r < psoInertia:
					next[gi] = p.position[gi]
				case r < psoInertia+psoCognitive:
					next[gi] = p.best[gi]
				default:
					next[gi] = globalBest[gi]
				}
			}

			score, feasible := common.Fitness(in.Prepared, next, in.Limits, in.Prefs, in.MandatoryCodes, in.Completed, in.PrereqsRequired)
			p.position = next
			pool.offer(next, feasible)

			if score > p.bestScore {
				p.best, p.bestScore = next.Clone(), score
			}
			if score > globalBestScore {
				globalBest, globalBestScore = next.Clone(), score
			}
		}
	}

	return pool.results, nil
}
