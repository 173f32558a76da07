// Package common holds the assignment representation and helpers
// shared by the local-search and population-based algorithm families:
// both explore full assignments (one option index per group) rather
// than the complete-search families' partial, incrementally-built
// schedules.
package common

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/schedule"
	"github.com/campusplan/scheduler/internal/scorer"
	"github.com/campusplan/scheduler/internal/search"
)

// Assignment picks one option index per group in a PreparedSearch.
type Assignment []int

// Clone returns an independent copy, so neighbor/mutation generation
// never aliases the parent.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	copy(out, a)
	return out
}

// Random builds an assignment choosing a uniformly random option per
// group.
func Random(rng *rand.Rand, prepared *search.PreparedSearch) Assignment {
	a := make(Assignment, len(prepared.Groups))
	for i, g := range prepared.Groups {
		a[i] = rng.Intn(len(g.Options))
	}
	return a
}

// Assemble builds the Schedule an assignment represents, skipping
// groups whose chosen option is the synthetic skip.
func Assemble(prepared *search.PreparedSearch, a Assignment) schedule.Schedule {
	out := schedule.New(nil)
	for i, g := range prepared.Groups {
		if i >= len(a) {
			continue
		}
		opt := g.Options[a[i]]
		if opt.IsSkip {
			continue
		}
		for _, c := range opt.Sections {
			out = out.With(c)
		}
	}
	return out
}

// Fitness scores an assignment for maximization: feasible candidates
// rank by preference score; infeasible ones rank below every feasible
// one, ordered by how close they are to feasible (fewer violations is
// better), so local search still has a gradient to climb out of
// infeasible territory.
func Fitness(prepared *search.PreparedSearch, a Assignment, limits evaluator.Limits, prefs scorer.Prefs, mandatoryCodes []string, completed map[string]struct{}, prereqsRequired bool) (score float64, feasible bool) {
	s := Assemble(prepared, a)
	if ok, _ := evaluator.IsFeasibleFinal(s, limits, mandatoryCodes, completed, prereqsRequired); ok {
		return scorer.Score(s, prefs), true
	}
	return -penalty(s, limits, mandatoryCodes), false
}

// FitnessAll evaluates a whole batch of already-constructed assignments
// concurrently via an errgroup worker pool, writing each result back to
// its own index. Population-based search builds a generation's genes
// sequentially (every crossover/mutation draw consumes the shared RNG in
// a fixed order, which determinism depends on) and only then needs every
// individual's Fitness; since Fitness itself touches no RNG and no
// shared state beyond the read-only PreparedSearch, batching it this way
// changes nothing about the result, only how many CPUs compute it.
func FitnessAll(ctx context.Context, prepared *search.PreparedSearch, assignments []Assignment, limits evaluator.Limits, prefs scorer.Prefs, mandatoryCodes []string, completed map[string]struct{}, prereqsRequired bool) (scores []float64, feasible []bool) {
	scores = make([]float64, len(assignments))
	feasible = make([]bool, len(assignments))
	g, _ := errgroup.WithContext(ctx)
	for i := range assignments {
		i := i
		g.Go(func() error {
			scores[i], feasible[i] = Fitness(prepared, assignments[i], limits, prefs, mandatoryCodes, completed, prereqsRequired)
			return nil
		})
	}
	_ = g.Wait()
	return scores, feasible
}

// penalty turns infeasibility into a finite, monotonic distance: more
// excess ECTS, more excess conflicts, and more missing mandatory groups
// all push the value further below zero.
func penalty(s schedule.Schedule, limits evaluator.Limits, mandatoryCodes []string) float64 {
	limits = limits.Normalize()
	p := 0.0
	if over := s.TotalECTS() - limits.MaxECTS; over > 0 {
		p += float64(over)
	}
	if over := s.ConflictCount() - limits.MaxConflicts; over > 0 {
		p += float64(over) * 2
	}
	present := s.MainCodes()
	for _, mc := range mandatoryCodes {
		if _, ok := present[mc]; !ok {
			p += 10
		}
	}
	if _, dup := s.HasDuplicateMainCode(); dup {
		p += 10
	}
	return p
}

// Neighbors returns every assignment reachable by changing exactly one
// group's chosen option, the single-move neighborhood Hill Climbing,
// Simulated Annealing, and Tabu Search all share.
func Neighbors(prepared *search.PreparedSearch, a Assignment) []Assignment {
	var out []Assignment
	for gi, g := range prepared.Groups {
		for oi := range g.Options {
			if oi == a[gi] {
				continue
			}
			n := a.Clone()
			n[gi] = oi
			out = append(out, n)
		}
	}
	return out
}

// RandomNeighbor returns one random single-group move, used when
// enumerating the full neighborhood is too costly per iteration.
func RandomNeighbor(rng *rand.Rand, prepared *search.PreparedSearch, a Assignment) Assignment {
	n := a.Clone()
	gi := rng.Intn(len(prepared.Groups))
	opts := prepared.Groups[gi].Options
	if len(opts) < 2 {
		return n
	}
	for {
		oi := rng.Intn(len(opts))
		if oi != n[gi] {
			n[gi] = oi
			return n
		}
	}
}

// MoveKey identifies a single-group move for tabu bookkeeping: which
// group changed and which option it changed to.
type MoveKey struct {
	Group  int
	Option int
}

// Diff reports the single move that turns a into b, for callers that
// already have both ends and need the MoveKey rather than a fresh
// neighbor.
func Diff(a, b Assignment) (MoveKey, bool) {
	for i := range a {
		if a[i] != b[i] {
			return MoveKey{Group: i, Option: b[i]}, true
		}
	}
	return MoveKey{}, false
}
